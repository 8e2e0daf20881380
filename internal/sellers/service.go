package sellers

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oakmart/storefront-api/internal/platform/identifier"
)

var (
	ErrOwnerAlreadySeller = errors.New("owner already has seller profile")
	ErrSlugInUse          = errors.New("seller slug already in use")
	ErrSellerNotFound     = errors.New("seller not found")
	ErrInvalidRating      = errors.New("rating must be between 0 and 5")
)

// Seller is the storefront profile behind every listed product. Verified and
// RatingAverage feed the seller-badge facets in the catalog.
type Seller struct {
	ID            string    `json:"id"`
	OwnerUserID   string    `json:"owner_user_id"`
	Slug          string    `json:"slug"`
	DisplayName   string    `json:"display_name"`
	Verified      bool      `json:"verified"`
	RatingAverage float64   `json:"rating_average"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Service provides in-memory seller profile operations.
type Service struct {
	mu        sync.RWMutex
	byID      map[string]Seller
	byOwnerID map[string]string
	bySlug    map[string]string
}

func NewService() *Service {
	return &Service{
		byID:      make(map[string]Seller),
		byOwnerID: make(map[string]string),
		bySlug:    make(map[string]string),
	}
}

func (s *Service) Register(ownerUserID, slug, displayName string) (Seller, error) {
	normalizedSlug := strings.ToLower(strings.TrimSpace(slug))
	if normalizedSlug == "" {
		return Seller{}, ErrSlugInUse
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byOwnerID[ownerUserID]; exists {
		return Seller{}, ErrOwnerAlreadySeller
	}
	if _, exists := s.bySlug[normalizedSlug]; exists {
		return Seller{}, ErrSlugInUse
	}

	now := time.Now().UTC()
	seller := Seller{
		ID:          identifier.New("slr"),
		OwnerUserID: ownerUserID,
		Slug:        normalizedSlug,
		DisplayName: strings.TrimSpace(displayName),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.byID[seller.ID] = seller
	s.byOwnerID[ownerUserID] = seller.ID
	s.bySlug[normalizedSlug] = seller.ID
	return seller, nil
}

func (s *Service) GetByOwner(ownerUserID string) (Seller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sellerID, exists := s.byOwnerID[ownerUserID]
	if !exists {
		return Seller{}, false
	}
	seller := s.byID[sellerID]
	return seller, true
}

func (s *Service) GetByID(sellerID string) (Seller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seller, exists := s.byID[sellerID]
	return seller, exists
}

func (s *Service) List(verifiedOnly bool) []Seller {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]Seller, 0, len(s.byID))
	for _, seller := range s.byID {
		if verifiedOnly && !seller.Verified {
			continue
		}
		items = append(items, seller)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].UpdatedAt.Equal(items[j].UpdatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})

	return items
}

func (s *Service) SetVerified(sellerID string, verified bool) (Seller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seller, exists := s.byID[sellerID]
	if !exists {
		return Seller{}, ErrSellerNotFound
	}

	seller.Verified = verified
	seller.UpdatedAt = time.Now().UTC()
	s.byID[sellerID] = seller
	return seller, nil
}

func (s *Service) SetRating(sellerID string, ratingAverage float64) (Seller, error) {
	if ratingAverage < 0 || ratingAverage > 5 {
		return Seller{}, ErrInvalidRating
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seller, exists := s.byID[sellerID]
	if !exists {
		return Seller{}, ErrSellerNotFound
	}

	seller.RatingAverage = ratingAverage
	seller.UpdatedAt = time.Now().UTC()
	s.byID[sellerID] = seller
	return seller, nil
}

func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
