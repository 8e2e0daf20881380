package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// ProductStore is the data-access interface the catalog core consumes. The
// memory implementation backs tests and development; the postgres
// implementation backs production.
type ProductStore interface {
	GetByID(ctx context.Context, productID string) (Product, bool, error)
	Create(ctx context.Context, product Product) error
	Update(ctx context.Context, product Product) error
	Delete(ctx context.Context, productID string) error
	ListBySeller(ctx context.Context, sellerID string) ([]Product, error)
	Search(ctx context.Context, filter Filter, sortPlan Sort, page Page) ([]Product, error)
	Count(ctx context.Context, filter Filter) (int, error)
}

// MemoryStore is a mutex-guarded in-memory ProductStore.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]Product
	ordered []string
	quality QualityFn
}

func NewMemoryStore(quality QualityFn) *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]Product),
		quality: quality,
	}
}

func (s *MemoryStore) GetByID(_ context.Context, productID string) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	product, exists := s.byID[productID]
	return product, exists, nil
}

func (s *MemoryStore) Create(_ context.Context, product Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[product.ID]; !exists {
		s.ordered = append(s.ordered, product.ID)
	}
	s.byID[product.ID] = product
	return nil
}

func (s *MemoryStore) Update(_ context.Context, product Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[product.ID]; !exists {
		return nil
	}
	s.byID[product.ID] = product
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[productID]; !exists {
		return nil
	}
	delete(s.byID, productID)
	filtered := s.ordered[:0]
	for _, id := range s.ordered {
		if id != productID {
			filtered = append(filtered, id)
		}
	}
	s.ordered = filtered
	return nil
}

func (s *MemoryStore) ListBySeller(_ context.Context, sellerID string) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]Product, 0)
	for i := len(s.ordered) - 1; i >= 0; i-- {
		product := s.byID[s.ordered[i]]
		if product.SellerID == sellerID {
			items = append(items, product)
		}
	}
	return items, nil
}

func (s *MemoryStore) Search(_ context.Context, filter Filter, sortPlan Sort, page Page) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := s.matchLocked(filter)
	sortProducts(matches, sortPlan.Key)

	if page.Offset >= len(matches) {
		return []Product{}, nil
	}
	end := page.Offset + page.Limit
	if end > len(matches) {
		end = len(matches)
	}

	items := make([]Product, end-page.Offset)
	copy(items, matches[page.Offset:end])
	return items, nil
}

func (s *MemoryStore) Count(_ context.Context, filter Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matchLocked(filter)), nil
}

func (s *MemoryStore) matchLocked(filter Filter) []Product {
	matches := make([]Product, 0, len(s.ordered))
	for _, productID := range s.ordered {
		product := s.byID[productID]
		if product.Status != StatusPublished {
			continue
		}
		if filter.Category != "" && product.CategorySlug != filter.Category {
			continue
		}
		if filter.Search != "" && !matchesSearch(product, filter.Search) {
			continue
		}
		if product.PriceCents < filter.PriceMin {
			continue
		}
		if filter.PriceMax > 0 && product.PriceCents > filter.PriceMax {
			continue
		}
		if filter.MinRating > 0 && product.RatingAverage < filter.MinRating {
			continue
		}
		if len(filter.Availability) > 0 && !availabilityIn(AvailabilityOf(product), filter.Availability) {
			continue
		}
		if len(filter.SellerQuality) > 0 && !sellerQualityMatches(s.quality, product.SellerID, filter.SellerQuality) {
			continue
		}
		matches = append(matches, product)
	}
	return matches
}

func matchesSearch(product Product, loweredTerm string) bool {
	return strings.Contains(strings.ToLower(product.Name), loweredTerm) ||
		strings.Contains(strings.ToLower(product.Description), loweredTerm)
}

func availabilityIn(value Availability, requested []Availability) bool {
	for _, facet := range requested {
		if facet == value {
			return true
		}
	}
	return false
}

func sellerQualityMatches(quality QualityFn, sellerID string, requested []SellerQuality) bool {
	if quality == nil {
		return false
	}
	badges := quality(sellerID)
	for _, facet := range requested {
		for _, badge := range badges {
			if facet == badge {
				return true
			}
		}
	}
	return false
}

// sortProducts orders matches by the sort key with created-at descending as
// the tie-break (and id as the final tie-break) so pagination is stable
// across identical requests.
func sortProducts(items []Product, key SortKey) {
	sort.SliceStable(items, func(i, j int) bool {
		left, right := items[i], items[j]

		switch key {
		case SortPriceAsc:
			if left.PriceCents != right.PriceCents {
				return left.PriceCents < right.PriceCents
			}
		case SortPriceDesc:
			if left.PriceCents != right.PriceCents {
				return left.PriceCents > right.PriceCents
			}
		case SortBestSelling:
			if left.SalesCount != right.SalesCount {
				return left.SalesCount > right.SalesCount
			}
		}

		if !left.CreatedAt.Equal(right.CreatedAt) {
			return left.CreatedAt.After(right.CreatedAt)
		}
		return left.ID < right.ID
	})
}
