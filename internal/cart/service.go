package cart

import (
	"errors"
	"sync"
	"time"

	"github.com/oakmart/storefront-api/internal/platform/identifier"
)

var (
	// ErrItemNotFound covers both a missing line item and a line item owned
	// by another principal. Collapsing the two keeps item ids unprobeable.
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidQuantity = errors.New("quantity must be >= 1")
)

// Item is a cart line item.
type Item struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// Cart is the per-user cart snapshot returned to clients.
type Cart struct {
	ID        string    `json:"id"`
	Items     []Item    `json:"items"`
	ItemCount int       `json:"item_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

type cartState struct {
	id        string
	items     []Item
	updatedAt time.Time
}

// Service provides in-memory cart mutation with one cart per user.
type Service struct {
	mu          sync.RWMutex
	cartsByUser map[string]*cartState
	ownerByItem map[string]string
}

func NewService() *Service {
	return &Service{
		cartsByUser: make(map[string]*cartState),
		ownerByItem: make(map[string]string),
	}
}

func (s *Service) Get(userID string) Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.cartForLocked(userID))
}

// AddItem upserts a line item. Adding a product already in the cart bumps its
// quantity instead of creating a duplicate line.
func (s *Service) AddItem(userID, productID string, qty int) (Cart, error) {
	if qty < 1 {
		return Cart{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.cartForLocked(userID)
	for i := range state.items {
		if state.items[i].ProductID == productID {
			state.items[i].Qty += qty
			state.updatedAt = time.Now().UTC()
			return snapshot(state), nil
		}
	}

	item := Item{
		ID:        identifier.New("cit"),
		ProductID: productID,
		Qty:       qty,
	}
	state.items = append(state.items, item)
	state.updatedAt = time.Now().UTC()
	s.ownerByItem[item.ID] = userID
	return snapshot(state), nil
}

// SetQuantity replaces a line item quantity. The quantity check runs before
// the existence check so an invalid quantity never leaks item existence.
func (s *Service) SetQuantity(userID, itemID string, qty int) (Cart, error) {
	if qty < 1 {
		return Cart{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, index, err := s.ownedItemLocked(userID, itemID)
	if err != nil {
		return Cart{}, err
	}

	state.items[index].Qty = qty
	state.updatedAt = time.Now().UTC()
	return snapshot(state), nil
}

func (s *Service) RemoveItem(userID, itemID string) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, index, err := s.ownedItemLocked(userID, itemID)
	if err != nil {
		return Cart{}, err
	}

	state.items = append(state.items[:index], state.items[index+1:]...)
	state.updatedAt = time.Now().UTC()
	delete(s.ownerByItem, itemID)
	return snapshot(state), nil
}

func (s *Service) cartForLocked(userID string) *cartState {
	state, exists := s.cartsByUser[userID]
	if !exists {
		state = &cartState{
			id:        identifier.New("crt"),
			items:     make([]Item, 0),
			updatedAt: time.Now().UTC(),
		}
		s.cartsByUser[userID] = state
	}
	return state
}

func (s *Service) ownedItemLocked(userID, itemID string) (*cartState, int, error) {
	owner, exists := s.ownerByItem[itemID]
	if !exists || owner != userID {
		return nil, 0, ErrItemNotFound
	}

	state := s.cartsByUser[owner]
	for i := range state.items {
		if state.items[i].ID == itemID {
			return state, i, nil
		}
	}
	return nil, 0, ErrItemNotFound
}

func snapshot(state *cartState) Cart {
	items := make([]Item, len(state.items))
	copy(items, state.items)

	count := 0
	for _, item := range items {
		count += item.Qty
	}

	return Cart{
		ID:        state.id,
		Items:     items,
		ItemCount: count,
		UpdatedAt: state.updatedAt,
	}
}
