// Package cart keeps the in-memory shopping cart. The cart is deliberately
// not persisted: it resets on restart and whenever the identity changes.
package cart

import (
	"sync"
	"time"
)

// Item is one cart line.
type Item struct {
	ID        int64  `json:"id"`
	MenuName  string `json:"menuName"`
	StoreName string `json:"storeName,omitempty"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Store is the per-identity in-memory cart.
type Store struct {
	keyFunc func() string
	now     func() time.Time

	mu      sync.Mutex
	lastKey string
	lastID  int64
	items   []Item
}

// Option configures the store.
type Option func(*Store)

// WithClock overrides the wall clock. Test hook.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a cart scoped by keyFunc.
func NewStore(keyFunc func() string, opts ...Option) *Store {
	s := &Store{
		keyFunc: keyFunc,
		now:     time.Now,
	}
	s.lastKey = keyFunc()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddItem adds a line to the cart. A line with the same menu and store name
// merges by adding quantities; otherwise the new line goes to the front.
func (s *Store) AddItem(menuName, storeName string, price int64, quantity int) Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureCurrentIdentity()

	for i := range s.items {
		if s.items[i].MenuName == menuName && s.items[i].StoreName == storeName {
			s.items[i].Quantity += quantity
			return s.items[i]
		}
	}

	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id

	item := Item{
		ID:        id,
		MenuName:  menuName,
		StoreName: storeName,
		Price:     price,
		Quantity:  quantity,
	}
	s.items = append([]Item{item}, s.items...)
	return item
}

// Items returns a copy of the cart lines, newest first.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureCurrentIdentity()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// ItemCount returns the number of distinct lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureCurrentIdentity()

	return len(s.items)
}

// TotalPrice returns the sum of price times quantity over all lines.
func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureCurrentIdentity()

	var total int64
	for _, it := range s.items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureCurrentIdentity()

	s.items = nil
}

// ensureCurrentIdentity drops the cart when the identity changed. Callers
// hold s.mu.
func (s *Store) ensureCurrentIdentity() {
	key := s.keyFunc()
	if key == s.lastKey {
		return
	}
	s.lastKey = key
	s.items = nil
}
