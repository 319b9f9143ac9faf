package orders

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// In-memory stores, mirror of the Postgres repos. Tests run on these, and
// they back local development without a database.

type MemoryOrderStore struct {
	mu  sync.RWMutex
	m   map[string]*Order
	seq map[string]int // insertion order, tie-break for equal timestamps
	n   int
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{m: make(map[string]*Order), seq: make(map[string]int)}
}

func (s *MemoryOrderStore) Insert(_ context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	cp.Lines = append([]OrderLine(nil), o.Lines...)
	s.n++
	s.m[o.ID] = &cp
	s.seq[o.ID] = s.n
	return nil
}

func (s *MemoryOrderStore) Get(_ context.Context, id string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.m[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	cp.Lines = append([]OrderLine(nil), o.Lines...)
	return &cp, nil
}

func (s *MemoryOrderStore) GetByNumber(_ context.Context, number string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.m {
		if o.Number == number {
			cp := *o
			cp.Lines = append([]OrderLine(nil), o.Lines...)
			return &cp, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (s *MemoryOrderStore) UpdateStatus(_ context.Context, id string, from, to Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.m[id]
	if !ok {
		return ErrOrderNotFound
	}
	if o.Status != from {
		return ErrStatusConflict
	}
	o.Status = to
	o.UpdatedAt = at
	return nil
}

func (s *MemoryOrderStore) newestFirst() []Order {
	out := make([]Order, 0, len(s.m))
	for _, o := range s.m {
		cp := *o
		cp.Lines = append([]OrderLine(nil), o.Lines...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.seq[out[i].ID] > s.seq[out[j].ID]
	})
	return out
}

func (s *MemoryOrderStore) List(_ context.Context, f ListFilter) ([]Order, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(f.Search)
	var matched []Order
	for _, o := range s.newestFirst() {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(o.Number), q) &&
			!strings.Contains(strings.ToLower(o.Email), q) {
			continue
		}
		matched = append(matched, o)
	}

	total := len(matched)
	start := (f.Page - 1) * f.PageSize
	if start > total {
		start = total
	}
	end := start + f.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *MemoryOrderStore) ListByUser(_ context.Context, userID string) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Order
	for _, o := range s.newestFirst() {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

type MemoryCartStore struct {
	mu sync.RWMutex
	m  map[string]*Cart
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{m: make(map[string]*Cart)}
}

func (s *MemoryCartStore) Get(_ context.Context, userID string) (*Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.m[userID]
	if !ok {
		return nil, ErrCartNotFound
	}
	cp := *c
	cp.Lines = append([]CartLine(nil), c.Lines...)
	return &cp, nil
}

func (s *MemoryCartStore) SetLine(_ context.Context, userID, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	c, ok := s.m[userID]
	if !ok {
		c = &Cart{UserID: userID, CreatedAt: now}
		s.m[userID] = c
	}
	c.UpdatedAt = now
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Qty = qty
			return nil
		}
	}
	c.Lines = append(c.Lines, CartLine{ProductID: productID, Qty: qty})
	return nil
}

func (s *MemoryCartStore) RemoveLine(_ context.Context, userID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.m[userID]
	if !ok {
		return nil
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			break
		}
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Clear empties the cart but keeps it, matching the Postgres behavior.
func (s *MemoryCartStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.m[userID]; ok {
		c.Lines = nil
		c.UpdatedAt = time.Now().UTC()
	}
	return nil
}

type MemoryCatalog struct {
	mu sync.RWMutex
	m  map[string]*Product
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{m: make(map[string]*Product)}
}

func (s *MemoryCatalog) Put(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p
	s.m[p.ID] = &cp
}

func (s *MemoryCatalog) Product(_ context.Context, id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.m[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

var (
	_ OrderStore = (*MemoryOrderStore)(nil)
	_ CartStore  = (*MemoryCartStore)(nil)
	_ Catalog    = (*MemoryCatalog)(nil)
)
