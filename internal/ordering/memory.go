package ordering

import (
	"context"
	"fmt"
	"sync"
	"time"
)

var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository keeps orders in process memory. Orders are copied on the
// way in and out so callers never share state with the store.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]*Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: make(map[string]*Order)}
}

func (r *MemoryRepository) Save(_ context.Context, order *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, o := range r.orders {
		if id != order.ID && o.Number == order.Number {
			return fmt.Errorf("%w: %s", ErrDuplicateNumber, order.Number)
		}
	}
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneOrder(order), nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, id string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	return nil
}

func cloneOrder(o *Order) *Order {
	c := *o
	c.Lines = append([]Line(nil), o.Lines...)
	return &c
}
