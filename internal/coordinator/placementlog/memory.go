package placementlog

import (
	"context"
	"sync"
)

var _ Repository = (*MemoryRepository)(nil)

type MemoryRepository struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Append(_ context.Context, entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := *entry
	e.Errors = append([]string(nil), entry.Errors...)
	r.entries = append(r.entries, e)
	return nil
}

func (r *MemoryRepository) History(_ context.Context, placementID string) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Entry
	for _, e := range r.entries {
		if e.PlacementID == placementID {
			out = append(out, e)
		}
	}
	return out, nil
}
