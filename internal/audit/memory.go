package audit

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is the in-memory Repository used in tests and in the
// standalone binary.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []*Entry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Insert(ctx context.Context, e *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *MemoryRepository) Find(ctx context.Context, f Filter) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*Entry{}
	for _, e := range r.entries {
		if f.UserID != "" && e.UserID != f.UserID {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.EntityType != "" && e.EntityType != f.EntityType {
			continue
		}
		if f.EntityID != "" && e.EntityID != f.EntityID {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	limit := f.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
