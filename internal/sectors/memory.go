package sectors

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/assinei/assinei-backend/internal/document"
)

// MemoryRepository keeps sectors in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	sectors map[string]*Sector
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sectors: make(map[string]*Sector)}
}

func (r *MemoryRepository) Create(ctx context.Context, s *Sector) (*Sector, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sectors {
		if existing.Name == s.Name {
			return nil, document.ErrConflict
		}
	}
	cp := *s
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	r.sectors[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*Sector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sectors[id]
	if !ok {
		return nil, document.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]*Sector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Sector, 0, len(r.sectors))
	for _, s := range r.sectors {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sectors[id]; !ok {
		return document.ErrNotFound
	}
	delete(r.sectors, id)
	return nil
}
