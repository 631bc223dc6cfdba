package sectors

import (
	"context"
	"errors"
	"time"

	"github.com/assinei/assinei-backend/internal/document"
)

// Sector is an organizational unit users belong to.
type Sector struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Repository is the persistence boundary for sectors.
type Repository interface {
	Create(ctx context.Context, s *Sector) (*Sector, error)
	GetByID(ctx context.Context, id string) (*Sector, error)
	List(ctx context.Context) ([]*Sector, error)
	Delete(ctx context.Context, id string) error
}

// Service manages sectors. Sector names are unique.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, name string) (*Sector, error) {
	now := time.Now().UTC()
	return s.repo.Create(ctx, &Sector{Name: name, CreatedAt: now, UpdatedAt: now})
}

func (s *Service) Get(ctx context.Context, id string) (*Sector, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Sector, error) {
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Exists reports whether the sector id refers to a known sector.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, document.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
