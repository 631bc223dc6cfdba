package audit

import (
	"context"
	"time"

	"github.com/assinei/assinei-backend/pkg/logger"
)

// Service records audit entries. Recording is best effort: a failed write is
// logged and never propagated, so auditing can never fail a business
// operation.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Record(ctx context.Context, userID, action, entityType, entityID string, details map[string]any) {
	e := &Entry{
		Timestamp:  time.Now().UTC(),
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		logger.Errorf("audit: failed to record %s on %s/%s: %v", action, entityType, entityID, err)
	}
}

func (s *Service) Find(ctx context.Context, f Filter) ([]*Entry, error) {
	return s.repo.Find(ctx, f)
}
