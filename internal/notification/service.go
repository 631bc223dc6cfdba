package notification

import (
	"context"
	"fmt"

	"github.com/assinei/assinei-backend/internal/document"
	"github.com/assinei/assinei-backend/pkg/logger"
)

// Event types emitted to clients.
const (
	EventDocumentReady     = "documentReadyForSigning"
	EventDocumentCompleted = "documentCompleted"
	EventDocumentRejected  = "documentRejected"
	EventDocumentCancelled = "documentCancelled"
)

// Service turns workflow events into per-user notifications. It implements
// the engine's Notifier interface. Every delivery is best-effort: failures
// are logged and never surface to the workflow.
type Service struct {
	hub *Hub
	pub *RedisPublisher
}

// NewService wires the dispatcher. Either collaborator may be nil: hub-only
// for single-instance deployments, publisher-only for stateless workers.
func NewService(hub *Hub, pub *RedisPublisher) *Service {
	return &Service{hub: hub, pub: pub}
}

func (s *Service) notify(ctx context.Context, userID string, ev Event) {
	delivered := false
	if s.hub != nil && s.hub.Send(userID, ev) {
		delivered = true
	}
	if s.pub != nil {
		if err := s.pub.Publish(ctx, userID, ev); err != nil {
			logger.Warnf("notification: publish %s to user %s failed: %v", ev.Type, userID, err)
		} else {
			delivered = true
		}
	}
	if !delivered {
		logger.Debugf("notification: user %s not connected, dropped %s", userID, ev.Type)
	}
}

// TierReady tells every signatory of the current tier that the document
// awaits their signature.
func (s *Service) TierReady(ctx context.Context, doc *document.Document, tier []document.DocumentSignatory) {
	for _, sig := range tier {
		s.notify(ctx, sig.UserID, Event{
			Type: EventDocumentReady,
			Data: map[string]any{
				"documentId":    doc.ID,
				"documentTitle": doc.Title,
				"message":       fmt.Sprintf("O documento %q está pronto para sua assinatura.", doc.Title),
			},
		})
	}
}

// Completed tells the owner that every signatory has signed.
func (s *Service) Completed(ctx context.Context, doc *document.Document) {
	s.notify(ctx, doc.OwnerID, Event{
		Type: EventDocumentCompleted,
		Data: map[string]any{
			"documentId":    doc.ID,
			"documentTitle": doc.Title,
			"message":       fmt.Sprintf("O documento %q foi assinado por todos.", doc.Title),
		},
	})
}

// Rejected tells the owner who rejected the document and why.
func (s *Service) Rejected(ctx context.Context, doc *document.Document, rejectorID, reason string) {
	if reason == "" {
		reason = "não especificado"
	}
	s.notify(ctx, doc.OwnerID, Event{
		Type: EventDocumentRejected,
		Data: map[string]any{
			"documentId":    doc.ID,
			"documentTitle": doc.Title,
			"rejectedBy":    rejectorID,
			"reason":        reason,
			"message":       fmt.Sprintf("O documento %q foi rejeitado. Motivo: %s", doc.Title, reason),
		},
	})
}

// Cancelled tells the owner the signing flow was aborted.
func (s *Service) Cancelled(ctx context.Context, doc *document.Document) {
	s.notify(ctx, doc.OwnerID, Event{
		Type: EventDocumentCancelled,
		Data: map[string]any{
			"documentId":    doc.ID,
			"documentTitle": doc.Title,
			"message":       fmt.Sprintf("O fluxo de assinatura do documento %q foi cancelado.", doc.Title),
		},
	})
}
