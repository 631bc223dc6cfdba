package repository

import (
	"context"

	"github.com/assinei/assinei-backend/internal/document"
)

// Repository is the persistence gateway for the signing workflow. The
// document aggregate is stored as a unit (signatories embedded), so a single
// Update call is the one mutation per workflow transition.
type Repository interface {
	Create(ctx context.Context, doc *document.Document) (string, error)
	Get(ctx context.Context, id string) (*document.Document, error)
	List(ctx context.Context) ([]*document.Document, error)
	// ListForUser returns documents the user owns or is listed on.
	ListForUser(ctx context.Context, userID string) ([]*document.Document, error)
	Update(ctx context.Context, doc *document.Document) error
	// Delete removes the document, its embedded signatories and all of its
	// signature records (cascade).
	Delete(ctx context.Context, id string) error

	FindPendingSignatory(ctx context.Context, documentID, userID string) (*document.DocumentSignatory, error)
	FindSignatoriesByIDs(ctx context.Context, documentID string, ids []string) ([]document.DocumentSignatory, error)

	CreateSignature(ctx context.Context, sig *document.Signature) (string, error)
	ListSignatures(ctx context.Context, documentID string) ([]*document.Signature, error)
}
