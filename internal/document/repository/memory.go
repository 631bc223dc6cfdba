package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/assinei/assinei-backend/internal/document"
)

// MemoryRepo is an in-memory Repository used by unit tests and by the
// standalone workflow binary when MongoDB is not configured. Documents are
// deep-copied on the way in and out so callers never alias stored state.
type MemoryRepo struct {
	mu         sync.RWMutex
	docs       map[string]*document.Document
	signatures map[string][]*document.Signature // documentID -> signatures
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		docs:       make(map[string]*document.Document),
		signatures: make(map[string][]*document.Signature),
	}
}

func cloneDocument(d *document.Document) *document.Document {
	cp := *d
	cp.Signatories = make([]document.DocumentSignatory, len(d.Signatories))
	copy(cp.Signatories, d.Signatories)
	for i := range cp.Signatories {
		if ts := cp.Signatories[i].SignedAt; ts != nil {
			at := *ts
			cp.Signatories[i].SignedAt = &at
		}
	}
	return &cp
}

func cloneSignature(s *document.Signature) *document.Signature {
	cp := *s
	if s.Position != nil {
		pos := *s.Position
		cp.Position = &pos
	}
	return &cp
}

func (m *MemoryRepo) Create(ctx context.Context, doc *document.Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = doc.CreatedAt
	m.docs[doc.ID] = cloneDocument(doc)
	return doc.ID, nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, document.ErrNotFound
	}
	return cloneDocument(d), nil
}

func (m *MemoryRepo) List(ctx context.Context) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*document.Document, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, cloneDocument(d))
	}
	return out, nil
}

func (m *MemoryRepo) ListForUser(ctx context.Context, userID string) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*document.Document{}
	for _, d := range m.docs {
		if d.OwnerID == userID || d.IsSignatory(userID) {
			out = append(out, cloneDocument(d))
		}
	}
	return out, nil
}

func (m *MemoryRepo) Update(ctx context.Context, doc *document.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[doc.ID]; !ok {
		return document.ErrNotFound
	}
	m.docs[doc.ID] = cloneDocument(doc)
	return nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return document.ErrNotFound
	}
	delete(m.docs, id)
	delete(m.signatures, id)
	return nil
}

func (m *MemoryRepo) FindPendingSignatory(ctx context.Context, documentID, userID string) (*document.DocumentSignatory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[documentID]
	if !ok {
		return nil, document.ErrNotFound
	}
	for i := range d.Signatories {
		s := d.Signatories[i]
		if s.UserID == userID && s.Status == document.SignatoryPending {
			return &s, nil
		}
	}
	return nil, document.ErrNotFound
}

func (m *MemoryRepo) FindSignatoriesByIDs(ctx context.Context, documentID string, ids []string) ([]document.DocumentSignatory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[documentID]
	if !ok {
		return nil, document.ErrNotFound
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []document.DocumentSignatory{}
	for _, s := range d.Signatories {
		if want[s.ID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MemoryRepo) CreateSignature(ctx context.Context, sig *document.Signature) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sig.ID == "" {
		sig.ID = uuid.NewString()
	}
	if sig.Timestamp.IsZero() {
		sig.Timestamp = time.Now().UTC()
	}
	m.signatures[sig.DocumentID] = append(m.signatures[sig.DocumentID], cloneSignature(sig))
	return sig.ID, nil
}

func (m *MemoryRepo) ListSignatures(ctx context.Context, documentID string) ([]*document.Signature, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sigs := m.signatures[documentID]
	out := make([]*document.Signature, 0, len(sigs))
	for _, s := range sigs {
		out = append(out, cloneSignature(s))
	}
	return out, nil
}
