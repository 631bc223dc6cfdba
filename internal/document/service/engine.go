package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/assinei/assinei-backend/internal/document"
	"github.com/assinei/assinei-backend/internal/document/repository"
	"github.com/assinei/assinei-backend/pkg/logger"
	"github.com/assinei/assinei-backend/pkg/metrics"
)

// Audit action identifiers recorded by the engine.
const (
	ActionCreateDocument   = "CREATE_DOCUMENT"
	ActionAddSignatories   = "ADD_SIGNATORIES"
	ActionSignDocument     = "SIGN_DOCUMENT"
	ActionRejectDocument   = "REJECT_DOCUMENT"
	ActionCompleteDocument = "COMPLETE_DOCUMENT"
	ActionCancelDocument   = "CANCEL_DOCUMENT"
	ActionDeleteDocument   = "DELETE_DOCUMENT"
	ActionViewDocument     = "VIEW_DOCUMENT"
	ActionDownloadDocument = "DOWNLOAD_DOCUMENT"
)

const entityDocument = "Document"

// Actor identifies the authenticated caller for authorization checks.
type Actor struct {
	ID    string
	Admin bool
}

// Notifier delivers workflow events to interested users. All methods are
// best-effort: implementations must not return errors into the workflow.
type Notifier interface {
	TierReady(ctx context.Context, doc *document.Document, tier []document.DocumentSignatory)
	Completed(ctx context.Context, doc *document.Document)
	Rejected(ctx context.Context, doc *document.Document, rejectorID, reason string)
	Cancelled(ctx context.Context, doc *document.Document)
}

// Auditor records workflow actions. Best-effort; a failing audit sink must
// never fail the business operation, so Record returns nothing.
type Auditor interface {
	Record(ctx context.Context, userID, action, entityType, entityID string, details map[string]any)
}

// UserDirectory answers whether a referenced user exists. Used to silently
// drop unknown signatories at document creation time.
type UserDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Engine owns every document and signatory state transition. All mutations of
// one document are serialized by a per-document lock held for the whole
// read-validate-mutate-persist section; notifications and audit records are
// issued only after the mutation has been persisted, outside the lock.
type Engine struct {
	repo  repository.Repository
	users UserDirectory
	notif Notifier
	audit Auditor
	locks docLocks
	now   func() time.Time
}

// NewEngine wires the engine to its collaborators. users, notif and audit may
// be nil; the corresponding step is then skipped.
func NewEngine(repo repository.Repository, users UserDirectory, notif Notifier, audit Auditor) *Engine {
	return &Engine{repo: repo, users: users, notif: notif, audit: audit, now: func() time.Time { return time.Now().UTC() }}
}

// event is a pending notification collected during the locked section and
// dispatched after the mutation commits.
type event struct {
	kind     string
	doc      *document.Document
	tier     []document.DocumentSignatory
	rejector string
	reason   string
}

const (
	evTierReady = "tierReady"
	evCompleted = "completed"
	evRejected  = "rejected"
	evCancelled = "cancelled"
)

func (e *Engine) dispatch(ctx context.Context, evts []event) {
	for _, ev := range evts {
		// completion is audited and counted even without a notifier wired
		if ev.kind == evCompleted {
			e.record(ctx, "", ActionCompleteDocument, ev.doc.ID, nil)
			metrics.DocumentsCompleted.Inc()
		}
		if e.notif == nil {
			continue
		}
		switch ev.kind {
		case evTierReady:
			e.notif.TierReady(ctx, ev.doc, ev.tier)
		case evCompleted:
			e.notif.Completed(ctx, ev.doc)
		case evRejected:
			e.notif.Rejected(ctx, ev.doc, ev.rejector, ev.reason)
		case evCancelled:
			e.notif.Cancelled(ctx, ev.doc)
		}
	}
}

func (e *Engine) record(ctx context.Context, userID, action, entityID string, details map[string]any) {
	if e.audit == nil {
		return
	}
	e.audit.Record(ctx, userID, action, entityDocument, entityID, details)
}

// SignatoryInput references a user and their slot in the signing order.
type SignatoryInput struct {
	UserID string `json:"userId"`
	Order  int    `json:"order"`
}

// CreateInput carries the fields for a new document.
type CreateInput struct {
	Title       string
	Description string
	StoragePath string
	Signatories []SignatoryInput
}

// Create persists a new document. With at least one valid signatory the
// document activates straight into SIGNING and the first tier is notified.
// Unknown users, duplicates and negative orders are skipped silently: a
// signatory list that yields zero valid rows leaves the document PENDING
// rather than raising an error.
func (e *Engine) Create(ctx context.Context, ownerID string, in CreateInput) (*document.Document, error) {
	now := e.now()
	doc := &document.Document{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		OwnerID:     ownerID,
		StoragePath: in.StoragePath,
		Status:      document.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	seen := make(map[string]bool, len(in.Signatories))
	for _, s := range in.Signatories {
		if s.UserID == "" || s.Order < 0 || seen[s.UserID] {
			continue
		}
		if e.users != nil {
			ok, err := e.users.Exists(ctx, s.UserID)
			if err != nil {
				return nil, fmt.Errorf("verify signatory user %s: %w", s.UserID, err)
			}
			if !ok {
				logger.Warnf("document create: skipping unknown signatory user %s", s.UserID)
				continue
			}
		}
		seen[s.UserID] = true
		doc.Signatories = append(doc.Signatories, document.DocumentSignatory{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			UserID:     s.UserID,
			Order:      s.Order,
			Status:     document.SignatoryPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	if len(doc.Signatories) > 0 {
		doc.Status = document.StatusSigning
	}

	if _, err := e.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	metrics.DocumentsCreated.Inc()

	e.record(ctx, ownerID, ActionCreateDocument, doc.ID, map[string]any{"title": doc.Title})
	var evts []event
	if doc.Status == document.StatusSigning {
		e.record(ctx, ownerID, ActionAddSignatories, doc.ID, map[string]any{"count": len(doc.Signatories)})
		if tier := document.CurrentTier(doc.Signatories); len(tier) > 0 {
			evts = append(evts, event{kind: evTierReady, doc: doc, tier: tier})
		}
	}
	e.dispatch(ctx, evts)
	return doc, nil
}

// SignRequest carries the opaque signing payload and its placement.
type SignRequest struct {
	Data     string
	Position *document.SignaturePosition
}

// Sign records the user's signature and advances the flow. Preconditions, in
// order: the document exists and is SIGNING, the user is in the current tier,
// and a PENDING signatory row exists for them. Any violation returns before
// any state is mutated.
func (e *Engine) Sign(ctx context.Context, documentID, userID string, req SignRequest) (*document.Signature, error) {
	unlock := e.locks.lock(documentID)
	sig, evts, err := e.signLocked(ctx, documentID, userID, req)
	unlock()
	if err != nil {
		return nil, err
	}
	metrics.SignaturesRecorded.Inc()
	e.record(ctx, userID, ActionSignDocument, documentID, map[string]any{"signatureId": sig.ID})
	e.dispatch(ctx, evts)
	return sig, nil
}

func (e *Engine) signLocked(ctx context.Context, documentID, userID string, req SignRequest) (*document.Signature, []event, error) {
	doc, err := e.repo.Get(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	if doc.Status != document.StatusSigning {
		return nil, nil, document.ErrInvalidState
	}
	if !document.IsReady(doc.Signatories, userID) {
		return nil, nil, document.ErrNotReady
	}
	row := doc.Signatory(userID)
	if row == nil || row.Status != document.SignatoryPending {
		return nil, nil, document.ErrNotFound
	}

	now := e.now()
	sig := &document.Signature{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		UserID:     userID,
		Data:       req.Data,
		Position:   req.Position,
		Timestamp:  now,
	}
	if _, err := e.repo.CreateSignature(ctx, sig); err != nil {
		return nil, nil, err
	}

	row.Status = document.SignatorySigned
	row.SignedAt = &now
	row.UpdatedAt = now
	doc.UpdatedAt = now
	evts := e.advance(doc)
	if err := e.repo.Update(ctx, doc); err != nil {
		return nil, nil, err
	}
	return sig, evts, nil
}

// advance runs the completion check on the freshly mutated aggregate and
// returns the events to dispatch once the mutation has been persisted. Runs
// inside the per-document lock, so completion is detected exactly once.
func (e *Engine) advance(doc *document.Document) []event {
	allSigned := len(doc.Signatories) > 0
	for _, s := range doc.Signatories {
		if s.Status != document.SignatorySigned {
			allSigned = false
			break
		}
	}
	if allSigned {
		doc.Status = document.StatusCompleted
		return []event{{kind: evCompleted, doc: doc}}
	}
	if tier := document.CurrentTier(doc.Signatories); len(tier) > 0 {
		return []event{{kind: evTierReady, doc: doc, tier: tier}}
	}
	// No pending tier and not all signed: every remaining row was rejected.
	// Nothing to notify; the document status already reflects the outcome.
	return nil
}

// Reject marks the caller's signatory row REJECTED and terminates the whole
// document. Sibling PENDING rows are left untouched in storage; they are no
// longer actionable because the document is terminal.
func (e *Engine) Reject(ctx context.Context, documentID, userID, reason string) error {
	unlock := e.locks.lock(documentID)
	evts, err := e.rejectLocked(ctx, documentID, userID, reason)
	unlock()
	if err != nil {
		return err
	}
	metrics.DocumentsRejected.Inc()
	e.record(ctx, userID, ActionRejectDocument, documentID, map[string]any{"reason": reason})
	e.dispatch(ctx, evts)
	return nil
}

func (e *Engine) rejectLocked(ctx context.Context, documentID, userID, reason string) ([]event, error) {
	doc, err := e.repo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != document.StatusSigning {
		return nil, document.ErrInvalidState
	}
	if !document.IsReady(doc.Signatories, userID) {
		return nil, document.ErrNotReady
	}
	row := doc.Signatory(userID)
	if row == nil || row.Status != document.SignatoryPending {
		return nil, document.ErrNotFound
	}

	now := e.now()
	row.Status = document.SignatoryRejected
	row.RejectionReason = reason
	row.UpdatedAt = now
	doc.Status = document.StatusRejected
	doc.UpdatedAt = now
	if err := e.repo.Update(ctx, doc); err != nil {
		return nil, err
	}
	return []event{{kind: evRejected, doc: doc, rejector: userID, reason: reason}}, nil
}

// Cancel aborts a PENDING or SIGNING document. Only the owner or an admin may
// cancel. A cancel racing an in-flight signature is resolved by the
// per-document lock: whichever commits first wins, the loser sees
// ErrInvalidState.
func (e *Engine) Cancel(ctx context.Context, actor Actor, documentID string) error {
	unlock := e.locks.lock(documentID)
	evts, err := e.cancelLocked(ctx, actor, documentID)
	unlock()
	if err != nil {
		return err
	}
	metrics.DocumentsCancelled.Inc()
	e.record(ctx, actor.ID, ActionCancelDocument, documentID, nil)
	e.dispatch(ctx, evts)
	return nil
}

func (e *Engine) cancelLocked(ctx context.Context, actor Actor, documentID string) ([]event, error) {
	doc, err := e.repo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !canManage(doc, actor) {
		return nil, document.ErrNotReady
	}
	if doc.Status != document.StatusPending && doc.Status != document.StatusSigning {
		return nil, document.ErrInvalidState
	}
	doc.Status = document.StatusCanceled
	doc.UpdatedAt = e.now()
	if err := e.repo.Update(ctx, doc); err != nil {
		return nil, err
	}
	return []event{{kind: evCancelled, doc: doc}}, nil
}

// UpdatePatch is a partial edit of non-workflow fields. A Status value is
// honored only when it equals CANCELED (routed through the cancel rule) — or,
// for admins that explicitly set AdminOverride, written through as-is.
type UpdatePatch struct {
	Title         *string
	Description   *string
	Status        *document.DocumentStatus
	AdminOverride bool
}

// Update merges the patch into the document. Owner or admin only.
func (e *Engine) Update(ctx context.Context, actor Actor, documentID string, patch UpdatePatch) (*document.Document, error) {
	unlock := e.locks.lock(documentID)
	doc, evts, err := e.updateLocked(ctx, actor, documentID, patch)
	unlock()
	if err != nil {
		return nil, err
	}
	if len(evts) > 0 {
		metrics.DocumentsCancelled.Inc()
		e.record(ctx, actor.ID, ActionCancelDocument, documentID, nil)
	}
	e.dispatch(ctx, evts)
	return doc, nil
}

func (e *Engine) updateLocked(ctx context.Context, actor Actor, documentID string, patch UpdatePatch) (*document.Document, []event, error) {
	doc, err := e.repo.Get(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	if !canManage(doc, actor) {
		return nil, nil, document.ErrNotReady
	}

	var evts []event
	if patch.Status != nil {
		switch {
		case *patch.Status == document.StatusCanceled:
			if doc.Status != document.StatusPending && doc.Status != document.StatusSigning {
				return nil, nil, document.ErrInvalidState
			}
			doc.Status = document.StatusCanceled
			evts = append(evts, event{kind: evCancelled, doc: doc})
		case actor.Admin && patch.AdminOverride:
			// Administrative override: bypasses the state machine on purpose.
			// Loudly logged so it never becomes a silent backdoor.
			logger.Warnf("admin %s overrode status of document %s: %s -> %s", actor.ID, doc.ID, doc.Status, *patch.Status)
			doc.Status = *patch.Status
		default:
			return nil, nil, document.ErrInvalidState
		}
	}
	if patch.Title != nil {
		doc.Title = *patch.Title
	}
	if patch.Description != nil {
		doc.Description = *patch.Description
	}
	doc.UpdatedAt = e.now()
	if err := e.repo.Update(ctx, doc); err != nil {
		return nil, nil, err
	}
	return doc, evts, nil
}

// Delete removes the document with its signatory rows and signature records.
// Returns the deleted document so the caller can clean up binary storage.
func (e *Engine) Delete(ctx context.Context, actor Actor, documentID string) (*document.Document, error) {
	unlock := e.locks.lock(documentID)
	defer unlock()
	doc, err := e.repo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !canManage(doc, actor) {
		return nil, document.ErrNotReady
	}
	if err := e.repo.Delete(ctx, documentID); err != nil {
		return nil, err
	}
	e.record(ctx, actor.ID, ActionDeleteDocument, documentID, nil)
	return doc, nil
}

// Get returns the document when the actor may view it: owner, admin or any
// listed signatory.
func (e *Engine) Get(ctx context.Context, actor Actor, documentID string) (*document.Document, error) {
	doc, err := e.repo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !canView(doc, actor) {
		return nil, document.ErrNotReady
	}
	e.record(ctx, actor.ID, ActionViewDocument, documentID, nil)
	return doc, nil
}

// Download authorizes like Get but audits as a download.
func (e *Engine) Download(ctx context.Context, actor Actor, documentID string) (*document.Document, error) {
	doc, err := e.repo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !canView(doc, actor) {
		return nil, document.ErrNotReady
	}
	e.record(ctx, actor.ID, ActionDownloadDocument, documentID, nil)
	return doc, nil
}

// List returns every document for admins, otherwise the actor's own.
func (e *Engine) List(ctx context.Context, actor Actor) ([]*document.Document, error) {
	if actor.Admin {
		return e.repo.List(ctx)
	}
	return e.repo.ListForUser(ctx, actor.ID)
}

// ListSignatures returns the signature side records of a viewable document.
func (e *Engine) ListSignatures(ctx context.Context, actor Actor, documentID string) ([]*document.Signature, error) {
	doc, err := e.repo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !canView(doc, actor) {
		return nil, document.ErrNotReady
	}
	return e.repo.ListSignatures(ctx, documentID)
}

// CheckCompletion is the idempotent standalone completion probe. It reports
// whether this call transitioned the document to COMPLETED; an already
// terminal document is a no-op returning false.
func (e *Engine) CheckCompletion(ctx context.Context, documentID string) (bool, error) {
	unlock := e.locks.lock(documentID)
	completed, evts, err := e.checkCompletionLocked(ctx, documentID)
	unlock()
	if err != nil {
		return false, err
	}
	e.dispatch(ctx, evts)
	return completed, nil
}

func (e *Engine) checkCompletionLocked(ctx context.Context, documentID string) (bool, []event, error) {
	doc, err := e.repo.Get(ctx, documentID)
	if err != nil {
		return false, nil, err
	}
	if doc.Status.Terminal() || len(doc.Signatories) == 0 {
		return false, nil, nil
	}
	for _, s := range doc.Signatories {
		if s.Status != document.SignatorySigned {
			return false, nil, nil
		}
	}
	doc.Status = document.StatusCompleted
	doc.UpdatedAt = e.now()
	if err := e.repo.Update(ctx, doc); err != nil {
		return false, nil, err
	}
	return true, []event{{kind: evCompleted, doc: doc}}, nil
}

func canManage(doc *document.Document, actor Actor) bool {
	return actor.Admin || actor.ID == doc.OwnerID
}

func canView(doc *document.Document, actor Actor) bool {
	return canManage(doc, actor) || doc.IsSignatory(actor.ID)
}
