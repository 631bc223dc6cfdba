package document

import "time"

// DocumentStatus is the lifecycle state of a document's signing flow.
type DocumentStatus string

const (
	StatusPending   DocumentStatus = "PENDING"
	StatusSigning   DocumentStatus = "SIGNING"
	StatusCompleted DocumentStatus = "COMPLETED"
	StatusCanceled  DocumentStatus = "CANCELED"
	StatusRejected  DocumentStatus = "REJECTED"
)

// Terminal reports whether no further workflow transitions are permitted.
func (s DocumentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled || s == StatusRejected
}

// SignatoryStatus is the per-signatory state. Transitions are one-way:
// PENDING -> SIGNED or PENDING -> REJECTED.
type SignatoryStatus string

const (
	SignatoryPending  SignatoryStatus = "PENDING"
	SignatorySigned   SignatoryStatus = "SIGNED"
	SignatoryRejected SignatoryStatus = "REJECTED"
)

// Document is the aggregate root of the signing workflow. It owns its
// signatory rows (embedded, cascade on delete); signatures and users are
// referenced by id only.
type Document struct {
	ID          string              `json:"id" bson:"_id,omitempty"`
	Title       string              `json:"title" bson:"title"`
	Description string              `json:"description,omitempty" bson:"description,omitempty"`
	OwnerID     string              `json:"ownerId" bson:"ownerId"`
	StoragePath string              `json:"storagePath,omitempty" bson:"storagePath,omitempty"`
	Status      DocumentStatus      `json:"status" bson:"status"`
	Signatories []DocumentSignatory `json:"signatories" bson:"signatories"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// Signatory returns a pointer to the signatory row for the given user, or nil.
// A user appears at most once per document.
func (d *Document) Signatory(userID string) *DocumentSignatory {
	for i := range d.Signatories {
		if d.Signatories[i].UserID == userID {
			return &d.Signatories[i]
		}
	}
	return nil
}

// IsSignatory reports whether the user is listed on the document.
func (d *Document) IsSignatory(userID string) bool {
	return d.Signatory(userID) != nil
}

// DocumentSignatory is one user's slot in a document's signing order.
// Order 0 means the fully-parallel tier; a positive order is a sequential
// tier, and signatories sharing the same positive order act as a parallel
// sub-group within it.
type DocumentSignatory struct {
	ID              string          `json:"id" bson:"id"`
	DocumentID      string          `json:"documentId" bson:"documentId"`
	UserID          string          `json:"userId" bson:"userId"`
	Order           int             `json:"order" bson:"order"`
	Status          SignatoryStatus `json:"status" bson:"status"`
	SignedAt        *time.Time      `json:"signedAt,omitempty" bson:"signedAt,omitempty"`
	RejectionReason string          `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	CreatedAt       time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// SignaturePosition locates a signature on a page of the rendered document.
type SignaturePosition struct {
	Page int     `json:"page" bson:"page"`
	X    float64 `json:"x" bson:"x"`
	Y    float64 `json:"y" bson:"y"`
}

// Signature is the immutable side record created once per successful signing.
// It is never used to derive workflow state.
type Signature struct {
	ID         string             `json:"id" bson:"_id,omitempty"`
	DocumentID string             `json:"documentId" bson:"documentId"`
	UserID     string             `json:"userId" bson:"userId"`
	Data       string             `json:"signatureData" bson:"signatureData"`
	Position   *SignaturePosition `json:"positionData,omitempty" bson:"positionData,omitempty"`
	Timestamp  time.Time          `json:"timestamp" bson:"timestamp"`
}
