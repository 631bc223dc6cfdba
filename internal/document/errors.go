package document

import "errors"

// Error taxonomy shared by the repository and the workflow engine. Validation
// errors are detected before any mutation; callers can match them with
// errors.Is.
var (
	// ErrNotFound: the document, signatory row or referenced user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotReady: the caller is not in the current tier, or is neither the
	// owner nor a listed signatory of the document.
	ErrNotReady = errors.New("not this user's turn")

	// ErrInvalidState: the requested transition is forbidden in the document's
	// current state (e.g. cancel after completion, sign on a terminal document).
	ErrInvalidState = errors.New("operation not allowed in current document state")

	// ErrConflict: uniqueness violation (duplicate signatory pairing and the like).
	ErrConflict = errors.New("conflict")

	// ErrInternal: persistence or dispatcher failure not otherwise classified.
	ErrInternal = errors.New("internal error")
)
