package service

import "errors"

// Error taxonomy shared by the file and kyc services. Handlers translate
// these to HTTP statuses; anything not wrapping one of them is an
// infrastructure failure and surfaces as a generic internal error.
var (
	// ErrValidation marks bad input: size over limit, disallowed file type.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an unknown id/token or an absent/deleted object.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks an authorization failure.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict marks a category already present on a verification case.
	ErrConflict = errors.New("conflict")
	// ErrInvalidState marks a transition attempted on a terminal or
	// otherwise ineligible state.
	ErrInvalidState = errors.New("invalid state")
)

// Requester is the identity context of the caller, consumed for
// authorization checks only.
type Requester struct {
	UserID  string
	IsAdmin bool
}
