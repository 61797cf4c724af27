package core

import "errors"

// Error taxonomy surfaced by every core operation. Handlers map these onto
// HTTP statuses; the core itself never speaks HTTP.
var (
	// ErrNotFound: a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict: an exclusivity precondition is violated, e.g. the user
	// already belongs to a group.
	ErrConflict = errors.New("conflict")

	// ErrInvalidState: the operation is invalid given current entity state,
	// e.g. leaving a group without being in one.
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation: a field value is malformed or out of range.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden: the caller is authenticated but not entitled to the
	// target, e.g. listing tasks with no group affiliation.
	ErrForbidden = errors.New("forbidden")
)
