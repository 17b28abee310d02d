package domain

import "errors"

var (
	// ErrNotFound is returned when a resource does not exist or is not
	// visible to the caller. Ownership failures use it too so they don't
	// leak existence.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller's role may not perform the action
	ErrForbidden = errors.New("forbidden")

	// ErrValidation wraps input validation failures
	ErrValidation = errors.New("validation failed")

	// ErrNoSymptomData is returned when a user has not submitted any symptoms yet
	ErrNoSymptomData = errors.New("no symptom data found")
)
