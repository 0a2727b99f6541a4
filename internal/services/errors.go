package services

import (
	"errors"
)

// Service-level sentinels. Handlers map these onto HTTP statuses; everything
// else is an internal error.
var (
	// ErrValidation rejects bad input before any write happens.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is a lookup miss with no side effects.
	ErrNotFound = errors.New("not found")

	// ErrNotReady means the review-set tables do not exist yet in this
	// deployment. Callers fall back to the pre-migration feature; this is not
	// a crash condition.
	ErrNotReady = errors.New("review set tables not ready")

	// ErrEmptySet rejects reminder generation from a list with no items.
	ErrEmptySet = errors.New("review set has no items")
)
