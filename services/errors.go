package services

import (
	"errors"
)

// Error taxonomy. Data-access functions wrap one of these sentinels so the
// HTTP boundary can branch without inspecting messages.
var (
	// ErrValidation marks malformed caller input: a missing base id, a bad
	// invoice-id format, a bad email address.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced document that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrLimitExceeded marks an email send attempted past its cap.
	ErrLimitExceeded = errors.New("limit exceeded")

	// ErrUpstream marks a failed document store, payment provider or email
	// provider call. Surfaced to users as a generic "please reload" message.
	ErrUpstream = errors.New("upstream failure")
)
