// Package moderation holds the comment moderation rules: the state machine,
// the visibility policy and the capability resolver. Everything here is pure;
// persistence and lookups live in the service layer.
package moderation

import "errors"

var (
	// ErrUnauthorized means the actor lacks the capability the operation needs
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidTransition means the target state is unknown or its preconditions failed
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrNotFound means a comment, post or user id did not resolve
	ErrNotFound = errors.New("not found")

	// ErrConflict means the record changed since it was read. Callers may re-read and retry.
	ErrConflict = errors.New("conflict: comment changed since it was read")
)
