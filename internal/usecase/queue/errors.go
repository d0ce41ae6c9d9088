// Package queue manages deferred notifications: enqueueing them for a
// computed delivery instant, cancelling them before they fire, draining
// the due ones, and purging old cancelled entries.
package queue

import "errors"

// Sentinel errors for queue operations.
var (
	// ErrPendingNotFound indicates the pending notification does not
	// exist or does not belong to the requesting user.
	ErrPendingNotFound = errors.New("pending notification not found")

	// ErrAlreadyCancelled indicates a cancel was attempted on an entry
	// that is already cancelled. Cancellation is not idempotent: the
	// second attempt is rejected so callers notice the double submit.
	ErrAlreadyCancelled = errors.New("pending notification already cancelled")
)
