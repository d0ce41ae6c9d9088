// Package notify is the entry point of the delivery engine. It decides
// whether a notification goes out now or is deferred, routes immediate
// ones through the dispatcher, and enqueues deferred ones.
package notify

import "errors"

// Sentinel errors for notify operations.
var (
	// ErrUserNotFound indicates the referenced user does not exist.
	// Surfaced to the caller, never retried.
	ErrUserNotFound = errors.New("user not found")

	// ErrSiteNotFound indicates the referenced site does not exist or is
	// not active.
	ErrSiteNotFound = errors.New("site not found")

	// ErrQueueWrite indicates the deferred store rejected an enqueue.
	// This is a hard failure: silently losing a scheduled notification is
	// worse than rejecting the request.
	ErrQueueWrite = errors.New("queue write failed")
)
