package dispatch

import "errors"

// Sentinel errors shared between the dispatcher and sender implementations.
var (
	// ErrEndpointGone indicates the push service reported a subscription
	// endpoint as permanently invalid (HTTP 404/410). The dispatcher
	// treats it as an ordinary failed attempt; it only keeps dead
	// endpoints from counting against the push delivery breaker.
	ErrEndpointGone = errors.New("push endpoint gone")
)
