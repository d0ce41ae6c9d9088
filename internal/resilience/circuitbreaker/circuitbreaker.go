// Package circuitbreaker shields the notification engine from failing
// dependencies. Each delivery channel and the database get their own
// sony/gobreaker instance, so an SES outage stops email sends without
// touching push, chat or webhook traffic.
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config tunes one breaker.
type Config struct {
	// Name appears in logs and metrics.
	Name string

	// MaxRequests allowed through while half-open.
	MaxRequests uint32

	// Interval resets the closed-state counts.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	// FailureThreshold is the failure ratio that trips the breaker,
	// evaluated only after MinRequests calls.
	FailureThreshold float64

	MinRequests uint32
}

// DefaultConfig is the baseline the per-channel configs start from.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// EmailDeliveryConfig returns configuration optimized for SES calls.
// SES is a shared regional service; a tripped breaker usually means the
// sending quota is exhausted, so the timeout is generous.
func EmailDeliveryConfig() Config {
	cfg := DefaultConfig("email-delivery")
	cfg.Interval = 60 * time.Second
	cfg.Timeout = 120 * time.Second
	return cfg
}

// ChatDeliveryConfig returns configuration optimized for Discord API calls.
func ChatDeliveryConfig() Config {
	return DefaultConfig("chat-delivery")
}

// PushDeliveryConfig returns configuration optimized for push endpoint calls.
// Endpoints are spread across many push services, so the threshold is
// high; only a broad outage should stop the whole channel.
func PushDeliveryConfig() Config {
	cfg := DefaultConfig("push-delivery")
	cfg.MaxRequests = 5
	cfg.Interval = 60 * time.Second
	cfg.FailureThreshold = 0.8
	cfg.MinRequests = 10
	return cfg
}

// WebhookDeliveryConfig returns configuration optimized for user webhooks.
// Targets are heterogeneous user servers; one broken server must not
// trip the channel, hence the high threshold and larger sample.
func WebhookDeliveryConfig() Config {
	cfg := DefaultConfig("webhook-delivery")
	cfg.MaxRequests = 5
	cfg.Interval = 60 * time.Second
	cfg.Timeout = 120 * time.Second
	cfg.FailureThreshold = 0.8
	cfg.MinRequests = 10
	return cfg
}

// CircuitBreaker wraps one gobreaker instance.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New builds a breaker from cfg. State transitions are logged so an
// opened channel shows up without waiting for a metrics scrape.
func New(cfg Config) *CircuitBreaker {
	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:          cfg.Name,
			MaxRequests:   cfg.MaxRequests,
			Interval:      cfg.Interval,
			Timeout:       cfg.Timeout,
			ReadyToTrip:   tripAboveRatio(cfg.MinRequests, cfg.FailureThreshold),
			OnStateChange: logStateChange,
		}),
		name: cfg.Name,
	}
}

func tripAboveRatio(minRequests uint32, threshold float64) func(gobreaker.Counts) bool {
	return func(counts gobreaker.Counts) bool {
		if counts.Requests < minRequests {
			return false
		}
		return float64(counts.TotalFailures)/float64(counts.Requests) >= threshold
	}
}

func logStateChange(name string, from, to gobreaker.State) {
	slog.Warn("circuit breaker state changed",
		slog.String("circuit", name),
		slog.String("from", from.String()),
		slog.String("to", to.String()))
}

// Execute runs fn through the breaker; while open it fails fast with
// gobreaker.ErrOpenState.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// State returns the breaker's current state.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Name returns the breaker's name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen reports whether the breaker is currently failing fast.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
