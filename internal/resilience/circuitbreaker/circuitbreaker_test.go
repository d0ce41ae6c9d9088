package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

var errProviderDown = errors.New("ses: throttling: maximum sending rate exceeded")

func newTestBreaker(timeout time.Duration) *CircuitBreaker {
	cfg := DefaultConfig("email-delivery-test")
	cfg.Timeout = timeout
	return New(cfg)
}

func failN(cb *CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		_, _ = cb.Execute(func() (interface{}, error) {
			return nil, errProviderDown
		})
	}
}

func TestNew_StartsClosed(t *testing.T) {
	cb := newTestBreaker(20 * time.Second)

	if cb.Name() != "email-delivery-test" {
		t.Errorf("Name() = %q", cb.Name())
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("initial state = %v, want Closed", cb.State())
	}
	if cb.IsOpen() {
		t.Error("IsOpen() = true on a fresh breaker")
	}
}

func TestExecute_PassesResultThrough(t *testing.T) {
	cb := newTestBreaker(20 * time.Second)

	result, err := cb.Execute(func() (interface{}, error) {
		return "message-id-0001", nil
	})

	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result != "message-id-0001" {
		t.Errorf("result = %v", result)
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("state = %v after a success, want Closed", cb.State())
	}
}

func TestExecute_PassesErrorThrough(t *testing.T) {
	cb := newTestBreaker(20 * time.Second)

	result, err := cb.Execute(func() (interface{}, error) {
		return nil, errProviderDown
	})

	if !errors.Is(err, errProviderDown) {
		t.Errorf("err = %v, want the sender error", err)
	}
	if result != nil {
		t.Errorf("result = %v, want nil", result)
	}
}

func TestBreaker_TripsAboveFailureRatio(t *testing.T) {
	cb := newTestBreaker(time.Second)

	// 4 failures + 1 success keeps the breaker closed at the
	// MinRequests boundary; the sixth call pushes the ratio over 0.6.
	failN(cb, 4)
	if _, err := cb.Execute(func() (interface{}, error) { return "ok", nil }); err != nil {
		t.Fatalf("success call: %v", err)
	}
	failN(cb, 1)

	if !cb.IsOpen() {
		t.Fatalf("state = %v, want Open after sustained failures", cb.State())
	}

	_, err := cb.Execute(func() (interface{}, error) {
		t.Error("send must not run while the breaker is open")
		return nil, nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("err = %v, want ErrOpenState", err)
	}
}

func TestBreaker_RecoversThroughHalfOpen(t *testing.T) {
	cb := newTestBreaker(100 * time.Millisecond)
	failN(cb, 6)
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want Open", cb.State())
	}

	time.Sleep(150 * time.Millisecond)

	if _, err := cb.Execute(func() (interface{}, error) { return "sent", nil }); err != nil {
		t.Fatalf("half-open probe: %v", err)
	}
	if cb.State() == gobreaker.StateOpen {
		t.Errorf("state = %v after successful probe, want not Open", cb.State())
	}
}

func TestBreaker_StaysClosedBelowMinRequests(t *testing.T) {
	cfg := DefaultConfig("webhook-delivery-test")
	cfg.FailureThreshold = 0.5
	cfg.MinRequests = 10
	cb := New(cfg)

	failN(cb, 4)

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("state = %v with only 4 calls, want Closed", cb.State())
	}
}

func TestChannelConfigs(t *testing.T) {
	tests := []struct {
		name             string
		cfg              Config
		wantTimeout      time.Duration
		wantThreshold    float64
		wantMinRequests  uint32
		wantHalfOpenSize uint32
	}{
		{"email", EmailDeliveryConfig(), 120 * time.Second, 0.6, 5, 3},
		{"chat", ChatDeliveryConfig(), 60 * time.Second, 0.6, 5, 3},
		{"push", PushDeliveryConfig(), 60 * time.Second, 0.8, 10, 5},
		{"webhook", WebhookDeliveryConfig(), 120 * time.Second, 0.8, 10, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cfg.Name != tt.name+"-delivery" {
				t.Errorf("Name = %q, want %q", tt.cfg.Name, tt.name+"-delivery")
			}
			if tt.cfg.Timeout != tt.wantTimeout {
				t.Errorf("Timeout = %v, want %v", tt.cfg.Timeout, tt.wantTimeout)
			}
			if tt.cfg.FailureThreshold != tt.wantThreshold {
				t.Errorf("FailureThreshold = %v, want %v", tt.cfg.FailureThreshold, tt.wantThreshold)
			}
			if tt.cfg.MinRequests != tt.wantMinRequests {
				t.Errorf("MinRequests = %d, want %d", tt.cfg.MinRequests, tt.wantMinRequests)
			}
			if tt.cfg.MaxRequests != tt.wantHalfOpenSize {
				t.Errorf("MaxRequests = %d, want %d", tt.cfg.MaxRequests, tt.wantHalfOpenSize)
			}
		})
	}
}
