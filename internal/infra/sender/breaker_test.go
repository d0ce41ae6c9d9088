package sender

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"

	"nolofication/internal/domain/entity"
	"nolofication/internal/usecase/dispatch"
)

type flakySender struct {
	err   error
	calls int
}

func (f *flakySender) Send(_ context.Context, _ string, _ entity.NotificationContent) error {
	f.calls++
	return f.err
}

type flakyPushSender struct {
	err   error
	calls int
}

func (f *flakyPushSender) Send(_ context.Context, _ *entity.PushSubscription, _ entity.NotificationContent) error {
	f.calls++
	return f.err
}

func TestBreakerEmailSender(t *testing.T) {
	t.Run("passes successes through", func(t *testing.T) {
		next := &flakySender{}
		b := NewBreakerEmailSender(next)

		if err := b.Send(context.Background(), "user@example.com", entity.NotificationContent{Title: "t"}); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if next.calls != 1 {
			t.Errorf("expected 1 call, got %d", next.calls)
		}
	})

	t.Run("opens after sustained failures and sheds load", func(t *testing.T) {
		next := &flakySender{err: errors.New("ses down")}
		b := NewBreakerEmailSender(next)

		// Email breaker requires 5 samples before tripping.
		for i := 0; i < 5; i++ {
			_ = b.Send(context.Background(), "user@example.com", entity.NotificationContent{Title: "t"})
		}

		callsBefore := next.calls
		err := b.Send(context.Background(), "user@example.com", entity.NotificationContent{Title: "t"})
		if !errors.Is(err, gobreaker.ErrOpenState) {
			t.Fatalf("expected ErrOpenState, got %v", err)
		}
		if next.calls != callsBefore {
			t.Error("open breaker must not reach the transport")
		}
	})
}

func TestBreakerPushSender_GoneEndpointDoesNotTrip(t *testing.T) {
	next := &flakyPushSender{err: &ClientError{StatusCode: 410, Message: "gone", Err: dispatch.ErrEndpointGone}}
	b := NewBreakerPushSender(next)

	sub := &entity.PushSubscription{ID: 1, Endpoint: "https://push.example.com/ep"}
	for i := 0; i < 20; i++ {
		err := b.Send(context.Background(), sub, entity.NotificationContent{Title: "t"})
		if !errors.Is(err, dispatch.ErrEndpointGone) {
			t.Fatalf("call %d: expected ErrEndpointGone, got %v", i+1, err)
		}
	}
	if next.calls != 20 {
		t.Errorf("expected every call to reach the transport, got %d", next.calls)
	}
}
