package sender

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sony/gobreaker"

	"nolofication/internal/domain/entity"
	"nolofication/internal/resilience/circuitbreaker"
	"nolofication/internal/usecase/dispatch"
)

// Breaker-wrapped senders. Each decorator fronts a channel transport
// with a circuit breaker so a failing downstream (SES outage, Discord
// incident) sheds load quickly instead of stacking up timeouts. A shed
// delivery counts as a skip, not a transport failure.

// execute runs fn through the breaker and normalizes shed errors.
func execute(cb *circuitbreaker.CircuitBreaker, channel string, fn func() error) error {
	_, err := cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		dispatch.RecordSkipped(channel, "breaker_open")
		slog.Warn("delivery shed by circuit breaker",
			slog.String("channel", channel),
			slog.String("circuit", cb.Name()))
	}
	return err
}

// BreakerEmailSender wraps an email sender with a circuit breaker.
type BreakerEmailSender struct {
	next dispatch.EmailSender
	cb   *circuitbreaker.CircuitBreaker
}

// NewBreakerEmailSender wraps next with the email delivery breaker.
func NewBreakerEmailSender(next dispatch.EmailSender) *BreakerEmailSender {
	return &BreakerEmailSender{next: next, cb: circuitbreaker.New(circuitbreaker.EmailDeliveryConfig())}
}

func (b *BreakerEmailSender) Send(ctx context.Context, to string, content entity.NotificationContent) error {
	return execute(b.cb, dispatch.ChannelEmail, func() error {
		return b.next.Send(ctx, to, content)
	})
}

// BreakerPushSender wraps a push sender with a circuit breaker. Dead
// endpoints are a per-subscription condition, not a downstream outage,
// so they do not count as breaker failures.
type BreakerPushSender struct {
	next dispatch.PushSender
	cb   *circuitbreaker.CircuitBreaker
}

// NewBreakerPushSender wraps next with the push delivery breaker.
func NewBreakerPushSender(next dispatch.PushSender) *BreakerPushSender {
	return &BreakerPushSender{next: next, cb: circuitbreaker.New(circuitbreaker.PushDeliveryConfig())}
}

func (b *BreakerPushSender) Send(ctx context.Context, sub *entity.PushSubscription, content entity.NotificationContent) error {
	var goneErr error
	err := execute(b.cb, dispatch.ChannelPush, func() error {
		err := b.next.Send(ctx, sub, content)
		if errors.Is(err, dispatch.ErrEndpointGone) {
			goneErr = err
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	return goneErr
}

// BreakerChatSender wraps a chat sender with a circuit breaker.
type BreakerChatSender struct {
	next dispatch.ChatSender
	cb   *circuitbreaker.CircuitBreaker
}

// NewBreakerChatSender wraps next with the chat delivery breaker.
func NewBreakerChatSender(next dispatch.ChatSender) *BreakerChatSender {
	return &BreakerChatSender{next: next, cb: circuitbreaker.New(circuitbreaker.ChatDeliveryConfig())}
}

func (b *BreakerChatSender) SendDM(ctx context.Context, destinationID string, content entity.NotificationContent) error {
	return execute(b.cb, dispatch.ChannelChat, func() error {
		return b.next.SendDM(ctx, destinationID, content)
	})
}

// BreakerWebhookSender wraps a webhook sender with a circuit breaker.
type BreakerWebhookSender struct {
	next dispatch.WebhookSender
	cb   *circuitbreaker.CircuitBreaker
}

// NewBreakerWebhookSender wraps next with the webhook delivery breaker.
func NewBreakerWebhookSender(next dispatch.WebhookSender) *BreakerWebhookSender {
	return &BreakerWebhookSender{next: next, cb: circuitbreaker.New(circuitbreaker.WebhookDeliveryConfig())}
}

func (b *BreakerWebhookSender) Send(ctx context.Context, url string, content entity.NotificationContent) error {
	return execute(b.cb, dispatch.ChannelWebhook, func() error {
		return b.next.Send(ctx, url, content)
	})
}
