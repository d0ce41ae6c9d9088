package sender

import (
	"context"

	"nolofication/internal/domain/entity"
)

// NoOpSender is a no-operation implementation of every channel sender
// interface. It is used when a channel is disabled by configuration to
// avoid nil checks in the dispatcher wiring.
// This follows the Null Object pattern.
type NoOpSender struct{}

// NewNoOpSender creates a new NoOpSender instance.
func NewNoOpSender() *NoOpSender {
	return &NoOpSender{}
}

// Send does nothing and returns nil immediately.
func (n *NoOpSender) Send(ctx context.Context, _ string, _ entity.NotificationContent) error {
	// No-op: intentionally does nothing
	return nil
}

// SendDM does nothing and returns nil immediately.
func (n *NoOpSender) SendDM(ctx context.Context, _ string, _ entity.NotificationContent) error {
	return nil
}

// NoOpPushSender is the push-channel null object.
type NoOpPushSender struct{}

// NewNoOpPushSender creates a new NoOpPushSender instance.
func NewNoOpPushSender() *NoOpPushSender {
	return &NoOpPushSender{}
}

// Send does nothing and returns nil immediately.
func (n *NoOpPushSender) Send(ctx context.Context, _ *entity.PushSubscription, _ entity.NotificationContent) error {
	return nil
}
