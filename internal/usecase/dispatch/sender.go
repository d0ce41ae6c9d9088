// Package dispatch fans one notification out to every channel the
// resolved preferences enable, records the per-channel outcome, and
// writes the immutable history row.
package dispatch

import (
	"context"

	"nolofication/internal/domain/entity"
)

// Channel names used in logs and metric labels.
const (
	ChannelEmail   = "email"
	ChannelPush    = "push"
	ChannelChat    = "chat"
	ChannelWebhook = "webhook"
)

// EmailSender delivers a notification to one email address.
//
// Thread Safety:
//   - All senders must be safe for concurrent use by multiple goroutines.
//
// Context Handling:
//   - Implementations must respect context cancellation and timeout.
//   - request_id should be extracted from context for logging.
type EmailSender interface {
	Send(ctx context.Context, to string, content entity.NotificationContent) error
}

// PushSender delivers a notification to one registered push endpoint.
// Implementations return ErrEndpointGone when the push service reports
// the subscription as permanently invalid; the dispatcher records the
// attempt as failed and leaves the subscription in place.
type PushSender interface {
	Send(ctx context.Context, sub *entity.PushSubscription, content entity.NotificationContent) error
}

// ChatSender delivers a notification as a direct message to a chat
// destination (the user's DM channel on the configured chat platform).
type ChatSender interface {
	SendDM(ctx context.Context, destinationID string, content entity.NotificationContent) error
}

// WebhookSender POSTs a notification to a user-configured webhook URL.
type WebhookSender interface {
	Send(ctx context.Context, url string, content entity.NotificationContent) error
}
