package entity

import (
	"encoding/json"
	"time"
)

// Notification types carried on every payload. The type only affects
// presentation (colors, emoji) in the channel transports.
const (
	TypeInfo    = "info"
	TypeSuccess = "success"
	TypeWarning = "warning"
	TypeError   = "error"
)

// NotificationContent is the channel-independent payload of one
// notification. The same content travels the immediate path and the
// deferred (queued) path.
type NotificationContent struct {
	Title       string
	Message     string
	HTMLMessage string
	Type        string
	CategoryKey string
	Metadata    json.RawMessage
}

// ChannelResult records the per-channel outcome of one dispatch. A false
// value means the channel was disabled, unaddressable, or its transport
// failed; the distinction is visible only in logs.
type ChannelResult struct {
	Email   bool
	Push    bool
	ChatDM  bool
	Webhook bool
}

// Any reports whether at least one channel accepted the notification.
func (r ChannelResult) Any() bool {
	return r.Email || r.Push || r.ChatDM || r.Webhook
}

// Notification is the immutable log row written after every dispatch.
type Notification struct {
	ID          int64
	UserID      int64
	SiteID      int64
	Title       string
	Message     string
	Type        string
	CategoryKey string

	SentViaEmail   bool
	SentViaPush    bool
	SentViaChat    bool
	SentViaWebhook bool

	IsRead    bool
	CreatedAt time.Time
}

// PendingNotification is a queued, deferred notification. It is deleted
// on successful dispatch and soft-cancelled (CancelledAt set) otherwise;
// cancelled rows are retained for a bounded audit window, then purged.
type PendingNotification struct {
	ID     int64
	UserID int64
	SiteID int64

	Title       string
	Message     string
	HTMLMessage string
	Type        string
	CategoryKey string
	Metadata    json.RawMessage

	// ScheduledFor is the absolute (UTC) instant the entry becomes due.
	// All timezone arithmetic happens once, at schedule-computation time.
	ScheduledFor time.Time

	CancelledAt *time.Time
	CreatedAt   time.Time
}

// Cancelled reports whether the entry has been soft-cancelled.
func (p *PendingNotification) Cancelled() bool {
	return p.CancelledAt != nil
}

// Content extracts the channel-independent payload from the queue entry.
func (p *PendingNotification) Content() NotificationContent {
	return NotificationContent{
		Title:       p.Title,
		Message:     p.Message,
		HTMLMessage: p.HTMLMessage,
		Type:        p.Type,
		CategoryKey: p.CategoryKey,
		Metadata:    p.Metadata,
	}
}
