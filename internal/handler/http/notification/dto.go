// Package notification provides the HTTP handlers for the notification
// API: the site-facing ingestion endpoints (notify, pending queue) and
// the user-facing history endpoints.
package notification

import (
	"encoding/json"
	"time"

	"nolofication/internal/domain/entity"
	"nolofication/internal/usecase/notify"
)

// notifyRequest is the JSON body of the notify endpoint. Exactly one of
// UserID and UserIDs must be set; a non-empty UserIDs makes the request
// a bulk batch.
type notifyRequest struct {
	UserID      int64           `json:"user_id,omitempty"`
	UserIDs     []int64         `json:"user_ids,omitempty"`
	Title       string          `json:"title"`
	Message     string          `json:"message,omitempty"`
	HTMLMessage string          `json:"html_message,omitempty"`
	Type        string          `json:"type,omitempty"`
	CategoryKey string          `json:"category_key,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

func (r notifyRequest) content() entity.NotificationContent {
	return entity.NotificationContent{
		Title:       r.Title,
		Message:     r.Message,
		HTMLMessage: r.HTMLMessage,
		Type:        r.Type,
		CategoryKey: r.CategoryKey,
		Metadata:    r.Metadata,
	}
}

// ChannelsDTO is the per-channel delivery result of an immediate dispatch.
type ChannelsDTO struct {
	Email   bool `json:"email"`
	Push    bool `json:"push"`
	ChatDM  bool `json:"chat_dm"`
	Webhook bool `json:"webhook"`
}

func channelsDTO(r entity.ChannelResult) ChannelsDTO {
	return ChannelsDTO{
		Email:   r.Email,
		Push:    r.Push,
		ChatDM:  r.ChatDM,
		Webhook: r.Webhook,
	}
}

// OutcomeDTO is the response body for a single notify request.
// Status is "sent", "scheduled" or "skipped"; channels accompany a
// sent response, pending_id and due_at a scheduled one, and a skipped
// response (category disabled by the user) carries the status alone.
type OutcomeDTO struct {
	Status    string       `json:"status"`
	Channels  *ChannelsDTO `json:"channels,omitempty"`
	PendingID int64        `json:"pending_id,omitempty"`
	DueAt     *time.Time   `json:"due_at,omitempty"`
}

func outcomeDTO(o *notify.Outcome) OutcomeDTO {
	dto := OutcomeDTO{Status: string(o.Status)}
	switch o.Status {
	case notify.StatusSent:
		ch := channelsDTO(o.Channels)
		dto.Channels = &ch
	case notify.StatusScheduled:
		dto.PendingID = o.PendingID
		due := o.DueAt
		dto.DueAt = &due
	}
	return dto
}

// BulkUserDTO is one user's slot in a bulk response.
type BulkUserDTO struct {
	UserID    int64  `json:"user_id"`
	Status    string `json:"status"`
	PendingID int64  `json:"pending_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BulkOutcomeDTO is the response body for a bulk notify request.
type BulkOutcomeDTO struct {
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Scheduled  int           `json:"scheduled"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Results    []BulkUserDTO `json:"results"`
}

func bulkOutcomeDTO(b *notify.BulkOutcome) BulkOutcomeDTO {
	dto := BulkOutcomeDTO{
		Total:      b.Total,
		Successful: b.Successful,
		Scheduled:  b.Scheduled,
		Skipped:    b.Skipped,
		Failed:     b.Failed,
		Results:    make([]BulkUserDTO, 0, len(b.PerUser)),
	}
	for _, u := range b.PerUser {
		item := BulkUserDTO{UserID: u.UserID}
		switch {
		case u.Err != nil:
			item.Status = "failed"
			item.Error = userFacingError(u.Err)
		default:
			item.Status = string(u.Outcome.Status)
			if u.Outcome.Status == notify.StatusScheduled {
				item.PendingID = u.Outcome.PendingID
			}
		}
		dto.Results = append(dto.Results, item)
	}
	return dto
}

// PendingDTO is one entry of the pending queue listing.
type PendingDTO struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	Title        string     `json:"title"`
	Message      string     `json:"message,omitempty"`
	Type         string     `json:"type"`
	CategoryKey  string     `json:"category_key,omitempty"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func pendingDTO(p *entity.PendingNotification) PendingDTO {
	return PendingDTO{
		ID:           p.ID,
		UserID:       p.UserID,
		Title:        p.Title,
		Message:      p.Message,
		Type:         p.Type,
		CategoryKey:  p.CategoryKey,
		ScheduledFor: p.ScheduledFor,
		CancelledAt:  p.CancelledAt,
		CreatedAt:    p.CreatedAt,
	}
}

// HistoryDTO is one entry of a user's notification history.
type HistoryDTO struct {
	ID          int64       `json:"id"`
	SiteID      int64       `json:"site_id"`
	Title       string      `json:"title"`
	Message     string      `json:"message,omitempty"`
	Type        string      `json:"type"`
	CategoryKey string      `json:"category_key,omitempty"`
	SentVia     ChannelsDTO `json:"sent_via"`
	IsRead      bool        `json:"is_read"`
	CreatedAt   time.Time   `json:"created_at"`
}

func historyDTO(n *entity.Notification) HistoryDTO {
	return HistoryDTO{
		ID:          n.ID,
		SiteID:      n.SiteID,
		Title:       n.Title,
		Message:     n.Message,
		Type:        n.Type,
		CategoryKey: n.CategoryKey,
		SentVia: ChannelsDTO{
			Email:   n.SentViaEmail,
			Push:    n.SentViaPush,
			ChatDM:  n.SentViaChat,
			Webhook: n.SentViaWebhook,
		},
		IsRead: n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
