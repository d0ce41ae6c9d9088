package repository

import (
	"context"
	"time"

	"nolofication/internal/domain/entity"
)

type PendingNotificationRepository interface {
	Get(ctx context.Context, id int64) (*entity.PendingNotification, error)
	// ListByUser returns a user's queue entries, most recent first. When
	// includeCancelled is false, soft-cancelled rows are filtered out.
	ListByUser(ctx context.Context, userID int64, includeCancelled bool) ([]*entity.PendingNotification, error)
	// ListDue returns every non-cancelled entry with scheduled_for <= now,
	// oldest first, so the scheduler drains in arrival order.
	ListDue(ctx context.Context, now time.Time) ([]*entity.PendingNotification, error)
	Create(ctx context.Context, p *entity.PendingNotification) error
	// Cancel soft-cancels an entry by stamping cancelled_at. Returns the
	// number of rows affected; zero means the entry was missing or already
	// cancelled.
	Cancel(ctx context.Context, userID, pendingID int64, at time.Time) (int64, error)
	// Delete removes an entry after successful dispatch.
	Delete(ctx context.Context, id int64) error
	// PurgeCancelledBefore hard-deletes cancelled rows older than the
	// cutoff and returns how many were removed.
	PurgeCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// CountActive returns the number of non-cancelled entries; exported as
	// the queue depth gauge.
	CountActive(ctx context.Context) (int64, error)
}
