package repository

import (
	"context"

	"nolofication/internal/domain/entity"
)

type NotificationRepository interface {
	// ListByUserPaginated retrieves a user's notification history ordered
	// by created_at DESC. Uses LIMIT and OFFSET for pagination.
	ListByUserPaginated(ctx context.Context, userID int64, offset, limit int) ([]*entity.Notification, error)
	// CountByUser returns the total history size for pagination metadata.
	CountByUser(ctx context.Context, userID int64) (int64, error)
	Create(ctx context.Context, n *entity.Notification) error
	// MarkRead flags a single notification as read. Returns
	// entity.ErrNotFound if the notification does not belong to the user.
	MarkRead(ctx context.Context, userID, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
}
