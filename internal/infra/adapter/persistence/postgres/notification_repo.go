package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"nolofication/internal/domain/entity"
	"nolofication/internal/repository"
)

type NotificationRepo struct{ db Querier }

func NewNotificationRepo(db Querier) repository.NotificationRepository {
	return &NotificationRepo{db: db}
}

func scanNotification(row interface{ Scan(...any) error }) (*entity.Notification, error) {
	var n entity.Notification
	var categoryKey sql.NullString
	if err := row.Scan(
		&n.ID, &n.UserID, &n.SiteID, &n.Title, &n.Message, &n.Type, &categoryKey,
		&n.SentViaEmail, &n.SentViaPush, &n.SentViaChat, &n.SentViaWebhook,
		&n.IsRead, &n.CreatedAt,
	); err != nil {
		return nil, err
	}
	n.CategoryKey = categoryKey.String
	return &n, nil
}

func (repo *NotificationRepo) ListByUserPaginated(ctx context.Context, userID int64, offset, limit int) ([]*entity.Notification, error) {
	const query = `
SELECT id, user_id, site_id, title, message, type, category_key,
       sent_via_email, sent_via_push, sent_via_chat, sent_via_webhook,
       is_read, created_at
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := repo.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListByUserPaginated: %w", err)
	}
	defer func() { _ = rows.Close() }()

	notifications := make([]*entity.Notification, 0, limit)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByUserPaginated: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (repo *NotificationRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE user_id = $1`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountByUser: %w", err)
	}
	return count, nil
}

func (repo *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	const query = `
INSERT INTO notifications (user_id, site_id, title, message, type, category_key,
       sent_via_email, sent_via_push, sent_via_chat, sent_via_webhook)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, created_at`
	var categoryKey any
	if n.CategoryKey != "" {
		categoryKey = n.CategoryKey
	}
	err := repo.db.QueryRowContext(ctx, query,
		n.UserID, n.SiteID, n.Title, n.Message, n.Type, categoryKey,
		n.SentViaEmail, n.SentViaPush, n.SentViaChat, n.SentViaWebhook,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *NotificationRepo) MarkRead(ctx context.Context, userID, notificationID int64) error {
	const query = `
UPDATE notifications SET is_read = TRUE
WHERE id = $1 AND user_id = $2`
	res, err := repo.db.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		return fmt.Errorf("MarkRead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("MarkRead: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *NotificationRepo) MarkAllRead(ctx context.Context, userID int64) error {
	const query = `
UPDATE notifications SET is_read = TRUE
WHERE user_id = $1 AND is_read = FALSE`
	_, err := repo.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("MarkAllRead: %w", err)
	}
	return nil
}
