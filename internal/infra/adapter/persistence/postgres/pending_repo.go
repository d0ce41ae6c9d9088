package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nolofication/internal/domain/entity"
	"nolofication/internal/repository"
)

type PendingNotificationRepo struct{ db Querier }

func NewPendingNotificationRepo(db Querier) repository.PendingNotificationRepository {
	return &PendingNotificationRepo{db: db}
}

func scanPending(row interface{ Scan(...any) error }) (*entity.PendingNotification, error) {
	var p entity.PendingNotification
	var htmlMessage, categoryKey sql.NullString
	var metadata []byte
	if err := row.Scan(
		&p.ID, &p.UserID, &p.SiteID, &p.Title, &p.Message, &htmlMessage,
		&p.Type, &categoryKey, &metadata,
		&p.ScheduledFor, &p.CancelledAt, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	p.HTMLMessage = htmlMessage.String
	p.CategoryKey = categoryKey.String
	if len(metadata) > 0 {
		p.Metadata = metadata
	}
	return &p, nil
}

const pendingColumns = `id, user_id, site_id, title, message, html_message,
       type, category_key, metadata, scheduled_for, cancelled_at, created_at`

func (repo *PendingNotificationRepo) Get(ctx context.Context, id int64) (*entity.PendingNotification, error) {
	const query = `
SELECT ` + pendingColumns + `
FROM pending_notifications
WHERE id = $1
LIMIT 1`
	p, err := scanPending(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return p, nil
}

func (repo *PendingNotificationRepo) ListByUser(ctx context.Context, userID int64, includeCancelled bool) ([]*entity.PendingNotification, error) {
	query := `
SELECT ` + pendingColumns + `
FROM pending_notifications
WHERE user_id = $1`
	if !includeCancelled {
		query += `
  AND cancelled_at IS NULL`
	}
	query += `
ORDER BY created_at DESC`

	rows, err := repo.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer func() { _ = rows.Close() }()

	pendings := make([]*entity.PendingNotification, 0, 20)
	for rows.Next() {
		p, err := scanPending(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByUser: %w", err)
		}
		pendings = append(pendings, p)
	}
	return pendings, rows.Err()
}

func (repo *PendingNotificationRepo) ListDue(ctx context.Context, now time.Time) ([]*entity.PendingNotification, error) {
	const query = `
SELECT ` + pendingColumns + `
FROM pending_notifications
WHERE scheduled_for <= $1
  AND cancelled_at IS NULL
ORDER BY scheduled_for ASC`
	rows, err := repo.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("ListDue: %w", err)
	}
	defer func() { _ = rows.Close() }()

	due := make([]*entity.PendingNotification, 0, 50)
	for rows.Next() {
		p, err := scanPending(rows)
		if err != nil {
			return nil, fmt.Errorf("ListDue: %w", err)
		}
		due = append(due, p)
	}
	return due, rows.Err()
}

func (repo *PendingNotificationRepo) Create(ctx context.Context, p *entity.PendingNotification) error {
	const query = `
INSERT INTO pending_notifications (user_id, site_id, title, message, html_message,
       type, category_key, metadata, scheduled_for)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, created_at`
	var htmlMessage, categoryKey, metadata any
	if p.HTMLMessage != "" {
		htmlMessage = p.HTMLMessage
	}
	if p.CategoryKey != "" {
		categoryKey = p.CategoryKey
	}
	if len(p.Metadata) > 0 {
		metadata = []byte(p.Metadata)
	}
	err := repo.db.QueryRowContext(ctx, query,
		p.UserID, p.SiteID, p.Title, p.Message, htmlMessage,
		p.Type, categoryKey, metadata, p.ScheduledFor,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *PendingNotificationRepo) Cancel(ctx context.Context, userID, pendingID int64, at time.Time) (int64, error) {
	// The cancelled_at guard makes a second cancel a no-op at the SQL
	// level; callers see rows=0 and decide how to report it.
	const query = `
UPDATE pending_notifications SET cancelled_at = $1
WHERE id = $2 AND user_id = $3 AND cancelled_at IS NULL`
	res, err := repo.db.ExecContext(ctx, query, at, pendingID, userID)
	if err != nil {
		return 0, fmt.Errorf("Cancel: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("Cancel: %w", err)
	}
	return n, nil
}

func (repo *PendingNotificationRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM pending_notifications WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}

func (repo *PendingNotificationRepo) CountActive(ctx context.Context) (int64, error) {
	const query = `
SELECT COUNT(*)
FROM pending_notifications
WHERE cancelled_at IS NULL`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountActive: %w", err)
	}
	return count, nil
}

func (repo *PendingNotificationRepo) PurgeCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `
DELETE FROM pending_notifications
WHERE cancelled_at IS NOT NULL
  AND cancelled_at < $1`
	res, err := repo.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("PurgeCancelledBefore: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("PurgeCancelledBefore: %w", err)
	}
	return n, nil
}
