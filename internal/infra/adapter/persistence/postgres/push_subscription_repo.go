package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nolofication/internal/domain/entity"
	"nolofication/internal/repository"
)

type PushSubscriptionRepo struct{ db Querier }

func NewPushSubscriptionRepo(db Querier) repository.PushSubscriptionRepository {
	return &PushSubscriptionRepo{db: db}
}

func (repo *PushSubscriptionRepo) ListByUser(ctx context.Context, userID int64) ([]*entity.PushSubscription, error) {
	const query = `
SELECT id, user_id, endpoint, p256dh, auth, user_agent, created_at, last_used_at
FROM push_subscriptions
WHERE user_id = $1
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer func() { _ = rows.Close() }()

	subs := make([]*entity.PushSubscription, 0, 4)
	for rows.Next() {
		var sub entity.PushSubscription
		var userAgent sql.NullString
		if err := rows.Scan(
			&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dh, &sub.Auth,
			&userAgent, &sub.CreatedAt, &sub.LastUsedAt,
		); err != nil {
			return nil, fmt.Errorf("ListByUser: %w", err)
		}
		sub.UserAgent = userAgent.String
		subs = append(subs, &sub)
	}
	return subs, rows.Err()
}

func (repo *PushSubscriptionRepo) Create(ctx context.Context, sub *entity.PushSubscription) error {
	const query = `
INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, user_agent)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, endpoint) DO UPDATE SET
       p256dh = EXCLUDED.p256dh,
       auth   = EXCLUDED.auth
RETURNING id, created_at`
	var userAgent any
	if sub.UserAgent != "" {
		userAgent = sub.UserAgent
	}
	err := repo.db.QueryRowContext(ctx, query,
		sub.UserID, sub.Endpoint, sub.P256dh, sub.Auth, userAgent,
	).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *PushSubscriptionRepo) TouchUsedAt(ctx context.Context, id int64, t time.Time) error {
	const query = `UPDATE push_subscriptions SET last_used_at = $1 WHERE id = $2`
	_, err := repo.db.ExecContext(ctx, query, t, id)
	return err
}
