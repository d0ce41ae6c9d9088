package repository

import (
	"context"
	"time"

	"nolofication/internal/domain/entity"
)

type UserRepository interface {
	Get(ctx context.Context, id int64) (*entity.User, error)
	// GetByExternalID resolves the identity-provider subject to a local user.
	// Returns (nil, nil) if no user has registered with that subject.
	GetByExternalID(ctx context.Context, externalID string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id int64) error
}

type PushSubscriptionRepository interface {
	// ListByUser returns every registered push endpoint for a user. A user
	// may hold one subscription per browser/device.
	ListByUser(ctx context.Context, userID int64) ([]*entity.PushSubscription, error)
	Create(ctx context.Context, sub *entity.PushSubscription) error
	// TouchUsedAt records the last successful delivery over a subscription.
	TouchUsedAt(ctx context.Context, id int64, t time.Time) error
}
