package repository

import (
	"context"

	"nolofication/internal/domain/entity"
)

type PreferenceProfileRepository interface {
	// GetByUser returns the user's global preference profile, or (nil, nil)
	// if none has been created yet.
	GetByUser(ctx context.Context, userID int64) (*entity.PreferenceProfile, error)
	Create(ctx context.Context, profile *entity.PreferenceProfile) error
	Update(ctx context.Context, profile *entity.PreferenceProfile) error
}

type SitePreferenceRepository interface {
	// GetByUserAndSite returns the user's per-site override row, or
	// (nil, nil) if the user has never configured this site.
	GetByUserAndSite(ctx context.Context, userID, siteID int64) (*entity.SitePreference, error)
	ListByUser(ctx context.Context, userID int64) ([]*entity.SitePreference, error)
	// Upsert inserts or replaces the single (user, site) row.
	Upsert(ctx context.Context, pref *entity.SitePreference) error
	Delete(ctx context.Context, userID, siteID int64) error
}

type UserCategoryPreferenceRepository interface {
	// GetByUserAndCategory returns the user's per-category row, or
	// (nil, nil) if the user has never configured this category.
	GetByUserAndCategory(ctx context.Context, userID, categoryID int64) (*entity.UserCategoryPreference, error)
	ListByUserAndSite(ctx context.Context, userID, siteID int64) ([]*entity.UserCategoryPreference, error)
	// Upsert inserts or replaces the single (user, category) row.
	Upsert(ctx context.Context, pref *entity.UserCategoryPreference) error
	Delete(ctx context.Context, userID, categoryID int64) error
}
