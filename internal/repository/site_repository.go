package repository

import (
	"context"

	"nolofication/internal/domain/entity"
)

type SiteRepository interface {
	Get(ctx context.Context, id int64) (*entity.Site, error)
	// GetByKey resolves a site by its URL-safe key. Returns (nil, nil) if
	// no site with that key exists.
	GetByKey(ctx context.Context, key string) (*entity.Site, error)
	// GetByAPIKey resolves a site by its API key for request
	// authentication. Only active, approved sites are returned.
	GetByAPIKey(ctx context.Context, apiKey string) (*entity.Site, error)
	List(ctx context.Context) ([]*entity.Site, error)
	Create(ctx context.Context, site *entity.Site) error
	Update(ctx context.Context, site *entity.Site) error
	Delete(ctx context.Context, id int64) error
}

type CategoryRepository interface {
	Get(ctx context.Context, id int64) (*entity.Category, error)
	// GetByKey resolves a category within a site by its key. Returns
	// (nil, nil) if the site has no category with that key.
	GetByKey(ctx context.Context, siteID int64, key string) (*entity.Category, error)
	ListBySite(ctx context.Context, siteID int64) ([]*entity.Category, error)
	Create(ctx context.Context, category *entity.Category) error
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id int64) error
}
