package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"nolofication/internal/domain/entity"
	"nolofication/internal/repository"
)

type SiteRepo struct{ db Querier }

func NewSiteRepo(db Querier) repository.SiteRepository {
	return &SiteRepo{db: db}
}

func scanSite(row interface{ Scan(...any) error }) (*entity.Site, error) {
	var site entity.Site
	var description sql.NullString
	if err := row.Scan(
		&site.ID, &site.Key, &site.Name, &description, &site.APIKey,
		&site.Active, &site.Approved, &site.CreatedAt, &site.UpdatedAt,
	); err != nil {
		return nil, err
	}
	site.Description = description.String
	return &site, nil
}

func (repo *SiteRepo) Get(ctx context.Context, id int64) (*entity.Site, error) {
	const query = `
SELECT id, key, name, description, api_key, active, approved, created_at, updated_at
FROM sites
WHERE id = $1
LIMIT 1`
	site, err := scanSite(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return site, nil
}

func (repo *SiteRepo) GetByKey(ctx context.Context, key string) (*entity.Site, error) {
	const query = `
SELECT id, key, name, description, api_key, active, approved, created_at, updated_at
FROM sites
WHERE key = $1
LIMIT 1`
	site, err := scanSite(repo.db.QueryRowContext(ctx, query, key))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByKey: %w", err)
	}
	return site, nil
}

func (repo *SiteRepo) GetByAPIKey(ctx context.Context, apiKey string) (*entity.Site, error) {
	const query = `
SELECT id, key, name, description, api_key, active, approved, created_at, updated_at
FROM sites
WHERE api_key = $1
  AND active = TRUE
  AND approved = TRUE
LIMIT 1`
	site, err := scanSite(repo.db.QueryRowContext(ctx, query, apiKey))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByAPIKey: %w", err)
	}
	return site, nil
}

func (repo *SiteRepo) List(ctx context.Context) ([]*entity.Site, error) {
	const query = `
SELECT id, key, name, description, api_key, active, approved, created_at, updated_at
FROM sites
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sites := make([]*entity.Site, 0, 20)
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

func (repo *SiteRepo) Create(ctx context.Context, site *entity.Site) error {
	const query = `
INSERT INTO sites (key, name, description, api_key, active, approved)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at, updated_at`
	var description any
	if site.Description != "" {
		description = site.Description
	}
	err := repo.db.QueryRowContext(ctx, query,
		site.Key, site.Name, description, site.APIKey, site.Active, site.Approved,
	).Scan(&site.ID, &site.CreatedAt, &site.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *SiteRepo) Update(ctx context.Context, site *entity.Site) error {
	const query = `
UPDATE sites SET
       name        = $1,
       description = $2,
       api_key     = $3,
       active      = $4,
       approved    = $5,
       updated_at  = now()
WHERE id = $6`
	var description any
	if site.Description != "" {
		description = site.Description
	}
	res, err := repo.db.ExecContext(ctx, query,
		site.Name, description, site.APIKey, site.Active, site.Approved, site.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

func (repo *SiteRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM sites WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}
