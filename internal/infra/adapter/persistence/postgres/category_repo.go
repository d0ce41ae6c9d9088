package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"nolofication/internal/domain/entity"
	"nolofication/internal/repository"
)

type CategoryRepo struct{ db Querier }

func NewCategoryRepo(db Querier) repository.CategoryRepository {
	return &CategoryRepo{db: db}
}

func scanCategory(row interface{ Scan(...any) error }) (*entity.Category, error) {
	var cat entity.Category
	var description sql.NullString
	var sched scheduleRow
	if err := row.Scan(
		&cat.ID, &cat.SiteID, &cat.Key, &cat.Name, &description,
		&sched.Frequency, &sched.TimeOfDay, &sched.Timezone, &sched.WeeklyDay,
		&cat.CreatedAt, &cat.UpdatedAt,
	); err != nil {
		return nil, err
	}
	cat.Description = description.String
	schedule, err := sched.toEntity()
	if err != nil {
		return nil, err
	}
	cat.DefaultSchedule = schedule
	return &cat, nil
}

func (repo *CategoryRepo) Get(ctx context.Context, id int64) (*entity.Category, error) {
	const query = `
SELECT id, site_id, key, name, description,
       default_frequency, default_time, default_timezone, default_weekly_day,
       created_at, updated_at
FROM site_categories
WHERE id = $1
LIMIT 1`
	cat, err := scanCategory(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return cat, nil
}

func (repo *CategoryRepo) GetByKey(ctx context.Context, siteID int64, key string) (*entity.Category, error) {
	const query = `
SELECT id, site_id, key, name, description,
       default_frequency, default_time, default_timezone, default_weekly_day,
       created_at, updated_at
FROM site_categories
WHERE site_id = $1 AND key = $2
LIMIT 1`
	cat, err := scanCategory(repo.db.QueryRowContext(ctx, query, siteID, key))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByKey: %w", err)
	}
	return cat, nil
}

func (repo *CategoryRepo) ListBySite(ctx context.Context, siteID int64) ([]*entity.Category, error) {
	const query = `
SELECT id, site_id, key, name, description,
       default_frequency, default_time, default_timezone, default_weekly_day,
       created_at, updated_at
FROM site_categories
WHERE site_id = $1
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("ListBySite: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cats := make([]*entity.Category, 0, 20)
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("ListBySite: %w", err)
		}
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

func (repo *CategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	const query = `
INSERT INTO site_categories (site_id, key, name, description,
       default_frequency, default_time, default_timezone, default_weekly_day)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at, updated_at`
	var description any
	if category.Description != "" {
		description = category.Description
	}
	freq, tod, tz, day := scheduleArgs(category.DefaultSchedule)
	err := repo.db.QueryRowContext(ctx, query,
		category.SiteID, category.Key, category.Name, description,
		freq, tod, tz, day,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *CategoryRepo) Update(ctx context.Context, category *entity.Category) error {
	const query = `
UPDATE site_categories SET
       name               = $1,
       description        = $2,
       default_frequency  = $3,
       default_time       = $4,
       default_timezone   = $5,
       default_weekly_day = $6,
       updated_at         = now()
WHERE id = $7`
	var description any
	if category.Description != "" {
		description = category.Description
	}
	freq, tod, tz, day := scheduleArgs(category.DefaultSchedule)
	res, err := repo.db.ExecContext(ctx, query,
		category.Name, description, freq, tod, tz, day, category.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

func (repo *CategoryRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM site_categories WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}
