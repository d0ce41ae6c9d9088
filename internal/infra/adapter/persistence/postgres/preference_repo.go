package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"nolofication/internal/domain/entity"
	"nolofication/internal/repository"
)

type PreferenceProfileRepo struct{ db Querier }

func NewPreferenceProfileRepo(db Querier) repository.PreferenceProfileRepository {
	return &PreferenceProfileRepo{db: db}
}

func (repo *PreferenceProfileRepo) GetByUser(ctx context.Context, userID int64) (*entity.PreferenceProfile, error) {
	const query = `
SELECT id, user_id, email_enabled, push_enabled, chat_enabled, webhook_enabled,
       chat_destination_id, webhook_url, created_at, updated_at
FROM user_preferences
WHERE user_id = $1
LIMIT 1`
	var profile entity.PreferenceProfile
	var chatDest, webhookURL sql.NullString
	err := repo.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID, &profile.UserID,
		&profile.EmailEnabled, &profile.PushEnabled, &profile.ChatEnabled, &profile.WebhookEnabled,
		&chatDest, &webhookURL, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByUser: %w", err)
	}
	profile.ChatDestinationID = chatDest.String
	profile.WebhookURL = webhookURL.String
	return &profile, nil
}

func (repo *PreferenceProfileRepo) Create(ctx context.Context, profile *entity.PreferenceProfile) error {
	const query = `
INSERT INTO user_preferences (user_id, email_enabled, push_enabled, chat_enabled,
       webhook_enabled, chat_destination_id, webhook_url)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at, updated_at`
	var chatDest, webhookURL any
	if profile.ChatDestinationID != "" {
		chatDest = profile.ChatDestinationID
	}
	if profile.WebhookURL != "" {
		webhookURL = profile.WebhookURL
	}
	err := repo.db.QueryRowContext(ctx, query,
		profile.UserID, profile.EmailEnabled, profile.PushEnabled,
		profile.ChatEnabled, profile.WebhookEnabled, chatDest, webhookURL,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *PreferenceProfileRepo) Update(ctx context.Context, profile *entity.PreferenceProfile) error {
	const query = `
UPDATE user_preferences SET
       email_enabled       = $1,
       push_enabled        = $2,
       chat_enabled        = $3,
       webhook_enabled     = $4,
       chat_destination_id = $5,
       webhook_url         = $6,
       updated_at          = now()
WHERE user_id = $7`
	var chatDest, webhookURL any
	if profile.ChatDestinationID != "" {
		chatDest = profile.ChatDestinationID
	}
	if profile.WebhookURL != "" {
		webhookURL = profile.WebhookURL
	}
	res, err := repo.db.ExecContext(ctx, query,
		profile.EmailEnabled, profile.PushEnabled, profile.ChatEnabled,
		profile.WebhookEnabled, chatDest, webhookURL, profile.UserID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

type SitePreferenceRepo struct{ db Querier }

func NewSitePreferenceRepo(db Querier) repository.SitePreferenceRepository {
	return &SitePreferenceRepo{db: db}
}

func scanSitePreference(row interface{ Scan(...any) error }) (*entity.SitePreference, error) {
	var pref entity.SitePreference
	var email, push, chat, webhook sql.NullBool
	var sched scheduleRow
	if err := row.Scan(
		&pref.ID, &pref.UserID, &pref.SiteID,
		&email, &push, &chat, &webhook,
		&sched.Frequency, &sched.TimeOfDay, &sched.Timezone, &sched.WeeklyDay,
		&pref.CreatedAt, &pref.UpdatedAt,
	); err != nil {
		return nil, err
	}
	pref.Email = overrideFromNullBool(email)
	pref.Push = overrideFromNullBool(push)
	pref.ChatDM = overrideFromNullBool(chat)
	pref.Webhook = overrideFromNullBool(webhook)
	schedule, err := sched.toEntity()
	if err != nil {
		return nil, err
	}
	pref.Schedule = schedule
	return &pref, nil
}

func overrideFromNullBool(b sql.NullBool) entity.Override {
	if !b.Valid {
		return entity.Inherit
	}
	if b.Bool {
		return entity.Enabled
	}
	return entity.Disabled
}

func overrideArg(o entity.Override) any {
	if p := o.Ptr(); p != nil {
		return *p
	}
	return nil
}

func (repo *SitePreferenceRepo) GetByUserAndSite(ctx context.Context, userID, siteID int64) (*entity.SitePreference, error) {
	const query = `
SELECT id, user_id, site_id,
       email_override, push_override, chat_override, webhook_override,
       frequency, time_of_day, timezone, weekly_day,
       created_at, updated_at
FROM site_preferences
WHERE user_id = $1 AND site_id = $2
LIMIT 1`
	pref, err := scanSitePreference(repo.db.QueryRowContext(ctx, query, userID, siteID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByUserAndSite: %w", err)
	}
	return pref, nil
}

func (repo *SitePreferenceRepo) ListByUser(ctx context.Context, userID int64) ([]*entity.SitePreference, error) {
	const query = `
SELECT id, user_id, site_id,
       email_override, push_override, chat_override, webhook_override,
       frequency, time_of_day, timezone, weekly_day,
       created_at, updated_at
FROM site_preferences
WHERE user_id = $1
ORDER BY site_id ASC`
	rows, err := repo.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer func() { _ = rows.Close() }()

	prefs := make([]*entity.SitePreference, 0, 20)
	for rows.Next() {
		pref, err := scanSitePreference(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByUser: %w", err)
		}
		prefs = append(prefs, pref)
	}
	return prefs, rows.Err()
}

func (repo *SitePreferenceRepo) Upsert(ctx context.Context, pref *entity.SitePreference) error {
	const query = `
INSERT INTO site_preferences (user_id, site_id,
       email_override, push_override, chat_override, webhook_override,
       frequency, time_of_day, timezone, weekly_day)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (user_id, site_id) DO UPDATE SET
       email_override   = EXCLUDED.email_override,
       push_override    = EXCLUDED.push_override,
       chat_override    = EXCLUDED.chat_override,
       webhook_override = EXCLUDED.webhook_override,
       frequency        = EXCLUDED.frequency,
       time_of_day      = EXCLUDED.time_of_day,
       timezone         = EXCLUDED.timezone,
       weekly_day       = EXCLUDED.weekly_day,
       updated_at       = now()
RETURNING id, created_at, updated_at`
	freq, tod, tz, day := scheduleArgs(pref.Schedule)
	err := repo.db.QueryRowContext(ctx, query,
		pref.UserID, pref.SiteID,
		overrideArg(pref.Email), overrideArg(pref.Push),
		overrideArg(pref.ChatDM), overrideArg(pref.Webhook),
		freq, tod, tz, day,
	).Scan(&pref.ID, &pref.CreatedAt, &pref.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

func (repo *SitePreferenceRepo) Delete(ctx context.Context, userID, siteID int64) error {
	const query = `DELETE FROM site_preferences WHERE user_id = $1 AND site_id = $2`
	res, err := repo.db.ExecContext(ctx, query, userID, siteID)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}

type UserCategoryPreferenceRepo struct{ db Querier }

func NewUserCategoryPreferenceRepo(db Querier) repository.UserCategoryPreferenceRepository {
	return &UserCategoryPreferenceRepo{db: db}
}

func scanCategoryPreference(row interface{ Scan(...any) error }) (*entity.UserCategoryPreference, error) {
	var pref entity.UserCategoryPreference
	var sched scheduleRow
	if err := row.Scan(
		&pref.ID, &pref.UserID, &pref.SiteID, &pref.CategoryID, &pref.Enabled,
		&sched.Frequency, &sched.TimeOfDay, &sched.Timezone, &sched.WeeklyDay,
		&pref.CreatedAt, &pref.UpdatedAt,
	); err != nil {
		return nil, err
	}
	schedule, err := sched.toEntity()
	if err != nil {
		return nil, err
	}
	pref.Schedule = schedule
	return &pref, nil
}

func (repo *UserCategoryPreferenceRepo) GetByUserAndCategory(ctx context.Context, userID, categoryID int64) (*entity.UserCategoryPreference, error) {
	const query = `
SELECT id, user_id, site_id, category_id, enabled,
       frequency, time_of_day, timezone, weekly_day,
       created_at, updated_at
FROM user_category_preferences
WHERE user_id = $1 AND category_id = $2
LIMIT 1`
	pref, err := scanCategoryPreference(repo.db.QueryRowContext(ctx, query, userID, categoryID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByUserAndCategory: %w", err)
	}
	return pref, nil
}

func (repo *UserCategoryPreferenceRepo) ListByUserAndSite(ctx context.Context, userID, siteID int64) ([]*entity.UserCategoryPreference, error) {
	const query = `
SELECT id, user_id, site_id, category_id, enabled,
       frequency, time_of_day, timezone, weekly_day,
       created_at, updated_at
FROM user_category_preferences
WHERE user_id = $1 AND site_id = $2
ORDER BY category_id ASC`
	rows, err := repo.db.QueryContext(ctx, query, userID, siteID)
	if err != nil {
		return nil, fmt.Errorf("ListByUserAndSite: %w", err)
	}
	defer func() { _ = rows.Close() }()

	prefs := make([]*entity.UserCategoryPreference, 0, 20)
	for rows.Next() {
		pref, err := scanCategoryPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByUserAndSite: %w", err)
		}
		prefs = append(prefs, pref)
	}
	return prefs, rows.Err()
}

func (repo *UserCategoryPreferenceRepo) Upsert(ctx context.Context, pref *entity.UserCategoryPreference) error {
	const query = `
INSERT INTO user_category_preferences (user_id, site_id, category_id, enabled,
       frequency, time_of_day, timezone, weekly_day)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (user_id, category_id) DO UPDATE SET
       enabled     = EXCLUDED.enabled,
       frequency   = EXCLUDED.frequency,
       time_of_day = EXCLUDED.time_of_day,
       timezone    = EXCLUDED.timezone,
       weekly_day  = EXCLUDED.weekly_day,
       updated_at  = now()
RETURNING id, created_at, updated_at`
	freq, tod, tz, day := scheduleArgs(pref.Schedule)
	err := repo.db.QueryRowContext(ctx, query,
		pref.UserID, pref.SiteID, pref.CategoryID, pref.Enabled,
		freq, tod, tz, day,
	).Scan(&pref.ID, &pref.CreatedAt, &pref.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

func (repo *UserCategoryPreferenceRepo) Delete(ctx context.Context, userID, categoryID int64) error {
	const query = `DELETE FROM user_category_preferences WHERE user_id = $1 AND category_id = $2`
	res, err := repo.db.ExecContext(ctx, query, userID, categoryID)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}
