package db

import (
	"database/sql"
	_ "embed"
)

//go:embed seeds/sites.sql
var seedSitesSQL string

func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id          SERIAL PRIMARY KEY,
    external_id TEXT NOT NULL UNIQUE,
    username    TEXT NOT NULL,
    email       TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS sites (
    id          SERIAL PRIMARY KEY,
    key         TEXT NOT NULL UNIQUE,
    name        TEXT NOT NULL,
    description TEXT,
    api_key     TEXT NOT NULL UNIQUE,
    active      BOOLEAN NOT NULL DEFAULT TRUE,
    approved    BOOLEAN NOT NULL DEFAULT FALSE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS site_categories (
    id                SERIAL PRIMARY KEY,
    site_id           INTEGER NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
    key               TEXT NOT NULL,
    name              TEXT NOT NULL,
    description       TEXT,
    default_frequency VARCHAR(10),
    default_time      VARCHAR(5),
    default_timezone  TEXT,
    default_weekly_day SMALLINT,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE(site_id, key)
)`); err != nil {
		return err
	}

	// Global channel flags and addressing. One row per user, created
	// lazily on first preference access.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS user_preferences (
    id                  SERIAL PRIMARY KEY,
    user_id             INTEGER NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
    email_enabled       BOOLEAN NOT NULL DEFAULT TRUE,
    push_enabled        BOOLEAN NOT NULL DEFAULT FALSE,
    chat_enabled        BOOLEAN NOT NULL DEFAULT FALSE,
    webhook_enabled     BOOLEAN NOT NULL DEFAULT FALSE,
    chat_destination_id TEXT,
    webhook_url         TEXT,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	// Per-site channel overrides are nullable on purpose: NULL means
	// "inherit the global flag", TRUE/FALSE force the channel.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS site_preferences (
    id               SERIAL PRIMARY KEY,
    user_id          INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    site_id          INTEGER NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
    email_override   BOOLEAN,
    push_override    BOOLEAN,
    chat_override    BOOLEAN,
    webhook_override BOOLEAN,
    frequency        VARCHAR(10),
    time_of_day      VARCHAR(5),
    timezone         TEXT,
    weekly_day       SMALLINT,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE(user_id, site_id)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS user_category_preferences (
    id          SERIAL PRIMARY KEY,
    user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    site_id     INTEGER NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
    category_id INTEGER NOT NULL REFERENCES site_categories(id) ON DELETE CASCADE,
    enabled     BOOLEAN NOT NULL DEFAULT TRUE,
    frequency   VARCHAR(10),
    time_of_day VARCHAR(5),
    timezone    TEXT,
    weekly_day  SMALLINT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE(user_id, category_id)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS push_subscriptions (
    id           SERIAL PRIMARY KEY,
    user_id      INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    endpoint     TEXT NOT NULL,
    p256dh       TEXT NOT NULL,
    auth         TEXT NOT NULL,
    user_agent   TEXT,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    last_used_at TIMESTAMPTZ,
    UNIQUE(user_id, endpoint)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS notifications (
    id               SERIAL PRIMARY KEY,
    user_id          INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    site_id          INTEGER NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
    title            TEXT NOT NULL,
    message          TEXT NOT NULL,
    type             VARCHAR(10) NOT NULL DEFAULT 'info',
    category_key     TEXT,
    sent_via_email   BOOLEAN NOT NULL DEFAULT FALSE,
    sent_via_push    BOOLEAN NOT NULL DEFAULT FALSE,
    sent_via_chat    BOOLEAN NOT NULL DEFAULT FALSE,
    sent_via_webhook BOOLEAN NOT NULL DEFAULT FALSE,
    is_read          BOOLEAN NOT NULL DEFAULT FALSE,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS pending_notifications (
    id            SERIAL PRIMARY KEY,
    user_id       INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    site_id       INTEGER NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
    title         TEXT NOT NULL,
    message       TEXT NOT NULL,
    html_message  TEXT,
    type          VARCHAR(10) NOT NULL DEFAULT 'info',
    category_key  TEXT,
    metadata      JSONB,
    scheduled_for TIMESTAMPTZ NOT NULL,
    cancelled_at  TIMESTAMPTZ,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	indexes := []string{
		// History listing: ORDER BY created_at DESC per user.
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at DESC)`,
		// Unread badge counts.
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id) WHERE is_read = FALSE`,
		// Scheduler due scan: non-cancelled rows ordered by due time.
		`CREATE INDEX IF NOT EXISTS idx_pending_due ON pending_notifications(scheduled_for) WHERE cancelled_at IS NULL`,
		// Cancelled-row purge scan.
		`CREATE INDEX IF NOT EXISTS idx_pending_cancelled ON pending_notifications(cancelled_at) WHERE cancelled_at IS NOT NULL`,
		// Per-user queue listing.
		`CREATE INDEX IF NOT EXISTS idx_pending_user ON pending_notifications(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_site_prefs_user ON site_preferences(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_category_prefs_user_site ON user_category_preferences(user_id, site_id)`,
		`CREATE INDEX IF NOT EXISTS idx_push_subscriptions_user ON push_subscriptions(user_id)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// Frequency enum constraints. Errors are ignored when the constraint
	// already exists.
	_, _ = db.Exec(`
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint
        WHERE conname = 'chk_category_default_frequency'
    ) THEN
        ALTER TABLE site_categories ADD CONSTRAINT chk_category_default_frequency
        CHECK (default_frequency IS NULL OR default_frequency IN ('instant', 'daily', 'weekly'));
    END IF;
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint
        WHERE conname = 'chk_pending_type'
    ) THEN
        ALTER TABLE pending_notifications ADD CONSTRAINT chk_pending_type
        CHECK (type IN ('info', 'success', 'warning', 'error'));
    END IF;
END $$;
`)

	// シードデータの投入(重複は自動的にスキップ)
	if _, err := db.Exec(seedSitesSQL); err != nil {
		return err
	}

	return nil
}

// MigrateDown rolls back the database schema.
// Tables are dropped in reverse dependency order.
// Use with caution: this will delete all data in the affected tables.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS pending_notifications CASCADE`,
		`DROP TABLE IF EXISTS notifications CASCADE`,
		`DROP TABLE IF EXISTS push_subscriptions CASCADE`,
		`DROP TABLE IF EXISTS user_category_preferences CASCADE`,
		`DROP TABLE IF EXISTS site_preferences CASCADE`,
		`DROP TABLE IF EXISTS user_preferences CASCADE`,
		`DROP TABLE IF EXISTS site_categories CASCADE`,
		`DROP TABLE IF EXISTS sites CASCADE`,
		`DROP TABLE IF EXISTS users CASCADE`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
