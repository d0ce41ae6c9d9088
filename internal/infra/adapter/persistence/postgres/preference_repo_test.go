package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"nolofication/internal/domain/entity"
	"nolofication/internal/infra/adapter/persistence/postgres"
)

/* ──────────────────────────────── 1. PreferenceProfile ──────────────────────────────── */

func TestPreferenceProfileRepo_GetByUser(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now().UTC()
	want := &entity.PreferenceProfile{
		ID: 3, UserID: 1,
		EmailEnabled: true, PushEnabled: true,
		ChatDestinationID: "123456789",
		CreatedAt:         now, UpdatedAt: now,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "email_enabled", "push_enabled", "chat_enabled", "webhook_enabled",
			"chat_destination_id", "webhook_url", "created_at", "updated_at",
		}).AddRow(
			want.ID, want.UserID, want.EmailEnabled, want.PushEnabled,
			want.ChatEnabled, want.WebhookEnabled,
			want.ChatDestinationID, nil, want.CreatedAt, want.UpdatedAt,
		))

	repo := postgres.NewPreferenceProfileRepo(db)
	got, err := repo.GetByUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByUser err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPreferenceProfileRepo_GetByUser_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := postgres.NewPreferenceProfileRepo(db)
	got, err := repo.GetByUser(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetByUser err=%v", err)
	}
	if got != nil {
		t.Fatalf("want nil for missing profile, got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 2. SitePreference ──────────────────────────────── */

// site_preferences の NULL override 列は Inherit にマップされる
func TestSitePreferenceRepo_GetByUserAndSite_NullOverrides(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id`)).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "site_id",
			"email_override", "push_override", "chat_override", "webhook_override",
			"frequency", "time_of_day", "timezone", "weekly_day",
			"created_at", "updated_at",
		}).AddRow(
			int64(5), int64(1), int64(2),
			nil, true, false, nil,
			"daily", "09:00", "Asia/Tokyo", nil,
			now, now,
		))

	repo := postgres.NewSitePreferenceRepo(db)
	got, err := repo.GetByUserAndSite(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("GetByUserAndSite err=%v", err)
	}

	nine := entity.TimeOfDay{Hour: 9, Minute: 0}
	want := &entity.SitePreference{
		ID: 5, UserID: 1, SiteID: 2,
		Email: entity.Inherit, Push: entity.Enabled,
		ChatDM: entity.Disabled, Webhook: entity.Inherit,
		Schedule: entity.Schedule{
			Frequency: entity.FrequencyDaily,
			TimeOfDay: &nine,
			Timezone:  "Asia/Tokyo",
		},
		CreatedAt: now, UpdatedAt: now,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSitePreferenceRepo_Upsert(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO site_preferences`)).
		WithArgs(int64(1), int64(2),
			true, nil, nil, false,
			nil, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(5), now, now))

	repo := postgres.NewSitePreferenceRepo(db)
	pref := &entity.SitePreference{
		UserID: 1, SiteID: 2,
		Email: entity.Enabled, Webhook: entity.Disabled,
	}
	if err := repo.Upsert(context.Background(), pref); err != nil {
		t.Fatalf("Upsert err=%v", err)
	}
	if pref.ID != 5 {
		t.Fatalf("ID not set from RETURNING, got %d", pref.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 3. UserCategoryPreference ──────────────────────────────── */

func TestUserCategoryPreferenceRepo_GetByUserAndCategory(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id`)).
		WithArgs(int64(1), int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "site_id", "category_id", "enabled",
			"frequency", "time_of_day", "timezone", "weekly_day",
			"created_at", "updated_at",
		}).AddRow(
			int64(4), int64(1), int64(2), int64(9), true,
			"weekly", nil, nil, int64(4),
			now, now,
		))

	repo := postgres.NewUserCategoryPreferenceRepo(db)
	got, err := repo.GetByUserAndCategory(context.Background(), 1, 9)
	if err != nil {
		t.Fatalf("GetByUserAndCategory err=%v", err)
	}

	friday := 4
	want := &entity.UserCategoryPreference{
		ID: 4, UserID: 1, SiteID: 2, CategoryID: 9, Enabled: true,
		Schedule: entity.Schedule{
			Frequency: entity.FrequencyWeekly,
			WeeklyDay: &friday,
		},
		CreatedAt: now, UpdatedAt: now,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUserCategoryPreferenceRepo_Upsert(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO user_category_preferences`)).
		WithArgs(int64(1), int64(2), int64(9), false,
			"daily", "08:30", "UTC", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(4), now, now))

	repo := postgres.NewUserCategoryPreferenceRepo(db)
	tod := entity.TimeOfDay{Hour: 8, Minute: 30}
	pref := &entity.UserCategoryPreference{
		UserID: 1, SiteID: 2, CategoryID: 9, Enabled: false,
		Schedule: entity.Schedule{
			Frequency: entity.FrequencyDaily,
			TimeOfDay: &tod,
			Timezone:  "UTC",
		},
	}
	if err := repo.Upsert(context.Background(), pref); err != nil {
		t.Fatalf("Upsert err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
