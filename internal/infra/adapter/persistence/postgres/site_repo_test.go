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

/* ──────────────────────────────── ヘルパ ──────────────────────────────── */

var siteCols = []string{
	"id", "key", "name", "description", "api_key",
	"active", "approved", "created_at", "updated_at",
}

func siteRow(s *entity.Site) *sqlmock.Rows {
	return sqlmock.NewRows(siteCols).AddRow(
		s.ID, s.Key, s.Name, s.Description, s.APIKey,
		s.Active, s.Approved, s.CreatedAt, s.UpdatedAt,
	)
}

/* ──────────────────────────────── 1. GetByKey ──────────────────────────────── */

func TestSiteRepo_GetByKey(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now().UTC()
	want := &entity.Site{
		ID: 1, Key: "playground", Name: "Playground",
		APIKey: "dev-playground-key", Active: true, Approved: true,
		CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id`)).
		WithArgs("playground").
		WillReturnRows(siteRow(want))

	repo := postgres.NewSiteRepo(db)
	got, err := repo.GetByKey(context.Background(), "playground")
	if err != nil {
		t.Fatalf("GetByKey err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSiteRepo_GetByKey_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(siteCols))

	repo := postgres.NewSiteRepo(db)
	got, err := repo.GetByKey(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetByKey err=%v", err)
	}
	if got != nil {
		t.Fatalf("want nil for missing site, got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 2. GetByAPIKey ──────────────────────────────── */

// 無効サイト・未承認サイトは WHERE 句で除外される
func TestSiteRepo_GetByAPIKey_FiltersInactive(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`active = TRUE`).
		WithArgs("revoked-key").
		WillReturnRows(sqlmock.NewRows(siteCols))

	repo := postgres.NewSiteRepo(db)
	got, err := repo.GetByAPIKey(context.Background(), "revoked-key")
	if err != nil {
		t.Fatalf("GetByAPIKey err=%v", err)
	}
	if got != nil {
		t.Fatalf("want nil for inactive site, got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 3. Create ──────────────────────────────── */

func TestSiteRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO sites`)).
		WithArgs("blog", "My Blog", nil, "secret-key", true, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(2), now, now))

	repo := postgres.NewSiteRepo(db)
	site := &entity.Site{Key: "blog", Name: "My Blog", APIKey: "secret-key", Active: true}
	if err := repo.Create(context.Background(), site); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if site.ID != 2 {
		t.Fatalf("ID not set from RETURNING, got %d", site.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 4. Category GetByKey ──────────────────────────────── */

func TestCategoryRepo_GetByKey(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id`)).
		WithArgs(int64(1), "digest").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "site_id", "key", "name", "description",
			"default_frequency", "default_time", "default_timezone", "default_weekly_day",
			"created_at", "updated_at",
		}).AddRow(
			int64(9), int64(1), "digest", "Digest", "Daily activity digest",
			"daily", "09:00", "UTC", nil,
			now, now,
		))

	repo := postgres.NewCategoryRepo(db)
	got, err := repo.GetByKey(context.Background(), 1, "digest")
	if err != nil {
		t.Fatalf("GetByKey err=%v", err)
	}

	nine := entity.TimeOfDay{Hour: 9, Minute: 0}
	want := &entity.Category{
		ID: 9, SiteID: 1, Key: "digest", Name: "Digest",
		Description: "Daily activity digest",
		DefaultSchedule: entity.Schedule{
			Frequency: entity.FrequencyDaily,
			TimeOfDay: &nine,
			Timezone:  "UTC",
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
