package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nolofication/internal/domain/entity"
)

/* ──────────────────────────────── スタブ ──────────────────────────────── */

type stubSitePrefRepo struct {
	pref *entity.SitePreference
}

func (s *stubSitePrefRepo) GetByUserAndSite(_ context.Context, _, _ int64) (*entity.SitePreference, error) {
	return s.pref, nil
}
func (s *stubSitePrefRepo) ListByUser(_ context.Context, _ int64) ([]*entity.SitePreference, error) {
	return nil, nil
}
func (s *stubSitePrefRepo) Upsert(_ context.Context, _ *entity.SitePreference) error { return nil }
func (s *stubSitePrefRepo) Delete(_ context.Context, _, _ int64) error               { return nil }

type stubCatPrefRepo struct {
	pref *entity.UserCategoryPreference
}

func (s *stubCatPrefRepo) GetByUserAndCategory(_ context.Context, _, _ int64) (*entity.UserCategoryPreference, error) {
	return s.pref, nil
}
func (s *stubCatPrefRepo) ListByUserAndSite(_ context.Context, _, _ int64) ([]*entity.UserCategoryPreference, error) {
	return nil, nil
}
func (s *stubCatPrefRepo) Upsert(_ context.Context, _ *entity.UserCategoryPreference) error {
	return nil
}
func (s *stubCatPrefRepo) Delete(_ context.Context, _, _ int64) error { return nil }

/* ──────────────────────────────── ResolveSchedule ──────────────────────────────── */

func TestResolveSchedule_CategoryDefaultOnly(t *testing.T) {
	category := &entity.Category{
		ID: 9, SiteID: 2,
		DefaultSchedule: entity.Schedule{
			Frequency: entity.FrequencyDaily,
			TimeOfDay: tod(9, 0),
			Timezone:  "UTC",
		},
	}
	svc := NewService(&stubSitePrefRepo{}, &stubCatPrefRepo{})

	got, err := svc.ResolveSchedule(context.Background(), 1, category)
	require.NoError(t, err)
	assert.Equal(t, category.DefaultSchedule, got)
}

func TestResolveSchedule_UserCategoryOverrideWins(t *testing.T) {
	category := &entity.Category{
		ID: 9, SiteID: 2,
		DefaultSchedule: entity.Schedule{
			Frequency: entity.FrequencyDaily,
			TimeOfDay: tod(9, 0),
			Timezone:  "UTC",
		},
	}
	svc := NewService(
		&stubSitePrefRepo{pref: &entity.SitePreference{
			Schedule: entity.Schedule{Frequency: entity.FrequencyWeekly, WeeklyDay: day(4)},
		}},
		&stubCatPrefRepo{pref: &entity.UserCategoryPreference{
			Schedule: entity.Schedule{Frequency: entity.FrequencyInstant},
		}},
	)

	got, err := svc.ResolveSchedule(context.Background(), 1, category)
	require.NoError(t, err)

	// Frequency from the category override; unset fields fall through the
	// site level down to the category default.
	assert.Equal(t, entity.FrequencyInstant, got.Frequency)
	assert.Equal(t, tod(9, 0), got.TimeOfDay)
	assert.Equal(t, "UTC", got.Timezone)
	assert.Equal(t, day(4), got.WeeklyDay)
}

func TestResolveSchedule_SiteLevelFillsGaps(t *testing.T) {
	category := &entity.Category{
		ID: 9, SiteID: 2,
		DefaultSchedule: entity.Schedule{Timezone: "UTC"},
	}
	svc := NewService(
		&stubSitePrefRepo{pref: &entity.SitePreference{
			Schedule: entity.Schedule{Frequency: entity.FrequencyDaily, TimeOfDay: tod(18, 0), Timezone: "Asia/Tokyo"},
		}},
		&stubCatPrefRepo{},
	)

	got, err := svc.ResolveSchedule(context.Background(), 1, category)
	require.NoError(t, err)
	assert.Equal(t, entity.FrequencyDaily, got.Frequency)
	assert.Equal(t, tod(18, 0), got.TimeOfDay)
	assert.Equal(t, "Asia/Tokyo", got.Timezone)
}

func TestNextDue_UsesResolvedCascade(t *testing.T) {
	category := &entity.Category{
		ID: 9, SiteID: 2,
		DefaultSchedule: entity.Schedule{
			Frequency: entity.FrequencyDaily,
			TimeOfDay: tod(9, 0),
			Timezone:  "UTC",
		},
	}
	svc := NewService(&stubSitePrefRepo{}, &stubCatPrefRepo{})

	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	got, err := svc.NextDue(context.Background(), 1, category, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), got)
}
