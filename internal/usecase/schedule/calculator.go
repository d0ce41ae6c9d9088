// Package schedule computes delivery times for deferred notifications.
// It resolves the three-level schedule cascade (user-category override,
// user-site default, category default) and turns the resolved schedule
// into an absolute UTC delivery instant.
package schedule

import (
	"context"
	"fmt"
	"time"

	"nolofication/internal/domain/entity"
	"nolofication/internal/repository"
)

// Fallback values applied after the cascade for fields no level sets.
const (
	DefaultHour      = 9
	DefaultMinute    = 0
	DefaultWeeklyDay = 0 // Monday
	DefaultTimezone  = "UTC"
)

// Service resolves schedules and computes delivery instants.
type Service interface {
	// ResolveSchedule merges the schedule cascade for one (user, category)
	// pair. Priority, highest first: the user's category override, the
	// user's site-level default, the category's default.
	ResolveSchedule(ctx context.Context, userID int64, category *entity.Category) (entity.Schedule, error)

	// NextDue resolves the cascade and returns the absolute UTC instant
	// the next notification in this category should be delivered, per
	// NextAfter semantics.
	NextDue(ctx context.Context, userID int64, category *entity.Category, now time.Time) (time.Time, error)
}

type service struct {
	sitePrefs repository.SitePreferenceRepository
	catPrefs  repository.UserCategoryPreferenceRepository
}

// NewService creates a schedule service backed by the given repositories.
func NewService(
	sitePrefs repository.SitePreferenceRepository,
	catPrefs repository.UserCategoryPreferenceRepository,
) Service {
	return &service{sitePrefs: sitePrefs, catPrefs: catPrefs}
}

func (s *service) ResolveSchedule(ctx context.Context, userID int64, category *entity.Category) (entity.Schedule, error) {
	if category == nil {
		return entity.Schedule{}, fmt.Errorf("ResolveSchedule: %w", entity.ErrInvalidInput)
	}

	catPref, err := s.catPrefs.GetByUserAndCategory(ctx, userID, category.ID)
	if err != nil {
		return entity.Schedule{}, fmt.Errorf("ResolveSchedule: %w", err)
	}
	sitePref, err := s.sitePrefs.GetByUserAndSite(ctx, userID, category.SiteID)
	if err != nil {
		return entity.Schedule{}, fmt.Errorf("ResolveSchedule: %w", err)
	}

	merged := entity.Schedule{}
	if catPref != nil {
		merged = catPref.Schedule
	}
	if sitePref != nil {
		merged = merged.Merge(sitePref.Schedule)
	}
	merged = merged.Merge(category.DefaultSchedule)

	return merged, nil
}

func (s *service) NextDue(ctx context.Context, userID int64, category *entity.Category, now time.Time) (time.Time, error) {
	sched, err := s.ResolveSchedule(ctx, userID, category)
	if err != nil {
		return time.Time{}, fmt.Errorf("NextDue: %w", err)
	}
	return NextAfter(sched, now), nil
}

// NextAfter returns the next delivery instant strictly after now for the
// given schedule, in UTC. An instant or empty frequency returns now
// itself (immediate delivery). An unknown timezone also degrades to
// immediate delivery rather than guessing an offset.
//
// Daily schedules land on the next occurrence of the configured wall
// time, at most 24h ahead. Weekly schedules land on the next occurrence
// of the configured weekday (Monday=0) at the configured wall time, at
// most 7 days ahead.
func NextAfter(sched entity.Schedule, now time.Time) time.Time {
	switch sched.Frequency {
	case entity.FrequencyDaily, entity.FrequencyWeekly:
	default:
		return now.UTC()
	}

	tz := sched.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return now.UTC()
	}

	tod := entity.TimeOfDay{Hour: DefaultHour, Minute: DefaultMinute}
	if sched.TimeOfDay != nil {
		tod = *sched.TimeOfDay
	}

	local := now.In(loc)
	candidate := time.Date(local.Year(), local.Month(), local.Day(),
		tod.Hour, tod.Minute, 0, 0, loc)

	if sched.Frequency == entity.FrequencyDaily {
		if !candidate.After(local) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate.UTC()
	}

	targetDay := DefaultWeeklyDay
	if sched.WeeklyDay != nil {
		targetDay = *sched.WeeklyDay
	}

	// Monday=0 indexing; Go's Weekday has Sunday=0.
	currentDay := (int(local.Weekday()) + 6) % 7
	daysAhead := (targetDay - currentDay + 7) % 7
	candidate = candidate.AddDate(0, 0, daysAhead)
	if !candidate.After(local) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate.UTC()
}
