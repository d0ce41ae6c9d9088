package postgres

import (
	"database/sql"
	"fmt"

	"nolofication/internal/domain/entity"
)

// scheduleRow maps the four nullable schedule columns shared by
// site_categories, site_preferences and user_category_preferences.
type scheduleRow struct {
	Frequency sql.NullString
	TimeOfDay sql.NullString
	Timezone  sql.NullString
	WeeklyDay sql.NullInt64
}

func (r scheduleRow) toEntity() (entity.Schedule, error) {
	var s entity.Schedule
	if r.Frequency.Valid {
		s.Frequency = entity.Frequency(r.Frequency.String)
	}
	if r.TimeOfDay.Valid && r.TimeOfDay.String != "" {
		tod, err := entity.ParseTimeOfDay(r.TimeOfDay.String)
		if err != nil {
			return entity.Schedule{}, fmt.Errorf("time_of_day column: %w", err)
		}
		s.TimeOfDay = &tod
	}
	if r.Timezone.Valid {
		s.Timezone = r.Timezone.String
	}
	if r.WeeklyDay.Valid {
		day := int(r.WeeklyDay.Int64)
		s.WeeklyDay = &day
	}
	return s, nil
}

// scheduleArgs converts a partial schedule to its four nullable column
// values, in (frequency, time_of_day, timezone, weekly_day) order.
func scheduleArgs(s entity.Schedule) (any, any, any, any) {
	var freq, tod, tz, day any
	if s.Frequency != "" {
		freq = string(s.Frequency)
	}
	if s.TimeOfDay != nil {
		tod = s.TimeOfDay.String()
	}
	if s.Timezone != "" {
		tz = s.Timezone
	}
	if s.WeeklyDay != nil {
		day = int64(*s.WeeklyDay)
	}
	return freq, tod, tz, day
}
