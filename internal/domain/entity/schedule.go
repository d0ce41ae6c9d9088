package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// Frequency describes how often notifications in a category are delivered.
type Frequency string

const (
	// FrequencyInstant delivers the notification immediately.
	FrequencyInstant Frequency = "instant"

	// FrequencyDaily defers delivery to the next occurrence of the
	// configured time of day.
	FrequencyDaily Frequency = "daily"

	// FrequencyWeekly defers delivery to the next occurrence of the
	// configured weekday at the configured time of day.
	FrequencyWeekly Frequency = "weekly"
)

// TimeOfDay is a wall-clock time in 24h format, without a date or zone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses an "HH:MM" string into a TimeOfDay.
// Returns a ValidationError for malformed or out-of-range values.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, &ValidationError{Field: "time_of_day", Message: "must be in HH:MM format"}
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, &ValidationError{Field: "time_of_day", Message: "hour must be between 0 and 23"}
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, &ValidationError{Field: "time_of_day", Message: "minute must be between 0 and 59"}
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// String formats the time of day as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Schedule is one level of the delivery schedule cascade. Every field is
// optional: a zero Frequency, nil TimeOfDay, empty Timezone or nil
// WeeklyDay means "not set at this level, fall through to the next".
//
// WeeklyDay uses Monday=0 .. Sunday=6 indexing.
type Schedule struct {
	Frequency Frequency
	TimeOfDay *TimeOfDay
	Timezone  string
	WeeklyDay *int
}

// IsZero reports whether no field is set at this cascade level.
func (s Schedule) IsZero() bool {
	return s.Frequency == "" && s.TimeOfDay == nil && s.Timezone == "" && s.WeeklyDay == nil
}

// Merge overlays s on top of lower, field by field. A field set on s wins;
// an unset field falls through to lower's value. Neither receiver nor
// argument is mutated.
func (s Schedule) Merge(lower Schedule) Schedule {
	out := s
	if out.Frequency == "" {
		out.Frequency = lower.Frequency
	}
	if out.TimeOfDay == nil {
		out.TimeOfDay = lower.TimeOfDay
	}
	if out.Timezone == "" {
		out.Timezone = lower.Timezone
	}
	if out.WeeklyDay == nil {
		out.WeeklyDay = lower.WeeklyDay
	}
	return out
}
