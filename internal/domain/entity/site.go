package entity

import "time"

// Site is a registered caller application that can send notifications.
// Sites authenticate with their APIKey and are addressed by the stable Key.
type Site struct {
	ID          int64
	Key         string
	Name        string
	Description string
	APIKey      string
	Active      bool
	Approved    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category is a site-defined notification class (e.g. "reminders") that
// users can opt out of and schedule independently. Key is unique per site.
// DefaultSchedule is the lowest level of the schedule cascade.
type Category struct {
	ID              int64
	SiteID          int64
	Key             string
	Name            string
	Description     string
	DefaultSchedule Schedule
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
