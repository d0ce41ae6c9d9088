package entity

import "time"

// Override is the tri-state value of a site-level channel override.
// Inherit means the site row does not override the global flag; it is
// represented by absence in storage, never by false.
type Override int8

const (
	// Inherit falls through to the user's global channel flag.
	Inherit Override = iota

	// Enabled forces the channel on for this site.
	Enabled

	// Disabled forces the channel off for this site.
	Disabled
)

// Apply resolves the override against the global flag.
func (o Override) Apply(global bool) bool {
	switch o {
	case Enabled:
		return true
	case Disabled:
		return false
	default:
		return global
	}
}

// OverrideFromPtr converts a nullable boolean (as stored) to an Override.
func OverrideFromPtr(p *bool) Override {
	if p == nil {
		return Inherit
	}
	if *p {
		return Enabled
	}
	return Disabled
}

// Ptr converts the override back to its nullable-boolean storage form.
func (o Override) Ptr() *bool {
	switch o {
	case Enabled:
		v := true
		return &v
	case Disabled:
		v := false
		return &v
	default:
		return nil
	}
}

// PreferenceProfile holds a user's global channel flags and addressing
// data. Exactly one profile exists per user; it is created lazily on
// first access.
type PreferenceProfile struct {
	ID             int64
	UserID         int64
	EmailEnabled   bool
	PushEnabled    bool
	ChatEnabled    bool
	WebhookEnabled bool

	// ChatDestinationID is the chat-bot DM destination for this user.
	ChatDestinationID string

	// WebhookURL is the user's generic webhook endpoint.
	WebhookURL string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultPreferenceProfile returns the profile created on first access:
// email on, everything else off until the user configures it.
func DefaultPreferenceProfile(userID int64) *PreferenceProfile {
	now := time.Now().UTC()
	return &PreferenceProfile{
		UserID:       userID,
		EmailEnabled: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// SitePreference holds a user's per-site channel overrides and the
// site-level default schedule. At most one row exists per (user, site).
type SitePreference struct {
	ID     int64
	UserID int64
	SiteID int64

	Email   Override
	Push    Override
	ChatDM  Override
	Webhook Override

	// Schedule is the site-level default schedule for the user, sitting
	// between the user-category override and the category default in the
	// cascade.
	Schedule Schedule

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserCategoryPreference holds a user's per-category settings for one
// site: an enable flag and an optional schedule override. At most one
// row exists per (user, site, category).
type UserCategoryPreference struct {
	ID         int64
	UserID     int64
	SiteID     int64
	CategoryID int64
	Enabled    bool
	Schedule   Schedule
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ResolvedPreferences is the fully-populated outcome of the global → site
// cascade for one (user, site) pair. Addressing data always comes from
// the global profile; sites can only toggle whether a channel fires.
type ResolvedPreferences struct {
	Email   bool
	Push    bool
	ChatDM  bool
	Webhook bool

	ChatDestinationID string
	WebhookURL        string
}
