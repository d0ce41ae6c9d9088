// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as User, Site, and the preference
// hierarchy, along with their validation rules and domain-specific errors.
package entity

import "time"

// User stores the minimal user data mirrored from the external identity provider.
// The provider issues the stable ExternalID; everything else is advisory.
type User struct {
	ID         int64
	ExternalID string
	Username   string
	Email      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasEmail reports whether the user has a contact email on file.
// Email delivery is skipped entirely when this is false.
func (u *User) HasEmail() bool {
	return u.Email != ""
}

// PushSubscription is one registered push endpoint for a user.
// A user may hold several subscriptions (one per browser/device); the
// endpoint plus key pair is treated as an opaque bundle by the engine.
type PushSubscription struct {
	ID         int64
	UserID     int64
	Endpoint   string
	P256dh     string
	Auth       string
	UserAgent  string
	CreatedAt  time.Time
	LastUsedAt time.Time
}
