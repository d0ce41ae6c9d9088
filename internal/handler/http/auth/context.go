// Package auth provides the HTTP authentication middleware for the two
// caller populations of the API: sites authenticating with an API key on
// ingestion endpoints, and end users authenticating with a bearer token
// on preference and history endpoints.
package auth

import (
	"context"

	"nolofication/internal/domain/entity"
)

type ctxKey string

const (
	ctxSite ctxKey = "site"
	ctxUser ctxKey = "user"
)

// WithSite returns a context carrying the authenticated caller site.
func WithSite(ctx context.Context, site *entity.Site) context.Context {
	return context.WithValue(ctx, ctxSite, site)
}

// SiteFromContext returns the site stored by the SiteAuth middleware.
func SiteFromContext(ctx context.Context) (*entity.Site, bool) {
	site, ok := ctx.Value(ctxSite).(*entity.Site)
	return site, ok
}

// WithUser returns a context carrying the authenticated end user.
func WithUser(ctx context.Context, user *entity.User) context.Context {
	return context.WithValue(ctx, ctxUser, user)
}

// UserFromContext returns the user stored by the UserAuth middleware.
func UserFromContext(ctx context.Context) (*entity.User, bool) {
	user, ok := ctx.Value(ctxUser).(*entity.User)
	return user, ok
}
