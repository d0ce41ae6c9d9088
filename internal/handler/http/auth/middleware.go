package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"nolofication/internal/handler/http/respond"
	"nolofication/internal/repository"
	"nolofication/internal/service/identity"
)

// Authentication scheme labels used for metrics.
const (
	schemeAPIKey = "api_key"
	schemeBearer = "bearer"
)

// SiteAuth authenticates the caller site on ingestion endpoints.
//
// The API key is read from the configured header (X-API-Key by default)
// and resolved through the site repository, which only returns sites
// that are both active and approved. A suspended or still-pending site
// therefore gets the same 401 as an unknown key, so callers cannot
// probe registration state.
//
// On success the site entity is stored in the request context; handlers
// retrieve it with SiteFromContext.
func SiteAuth(sites repository.SiteRepository, headerName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			apiKey := r.Header.Get(headerName)
			if apiKey == "" {
				RecordAuthRequest(schemeAPIKey, "failure")
				RecordRejectedAttempt(schemeAPIKey, r.Method)
				respond.SafeErrorV2(w, http.StatusUnauthorized,
					respond.NewAppError(http.StatusUnauthorized, "unauthorized", errors.New("missing api key")))
				return
			}

			site, err := sites.GetByAPIKey(r.Context(), apiKey)
			if err != nil {
				RecordAuthRequest(schemeAPIKey, "failure")
				respond.SafeErrorV2(w, http.StatusInternalServerError,
					respond.NewAppError(http.StatusInternalServerError, "internal server error",
						fmt.Errorf("SiteAuth: %w", err)))
				return
			}
			if site == nil {
				RecordAuthRequest(schemeAPIKey, "failure")
				RecordRejectedAttempt(schemeAPIKey, r.Method)
				respond.SafeErrorV2(w, http.StatusUnauthorized,
					respond.NewAppError(http.StatusUnauthorized, "unauthorized", errors.New("unknown api key")))
				return
			}

			RecordAuthRequest(schemeAPIKey, "success")
			RecordAuthDuration(schemeAPIKey, time.Since(start).Seconds())
			next.ServeHTTP(w, r.WithContext(WithSite(r.Context(), site)))
		})
	}
}

// UserAuth authenticates the end user on preference and history endpoints.
//
// The bearer token from the Authorization header is resolved to an
// external identity by the identity service, then mapped to a local
// user row via the external ID. A valid token for a subject that never
// registered is rejected with 401 rather than auto-provisioned.
//
// On success the user entity is stored in the request context; handlers
// retrieve it with UserFromContext.
func UserAuth(ids *identity.Service, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			const prefix = "Bearer "
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, prefix) {
				RecordAuthRequest(schemeBearer, "failure")
				RecordRejectedAttempt(schemeBearer, r.Method)
				respond.SafeErrorV2(w, http.StatusUnauthorized,
					respond.NewAppError(http.StatusUnauthorized, "unauthorized", errors.New("missing bearer token")))
				return
			}

			id, err := ids.Verify(r.Context(), strings.TrimPrefix(authz, prefix))
			if err != nil {
				RecordAuthRequest(schemeBearer, "failure")
				RecordRejectedAttempt(schemeBearer, r.Method)
				respond.SafeErrorV2(w, http.StatusUnauthorized,
					respond.NewAppError(http.StatusUnauthorized, "unauthorized", fmt.Errorf("UserAuth: %w", err)))
				return
			}

			user, err := users.GetByExternalID(r.Context(), id.UserID)
			if err != nil {
				RecordAuthRequest(schemeBearer, "failure")
				respond.SafeErrorV2(w, http.StatusInternalServerError,
					respond.NewAppError(http.StatusInternalServerError, "internal server error",
						fmt.Errorf("UserAuth: %w", err)))
				return
			}
			if user == nil {
				RecordAuthRequest(schemeBearer, "failure")
				RecordRejectedAttempt(schemeBearer, r.Method)
				respond.SafeErrorV2(w, http.StatusUnauthorized,
					respond.NewAppError(http.StatusUnauthorized, "unauthorized",
						fmt.Errorf("UserAuth: no user for subject %q", id.UserID)))
				return
			}

			RecordAuthRequest(schemeBearer, "success")
			RecordAuthDuration(schemeBearer, time.Since(start).Seconds())
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
