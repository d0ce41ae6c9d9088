package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nolofication/internal/domain/entity"
	"nolofication/internal/service/identity"
)

/* ──── stubs ──── */

type stubSiteRepo struct {
	sites map[string]*entity.Site // keyed by API key
	err   error
}

func (r *stubSiteRepo) Get(ctx context.Context, id int64) (*entity.Site, error) { return nil, nil }
func (r *stubSiteRepo) GetByKey(ctx context.Context, key string) (*entity.Site, error) {
	return nil, nil
}
func (r *stubSiteRepo) GetByAPIKey(ctx context.Context, apiKey string) (*entity.Site, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.sites[apiKey], nil
}
func (r *stubSiteRepo) List(ctx context.Context) ([]*entity.Site, error)    { return nil, nil }
func (r *stubSiteRepo) Create(ctx context.Context, site *entity.Site) error { return nil }
func (r *stubSiteRepo) Update(ctx context.Context, site *entity.Site) error { return nil }
func (r *stubSiteRepo) Delete(ctx context.Context, id int64) error          { return nil }

type stubUserRepo struct {
	users map[string]*entity.User // keyed by external ID
	err   error
}

func (r *stubUserRepo) Get(ctx context.Context, id int64) (*entity.User, error) { return nil, nil }
func (r *stubUserRepo) GetByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.users[externalID], nil
}
func (r *stubUserRepo) List(ctx context.Context) ([]*entity.User, error)    { return nil, nil }
func (r *stubUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }
func (r *stubUserRepo) Update(ctx context.Context, user *entity.User) error { return nil }
func (r *stubUserRepo) Delete(ctx context.Context, id int64) error          { return nil }

type stubVerifier struct {
	tokens map[string]*identity.Identity
}

func (v *stubVerifier) Verify(ctx context.Context, token string) (*identity.Identity, error) {
	if id, ok := v.tokens[token]; ok {
		return id, nil
	}
	return nil, identity.ErrUnauthenticated
}

func (v *stubVerifier) Name() string { return "stub" }

/* ──── SiteAuth ──── */

func TestSiteAuth(t *testing.T) {
	site := &entity.Site{
		ID:       1,
		Key:      "myapp",
		Name:     "My App",
		APIKey:   "valid-key",
		Active:   true,
		Approved: true,
	}

	tests := []struct {
		name           string
		apiKey         string
		repo           *stubSiteRepo
		expectedStatus int
		expectSite     bool
	}{
		{
			name:           "valid api key",
			apiKey:         "valid-key",
			repo:           &stubSiteRepo{sites: map[string]*entity.Site{"valid-key": site}},
			expectedStatus: http.StatusOK,
			expectSite:     true,
		},
		{
			name:           "missing api key",
			apiKey:         "",
			repo:           &stubSiteRepo{sites: map[string]*entity.Site{"valid-key": site}},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unknown api key",
			apiKey:         "wrong-key",
			repo:           &stubSiteRepo{sites: map[string]*entity.Site{"valid-key": site}},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "repository error",
			apiKey:         "valid-key",
			repo:           &stubSiteRepo{err: errors.New("connection refused")},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotSite *entity.Site
			handler := SiteAuth(tt.repo, "X-API-Key")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSite, _ = SiteFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/sites/myapp/notify", nil)
			if tt.apiKey != "" {
				req.Header.Set("X-API-Key", tt.apiKey)
			}

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("got status %d, want %d", rr.Code, tt.expectedStatus)
			}

			if tt.expectSite {
				if gotSite == nil {
					t.Fatal("expected site in request context")
				}
				if gotSite.Key != site.Key {
					t.Errorf("got site key %q, want %q", gotSite.Key, site.Key)
				}
			} else if gotSite != nil {
				t.Error("handler should not have run with a site in context")
			}
		})
	}
}

func TestSiteAuth_CustomHeader(t *testing.T) {
	site := &entity.Site{ID: 1, Key: "myapp", APIKey: "k", Active: true, Approved: true}
	repo := &stubSiteRepo{sites: map[string]*entity.Site{"k": site}}

	handler := SiteAuth(repo, "X-Site-Token")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Key on the default header must not be picked up
	req := httptest.NewRequest(http.MethodPost, "/api/sites/myapp/notify", nil)
	req.Header.Set("X-API-Key", "k")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("default header: got status %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/sites/myapp/notify", nil)
	req.Header.Set("X-Site-Token", "k")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("configured header: got status %d, want %d", rr.Code, http.StatusOK)
	}
}

/* ──── UserAuth ──── */

func TestUserAuth(t *testing.T) {
	user := &entity.User{
		ID:         7,
		ExternalID: "ext-123",
		Username:   "alice",
		Email:      "alice@example.com",
	}

	verifier := &stubVerifier{tokens: map[string]*identity.Identity{
		"good-token":     {UserID: "ext-123", Username: "alice"},
		"stranger-token": {UserID: "ext-999", Username: "mallory"},
	}}
	ids := identity.NewService(verifier, nil)

	tests := []struct {
		name           string
		authorization  string
		repo           *stubUserRepo
		expectedStatus int
		expectUser     bool
	}{
		{
			name:           "valid token with registered user",
			authorization:  "Bearer good-token",
			repo:           &stubUserRepo{users: map[string]*entity.User{"ext-123": user}},
			expectedStatus: http.StatusOK,
			expectUser:     true,
		},
		{
			name:           "missing authorization header",
			authorization:  "",
			repo:           &stubUserRepo{users: map[string]*entity.User{"ext-123": user}},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong scheme",
			authorization:  "Basic Zm9vOmJhcg==",
			repo:           &stubUserRepo{users: map[string]*entity.User{"ext-123": user}},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid token",
			authorization:  "Bearer bad-token",
			repo:           &stubUserRepo{users: map[string]*entity.User{"ext-123": user}},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "valid token but unregistered subject",
			authorization:  "Bearer stranger-token",
			repo:           &stubUserRepo{users: map[string]*entity.User{"ext-123": user}},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "repository error",
			authorization:  "Bearer good-token",
			repo:           &stubUserRepo{err: errors.New("connection refused")},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser *entity.User
			handler := UserAuth(ids, tt.repo)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, _ = UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("got status %d, want %d", rr.Code, tt.expectedStatus)
			}

			if tt.expectUser {
				if gotUser == nil {
					t.Fatal("expected user in request context")
				}
				if gotUser.ID != user.ID {
					t.Errorf("got user ID %d, want %d", gotUser.ID, user.ID)
				}
			} else if gotUser != nil {
				t.Error("handler should not have run with a user in context")
			}
		})
	}
}

/* ──── context helpers ──── */

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()

	if _, ok := SiteFromContext(ctx); ok {
		t.Error("SiteFromContext on empty context should report false")
	}
	if _, ok := UserFromContext(ctx); ok {
		t.Error("UserFromContext on empty context should report false")
	}

	site := &entity.Site{ID: 1, Key: "myapp", CreatedAt: time.Now()}
	user := &entity.User{ID: 2, ExternalID: "ext-1"}

	ctx = WithSite(ctx, site)
	ctx = WithUser(ctx, user)

	gotSite, ok := SiteFromContext(ctx)
	if !ok || gotSite.ID != site.ID {
		t.Errorf("SiteFromContext = %+v, %v; want site %d", gotSite, ok, site.ID)
	}
	gotUser, ok := UserFromContext(ctx)
	if !ok || gotUser.ID != user.ID {
		t.Errorf("UserFromContext = %+v, %v; want user %d", gotUser, ok, user.ID)
	}
}
