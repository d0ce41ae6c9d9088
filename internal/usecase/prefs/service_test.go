package prefs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nolofication/internal/domain/entity"
)

/* ──────────────────────────────── スタブ ──────────────────────────────── */

type stubProfileRepo struct {
	profile *entity.PreferenceProfile
	created []*entity.PreferenceProfile
	updated []*entity.PreferenceProfile
}

func (s *stubProfileRepo) GetByUser(_ context.Context, _ int64) (*entity.PreferenceProfile, error) {
	return s.profile, nil
}
func (s *stubProfileRepo) Create(_ context.Context, p *entity.PreferenceProfile) error {
	p.ID = 1
	s.created = append(s.created, p)
	s.profile = p
	return nil
}
func (s *stubProfileRepo) Update(_ context.Context, p *entity.PreferenceProfile) error {
	s.updated = append(s.updated, p)
	return nil
}

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

/* ──────────────────────────────── GetProfile ──────────────────────────────── */

func TestGetProfile_CreatesDefaultOnFirstAccess(t *testing.T) {
	profiles := &stubProfileRepo{}
	svc := NewService(profiles, &stubSitePrefRepo{}, &stubCatPrefRepo{})

	profile, err := svc.GetProfile(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, profiles.created, 1)
	assert.True(t, profile.EmailEnabled)
	assert.False(t, profile.PushEnabled)
	assert.False(t, profile.ChatEnabled)
	assert.False(t, profile.WebhookEnabled)
}

func TestGetProfile_ReturnsExisting(t *testing.T) {
	existing := &entity.PreferenceProfile{ID: 1, UserID: 1, PushEnabled: true}
	profiles := &stubProfileRepo{profile: existing}
	svc := NewService(profiles, &stubSitePrefRepo{}, &stubCatPrefRepo{})

	profile, err := svc.GetProfile(context.Background(), 1)
	require.NoError(t, err)
	assert.Same(t, existing, profile)
	assert.Empty(t, profiles.created)
}

/* ──────────────────────────────── Resolve ──────────────────────────────── */

func TestResolve_GlobalFlagsOnly(t *testing.T) {
	profiles := &stubProfileRepo{profile: &entity.PreferenceProfile{
		ID: 1, UserID: 1,
		EmailEnabled: true, PushEnabled: true,
	}}
	svc := NewService(profiles, &stubSitePrefRepo{}, &stubCatPrefRepo{})

	resolved, err := svc.Resolve(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, resolved.Email)
	assert.True(t, resolved.Push)
	assert.False(t, resolved.ChatDM)
	assert.False(t, resolved.Webhook)
}

func TestResolve_SiteOverridesApply(t *testing.T) {
	profiles := &stubProfileRepo{profile: &entity.PreferenceProfile{
		ID: 1, UserID: 1,
		EmailEnabled: true, ChatEnabled: true,
		ChatDestinationID: "dm-42",
	}}
	sitePrefs := &stubSitePrefRepo{pref: &entity.SitePreference{
		UserID: 1, SiteID: 2,
		Email: entity.Disabled, // force off despite global on
		Push:  entity.Enabled,  // force on despite global off
	}}
	svc := NewService(profiles, sitePrefs, &stubCatPrefRepo{})

	resolved, err := svc.Resolve(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, resolved.Email)
	assert.True(t, resolved.Push)
	assert.True(t, resolved.ChatDM, "inherit keeps the global flag")
	assert.Equal(t, "dm-42", resolved.ChatDestinationID)
}

func TestResolve_NoSiteRowEqualsGlobalProfile(t *testing.T) {
	// Flags pass through untouched even when addressing data is absent;
	// deliverability of a flagged channel is the dispatcher's concern.
	profiles := &stubProfileRepo{profile: &entity.PreferenceProfile{
		ID: 1, UserID: 1,
		ChatEnabled: true, WebhookEnabled: true,
		// No destination ID, no webhook URL.
	}}
	svc := NewService(profiles, &stubSitePrefRepo{}, &stubCatPrefRepo{})

	resolved, err := svc.Resolve(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, entity.ResolvedPreferences{ChatDM: true, Webhook: true}, resolved)
}

func TestResolve_LazyProfileCreation(t *testing.T) {
	profiles := &stubProfileRepo{}
	svc := NewService(profiles, &stubSitePrefRepo{}, &stubCatPrefRepo{})

	resolved, err := svc.Resolve(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, resolved.Email, "default profile enables email")
	assert.Len(t, profiles.created, 1)
}

/* ──────────────────────────────── Updates / CategoryEnabled ──────────────────────────────── */

func TestUpdateProfile_RejectsPrivateWebhookURL(t *testing.T) {
	profiles := &stubProfileRepo{profile: &entity.PreferenceProfile{ID: 1, UserID: 1}}
	svc := NewService(profiles, &stubSitePrefRepo{}, &stubCatPrefRepo{})

	err := svc.UpdateProfile(context.Background(), &entity.PreferenceProfile{
		UserID:     1,
		WebhookURL: "http://127.0.0.1/hook",
	})
	assert.Error(t, err)
	assert.Empty(t, profiles.updated)
}

func TestSetSitePreference_ValidatesSchedule(t *testing.T) {
	svc := NewService(&stubProfileRepo{}, &stubSitePrefRepo{}, &stubCatPrefRepo{})

	bad := 9
	err := svc.SetSitePreference(context.Background(), &entity.SitePreference{
		UserID: 1, SiteID: 2,
		Schedule: entity.Schedule{WeeklyDay: &bad},
	})
	assert.Error(t, err)
}

func TestCategoryEnabled_DefaultsToEnabled(t *testing.T) {
	svc := NewService(&stubProfileRepo{}, &stubSitePrefRepo{}, &stubCatPrefRepo{})

	enabled, err := svc.CategoryEnabled(context.Background(), 1, 9)
	require.NoError(t, err)
	assert.True(t, enabled, "no row means the category is enabled")
}

func TestCategoryEnabled_DisabledRow(t *testing.T) {
	catPrefs := &stubCatPrefRepo{pref: &entity.UserCategoryPreference{
		UserID: 1, CategoryID: 9, Enabled: false,
	}}
	svc := NewService(&stubProfileRepo{}, &stubSitePrefRepo{}, catPrefs)

	enabled, err := svc.CategoryEnabled(context.Background(), 1, 9)
	require.NoError(t, err)
	assert.False(t, enabled)
}
