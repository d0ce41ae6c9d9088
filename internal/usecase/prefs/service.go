// Package prefs provides use cases for managing notification preferences.
// It implements the two-level channel cascade: global per-user flags with
// optional per-site overrides, plus per-category enable flags.
package prefs

import (
	"context"
	"fmt"

	"nolofication/internal/domain/entity"
	"nolofication/internal/repository"
)

// Service manages notification preferences and resolves the effective
// per-channel settings for a (user, site) pair.
type Service interface {
	// GetProfile returns the user's global preference profile, creating
	// the default profile (email on, everything else off) on first access.
	GetProfile(ctx context.Context, userID int64) (*entity.PreferenceProfile, error)

	// UpdateProfile validates and persists the user's global flags and
	// addressing data.
	UpdateProfile(ctx context.Context, profile *entity.PreferenceProfile) error

	// Resolve computes the effective channel settings for a (user, site)
	// pair by applying the site's overrides on top of the global profile:
	// site override if present, else the global flag. With no site row the
	// result equals the global profile exactly. Addressing data always
	// comes from the global profile; whether a flagged channel is actually
	// deliverable (chat destination, webhook URL) is the dispatcher's call.
	Resolve(ctx context.Context, userID, siteID int64) (entity.ResolvedPreferences, error)

	// SetSitePreference upserts the user's per-site override row.
	SetSitePreference(ctx context.Context, pref *entity.SitePreference) error

	// SetCategoryPreference validates and upserts the user's per-category
	// row (enable flag plus optional schedule override).
	SetCategoryPreference(ctx context.Context, pref *entity.UserCategoryPreference) error

	// CategoryEnabled reports whether the user receives notifications in
	// the given category. Categories are opt-out: no row means enabled.
	CategoryEnabled(ctx context.Context, userID, categoryID int64) (bool, error)
}

type service struct {
	profiles  repository.PreferenceProfileRepository
	sitePrefs repository.SitePreferenceRepository
	catPrefs  repository.UserCategoryPreferenceRepository
}

// NewService creates a preference service backed by the given repositories.
func NewService(
	profiles repository.PreferenceProfileRepository,
	sitePrefs repository.SitePreferenceRepository,
	catPrefs repository.UserCategoryPreferenceRepository,
) Service {
	return &service{
		profiles:  profiles,
		sitePrefs: sitePrefs,
		catPrefs:  catPrefs,
	}
}

func (s *service) GetProfile(ctx context.Context, userID int64) (*entity.PreferenceProfile, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("GetProfile: %w", entity.ErrInvalidInput)
	}

	profile, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetProfile: %w", err)
	}
	if profile != nil {
		return profile, nil
	}

	// First access: persist the default profile so later updates have a
	// row to target.
	profile = entity.DefaultPreferenceProfile(userID)
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("GetProfile: create default: %w", err)
	}
	return profile, nil
}

func (s *service) UpdateProfile(ctx context.Context, profile *entity.PreferenceProfile) error {
	if profile == nil || profile.UserID <= 0 {
		return fmt.Errorf("UpdateProfile: %w", entity.ErrInvalidInput)
	}
	if profile.WebhookURL != "" {
		if err := entity.ValidateWebhookURL(profile.WebhookURL); err != nil {
			return fmt.Errorf("UpdateProfile: %w", err)
		}
	}

	// Ensure the row exists before updating (lazy creation path).
	if _, err := s.GetProfile(ctx, profile.UserID); err != nil {
		return err
	}
	if err := s.profiles.Update(ctx, profile); err != nil {
		return fmt.Errorf("UpdateProfile: %w", err)
	}
	return nil
}

func (s *service) Resolve(ctx context.Context, userID, siteID int64) (entity.ResolvedPreferences, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return entity.ResolvedPreferences{}, fmt.Errorf("Resolve: %w", err)
	}

	sitePref, err := s.sitePrefs.GetByUserAndSite(ctx, userID, siteID)
	if err != nil {
		return entity.ResolvedPreferences{}, fmt.Errorf("Resolve: %w", err)
	}

	resolved := entity.ResolvedPreferences{
		Email:             profile.EmailEnabled,
		Push:              profile.PushEnabled,
		ChatDM:            profile.ChatEnabled,
		Webhook:           profile.WebhookEnabled,
		ChatDestinationID: profile.ChatDestinationID,
		WebhookURL:        profile.WebhookURL,
	}
	if sitePref != nil {
		resolved.Email = sitePref.Email.Apply(resolved.Email)
		resolved.Push = sitePref.Push.Apply(resolved.Push)
		resolved.ChatDM = sitePref.ChatDM.Apply(resolved.ChatDM)
		resolved.Webhook = sitePref.Webhook.Apply(resolved.Webhook)
	}

	return resolved, nil
}

func (s *service) SetSitePreference(ctx context.Context, pref *entity.SitePreference) error {
	if pref == nil || pref.UserID <= 0 || pref.SiteID <= 0 {
		return fmt.Errorf("SetSitePreference: %w", entity.ErrInvalidInput)
	}
	if err := entity.ValidateSchedule(pref.Schedule); err != nil {
		return fmt.Errorf("SetSitePreference: %w", err)
	}
	if err := s.sitePrefs.Upsert(ctx, pref); err != nil {
		return fmt.Errorf("SetSitePreference: %w", err)
	}
	return nil
}

func (s *service) SetCategoryPreference(ctx context.Context, pref *entity.UserCategoryPreference) error {
	if pref == nil || pref.UserID <= 0 || pref.SiteID <= 0 || pref.CategoryID <= 0 {
		return fmt.Errorf("SetCategoryPreference: %w", entity.ErrInvalidInput)
	}
	if err := entity.ValidateSchedule(pref.Schedule); err != nil {
		return fmt.Errorf("SetCategoryPreference: %w", err)
	}
	if err := s.catPrefs.Upsert(ctx, pref); err != nil {
		return fmt.Errorf("SetCategoryPreference: %w", err)
	}
	return nil
}

func (s *service) CategoryEnabled(ctx context.Context, userID, categoryID int64) (bool, error) {
	pref, err := s.catPrefs.GetByUserAndCategory(ctx, userID, categoryID)
	if err != nil {
		return false, fmt.Errorf("CategoryEnabled: %w", err)
	}
	if pref == nil {
		return true, nil
	}
	return pref.Enabled, nil
}
