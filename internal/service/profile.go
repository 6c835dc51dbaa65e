package service

import (
	"go.uber.org/zap"

	"storefront-core/internal/kvstore"
	"storefront-core/internal/models"
	"storefront-core/internal/util"
)

// UserProfileService caches the last-used shipping profile and a one-shot
// post-login redirect target. The profile is a per-client convenience cache
// overwritten wholesale on save, not an identity record; the redirect
// target lives in the session store, so it does not survive a restart.
type UserProfileService struct {
	profile  *kvstore.Bucket[*models.ShippingProfile]
	redirect *kvstore.Bucket[string]
	logger   *zap.Logger
}

// NewUserProfileService creates a profile service. durable holds the
// shipping profile; session holds the redirect target and must be scoped
// to the current tab session (a memory backend).
func NewUserProfileService(durable, session *kvstore.Store) *UserProfileService {
	return &UserProfileService{
		profile: kvstore.NewBucket(durable, KeyShippingProfile, func() *models.ShippingProfile {
			return nil
		}),
		redirect: kvstore.NewBucket(session, KeyRedirectTarget, func() string {
			return ""
		}),
		logger: util.GetLogger(),
	}
}

// SaveShippingProfile overwrites the cached shipping profile.
func (s *UserProfileService) SaveShippingProfile(profile models.ShippingProfile) error {
	return s.profile.Save(&profile)
}

// ShippingProfile returns the cached profile, or nil if none was saved.
func (s *UserProfileService) ShippingProfile() *models.ShippingProfile {
	return s.profile.Load()
}

// SaveRedirectTarget remembers where to send the user after login.
func (s *UserProfileService) SaveRedirectTarget(path string) error {
	return s.redirect.Save(path)
}

// ConsumeRedirectTarget returns the stored path and clears it in the same
// call, so the redirect fires at most once even if the consumer runs twice.
func (s *UserProfileService) ConsumeRedirectTarget() (string, bool) {
	path := s.redirect.Load()
	if path == "" {
		return "", false
	}
	if err := s.redirect.Clear(); err != nil {
		// Failing to clear would let the redirect fire twice; overwrite
		// with empty as a second attempt and report the path regardless.
		s.logger.Warn("Failed to clear redirect target", zap.Error(err))
		_ = s.redirect.Save("")
	}
	return path, true
}
