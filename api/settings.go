// ABOUTME: Singleton settings documents routed through the fallback orchestrator
// ABOUTME: Remote reads and writes are mirrored into the local replica
package api

import (
	"context"
	"fmt"

	"github.com/fieldfolio/fieldfolio/models"
	"github.com/fieldfolio/fieldfolio/remote"
)

// fetchSetting resolves a singleton settings document. A successful remote
// read is mirrored locally so fallback mode serves the freshest copy.
func fetchSetting[T any](ctx context.Context, s *Service, name string, localGet func() (T, bool), localSave func(T)) (T, bool) {
	if s.UsingLocalFallback() {
		return localGet()
	}

	for _, path := range []string{remote.OrgPath(name, ""), remote.LegacyPath(name, "")} {
		resp, err := s.gw.Get(ctx, path)
		if err == nil && resp.OK {
			value, derr := remote.Decode[T](resp)
			if derr != nil {
				s.logger.Warn("settings payload did not decode", "name", name, "err", derr)
				var zero T
				return zero, false
			}
			localSave(value)
			return value, true
		}
		if remote.IsTransport(resp, err) {
			s.degrade("get settings/" + name)
			return localGet()
		}
	}
	var zero T
	return zero, false
}

// saveSetting upserts a singleton settings document.
func saveSetting[T any](ctx context.Context, s *Service, name string, value T, localSave func(T)) error {
	if s.UsingLocalFallback() {
		localSave(value)
		return nil
	}

	resp, err := s.gw.Post(ctx, remote.OrgPath(name, ""), value)
	if err == nil && resp.OK {
		localSave(value)
		return nil
	}
	if remote.IsTransport(resp, err) {
		s.degrade("save settings/" + name)
		localSave(value)
		return nil
	}

	resp, err = s.gw.Put(ctx, remote.LegacyPath(name, ""), value)
	if err == nil && resp.OK {
		localSave(value)
		return nil
	}
	if remote.IsTransport(resp, err) {
		s.degrade("save settings/" + name)
		localSave(value)
		return nil
	}
	return fmt.Errorf("save settings/%s rejected: %s", name, resp.Err)
}

// Branding returns the saved branding document, false when none exists.
func (s *Service) Branding(ctx context.Context) (models.Branding, bool) {
	return fetchSetting(ctx, s, models.SettingBranding, s.engine.Branding, s.engine.SaveBranding)
}

// SaveBranding upserts the branding document.
func (s *Service) SaveBranding(ctx context.Context, b models.Branding) error {
	return saveSetting(ctx, s, models.SettingBranding, b, s.engine.SaveBranding)
}

// BusinessDetails returns the saved business details, false when none exist.
func (s *Service) BusinessDetails(ctx context.Context) (models.BusinessDetails, bool) {
	return fetchSetting(ctx, s, models.SettingBusinessDetails, s.engine.BusinessDetails, s.engine.SaveBusinessDetails)
}

// SaveBusinessDetails upserts the business details document.
func (s *Service) SaveBusinessDetails(ctx context.Context, d models.BusinessDetails) error {
	return saveSetting(ctx, s, models.SettingBusinessDetails, d, s.engine.SaveBusinessDetails)
}

// BankDetails returns the saved bank details, false when none exist.
func (s *Service) BankDetails(ctx context.Context) (models.BankDetails, bool) {
	return fetchSetting(ctx, s, models.SettingBankDetails, s.engine.BankDetails, s.engine.SaveBankDetails)
}

// SaveBankDetails upserts the bank details document.
func (s *Service) SaveBankDetails(ctx context.Context, d models.BankDetails) error {
	return saveSetting(ctx, s, models.SettingBankDetails, d, s.engine.SaveBankDetails)
}

// NotificationPreferences returns the saved preferences, false when none exist.
func (s *Service) NotificationPreferences(ctx context.Context) (models.NotificationPreferences, bool) {
	return fetchSetting(ctx, s, models.SettingNotifications, s.engine.NotificationPreferences, s.engine.SaveNotificationPreferences)
}

// SaveNotificationPreferences upserts the notification preferences document.
func (s *Service) SaveNotificationPreferences(ctx context.Context, p models.NotificationPreferences) error {
	return saveSetting(ctx, s, models.SettingNotifications, p, s.engine.SaveNotificationPreferences)
}
