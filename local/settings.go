// ABOUTME: Singleton settings upserts against the local replica
// ABOUTME: One instance per account; no ids, no arrays
package local

import (
	"github.com/fieldfolio/fieldfolio/models"
	"github.com/fieldfolio/fieldfolio/store"
)

func (e *Engine) Branding() (models.Branding, bool) {
	return store.GetSetting[models.Branding](e.store, models.SettingBranding)
}

func (e *Engine) SaveBranding(b models.Branding) {
	store.PutSetting(e.store, models.SettingBranding, b)
}

func (e *Engine) BusinessDetails() (models.BusinessDetails, bool) {
	return store.GetSetting[models.BusinessDetails](e.store, models.SettingBusinessDetails)
}

func (e *Engine) SaveBusinessDetails(d models.BusinessDetails) {
	store.PutSetting(e.store, models.SettingBusinessDetails, d)
}

func (e *Engine) BankDetails() (models.BankDetails, bool) {
	return store.GetSetting[models.BankDetails](e.store, models.SettingBankDetails)
}

func (e *Engine) SaveBankDetails(d models.BankDetails) {
	store.PutSetting(e.store, models.SettingBankDetails, d)
}

func (e *Engine) NotificationPreferences() (models.NotificationPreferences, bool) {
	return store.GetSetting[models.NotificationPreferences](e.store, models.SettingNotifications)
}

func (e *Engine) SaveNotificationPreferences(p models.NotificationPreferences) {
	store.PutSetting(e.store, models.SettingNotifications, p)
}
