package repository

import (
	"time"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
)

type APISettingsEntity struct {
	ID                int64     `gorm:"primaryKey;column:id"`
	TwilioAccountSID  string    `gorm:"column:twilio_account_sid"`
	TwilioAuthToken   string    `gorm:"column:twilio_auth_token"`
	TwilioFromNumber  string    `gorm:"column:twilio_from_number"`
	SendGridAPIKey    string    `gorm:"column:sendgrid_api_key"`
	SendGridFromEmail string    `gorm:"column:sendgrid_from_email"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (APISettingsEntity) TableName() string { return "api_settings" }

func toSettingsModel(e *APISettingsEntity) *model.APISettings {
	if e == nil {
		return &model.APISettings{}
	}
	return &model.APISettings{
		TwilioAccountSID:  e.TwilioAccountSID,
		TwilioAuthToken:   e.TwilioAuthToken,
		TwilioFromNumber:  e.TwilioFromNumber,
		SendGridAPIKey:    e.SendGridAPIKey,
		SendGridFromEmail: e.SendGridFromEmail,
	}
}
