package model

// APISettings holds the outbound-provider credentials. They live in the
// store (admin-editable) and are reread each delivery cycle; a provider
// with any field missing degrades to stub delivery.
type APISettings struct {
	TwilioAccountSID  string `json:"twilio_account_sid"`
	TwilioAuthToken   string `json:"twilio_auth_token"`
	TwilioFromNumber  string `json:"twilio_from_number"`
	SendGridAPIKey    string `json:"sendgrid_api_key"`
	SendGridFromEmail string `json:"sendgrid_from_email"`
}

func (s APISettings) TwilioConfigured() bool {
	return s.TwilioAccountSID != "" && s.TwilioAuthToken != "" && s.TwilioFromNumber != ""
}

func (s APISettings) SendGridConfigured() bool {
	return s.SendGridAPIKey != "" && s.SendGridFromEmail != ""
}
