package handlers

import (
	"context"

	"github.com/fasthttp/router"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
	xhttp "github.com/SoHOSolatube/PD-App-sub000/pkg/http"
)

type SettingsService interface {
	Get(ctx context.Context) (*model.APISettings, error)
	Update(ctx context.Context, s *model.APISettings) error
}

type SettingsHandler struct {
	svc SettingsService
}

func RegisterSettingsRoutes(e *router.Group, h *SettingsHandler) {
	e.GET("/settings", h.GetSettings)
	e.PUT("/settings", h.UpdateSettings)
}

func NewSettingsHandler(settingsService SettingsService) *SettingsHandler {
	return &SettingsHandler{
		svc: settingsService,
	}
}

// settingsResponse reports configuration state without echoing secrets.
type settingsResponse struct {
	TwilioConfigured   bool   `json:"twilio_configured"`
	TwilioFromNumber   string `json:"twilio_from_number,omitempty"`
	SendGridConfigured bool   `json:"sendgrid_configured"`
	SendGridFromEmail  string `json:"sendgrid_from_email,omitempty"`
}

func (h *SettingsHandler) GetSettings(ctx *xhttp.RequestCtx) {
	s, err := h.svc.Get(ctx)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, settingsResponse{
		TwilioConfigured:   s.TwilioConfigured(),
		TwilioFromNumber:   s.TwilioFromNumber,
		SendGridConfigured: s.SendGridConfigured(),
		SendGridFromEmail:  s.SendGridFromEmail,
	})
}

func (h *SettingsHandler) UpdateSettings(ctx *xhttp.RequestCtx) {
	var s model.APISettings
	if err := readJSON(ctx, &s); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	if err := h.svc.Update(ctx, &s); err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]string{"status": "saved"})
}
