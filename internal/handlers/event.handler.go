package handlers

import (
	"context"
	"errors"

	"github.com/fasthttp/router"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
	"github.com/SoHOSolatube/PD-App-sub000/internal/services"
	xhttp "github.com/SoHOSolatube/PD-App-sub000/pkg/http"
)

type EventService interface {
	Create(ctx context.Context, ev *model.PDEvent) (*model.PDEvent, error)
	Get(ctx context.Context, id int64) (*model.PDEvent, error)
	ListPublished(ctx context.Context) ([]*model.PDEvent, error)
	UpdateSequence(ctx context.Context, eventID int64, steps []model.NotificationStep) error
}

type EventHandler struct {
	svc EventService
}

func RegisterEventRoutes(e *router.Group, h *EventHandler) {
	e.POST("/events", h.CreateEvent)
	e.GET("/events", h.ListEvents)
	e.GET("/events/{id}", h.GetEvent)
	e.PUT("/events/{id}/notifications", h.UpdateNotifications)
}

func NewEventHandler(eventService EventService) *EventHandler {
	return &EventHandler{
		svc: eventService,
	}
}

type eventListResponse struct {
	Items []*model.PDEvent `json:"items"`
}

type updateNotificationsRequest struct {
	Steps []model.NotificationStep `json:"steps"`
}

func (h *EventHandler) CreateEvent(ctx *xhttp.RequestCtx) {
	var ev model.PDEvent
	if err := readJSON(ctx, &ev); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	created, err := h.svc.Create(ctx, &ev)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, created)
}

func (h *EventHandler) GetEvent(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid id")
		return
	}
	ev, err := h.svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(ctx, 404, "event not found")
			return
		}
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, ev)
}

func (h *EventHandler) ListEvents(ctx *xhttp.RequestCtx) {
	items, err := h.svc.ListPublished(ctx)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, eventListResponse{Items: items})
}

func (h *EventHandler) UpdateNotifications(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid id")
		return
	}
	var req updateNotificationsRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	if err := h.svc.UpdateSequence(ctx, id, req.Steps); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(ctx, 404, "event not found")
			return
		}
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]string{"status": "updated"})
}
