package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/fasthttp/router"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
	"github.com/SoHOSolatube/PD-App-sub000/internal/services"
	xhttp "github.com/SoHOSolatube/PD-App-sub000/pkg/http"
)

type BroadcastService interface {
	Create(ctx context.Context, p model.BroadcastCreateRequest) (*model.Broadcast, error)
	Schedule(ctx context.Context, id int64, at time.Time) error
	Get(ctx context.Context, id int64) (*model.Broadcast, error)
	List(ctx context.Context, f model.BroadcastFilter) ([]*model.Broadcast, int64, error)
}

type BroadcastHandler struct {
	svc BroadcastService
}

func RegisterBroadcastRoutes(e *router.Group, h *BroadcastHandler) {
	e.POST("/broadcasts", h.CreateBroadcast)
	e.GET("/broadcasts", h.ListBroadcasts)
	e.GET("/broadcasts/{id}", h.GetBroadcast)
	e.POST("/broadcasts/{id}/schedule", h.ScheduleBroadcast)
}

func NewBroadcastHandler(broadcastService BroadcastService) *BroadcastHandler {
	return &BroadcastHandler{
		svc: broadcastService,
	}
}

type createBroadcastRequest struct {
	Channel     string               `json:"channel"`
	SMSContent  string               `json:"sms_content"`
	Subject     string               `json:"subject"`
	EmailHTML   string               `json:"email_html"`
	Audience    model.AudienceTarget `json:"audience"`
	ScheduledAt *time.Time           `json:"scheduled_at"`
}

type scheduleBroadcastRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

type broadcastListResponse struct {
	Items []*model.Broadcast `json:"items"`
	Total int64              `json:"total"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *BroadcastHandler) CreateBroadcast(ctx *xhttp.RequestCtx) {
	var req createBroadcastRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	p := model.BroadcastCreateRequest{
		Channel:     model.Channel(req.Channel),
		SMSContent:  req.SMSContent,
		Subject:     req.Subject,
		EmailHTML:   req.EmailHTML,
		Audience:    req.Audience,
		ScheduledAt: req.ScheduledAt,
	}
	b, err := h.svc.Create(ctx, p)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, b)
}

func (h *BroadcastHandler) GetBroadcast(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid id")
		return
	}
	b, err := h.svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(ctx, 404, "broadcast not found")
			return
		}
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, b)
}

func (h *BroadcastHandler) ScheduleBroadcast(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid id")
		return
	}
	var req scheduleBroadcastRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	if err := h.svc.Schedule(ctx, id, req.ScheduledAt); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(ctx, 404, "broadcast not found or not schedulable")
			return
		}
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]string{"status": "scheduled"})
}

func (h *BroadcastHandler) ListBroadcasts(ctx *xhttp.RequestCtx) {
	var f model.BroadcastFilter

	if v := query(ctx, "status"); v != "" {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
			if parts[i] != "" {
				f.Statuses = append(f.Statuses, model.BroadcastStatus(parts[i]))
			}
		}
	}
	if v := query(ctx, "from"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.From = &t
		}
	}
	if v := query(ctx, "to"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.To = &t
		}
	}
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Offset = n
		}
	}
	if strings.EqualFold(query(ctx, "order"), "desc") {
		f.Desc = true
	}

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, broadcastListResponse{Items: items, Total: total})
}

/* --------------------------------- Helpers ----------------------------------- */

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

func pathInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	v, _ := ctx.UserValue(name).(string)
	return strconv.ParseInt(v, 10, 64)
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func parseTime(s string) (time.Time, error) {
	// Accept RFC3339 or YYYY-MM-DD
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
