package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/fasthttp/router"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
	xhttp "github.com/SoHOSolatube/PD-App-sub000/pkg/http"
)

type ContactService interface {
	Create(ctx context.Context, c *model.Contact) (*model.Contact, error)
	ListActive(ctx context.Context, f model.ContactFilter) ([]*model.Contact, error)
}

type ContactHandler struct {
	svc ContactService
}

func RegisterContactRoutes(e *router.Group, h *ContactHandler) {
	e.POST("/contacts", h.CreateContact)
	e.GET("/contacts", h.ListContacts)
}

func NewContactHandler(contactService ContactService) *ContactHandler {
	return &ContactHandler{
		svc: contactService,
	}
}

type createContactRequest struct {
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	Company     string  `json:"company"`
	Categories  []int64 `json:"categories"`
	OptOutSMS   bool    `json:"opt_out_sms"`
	OptOutEmail bool    `json:"opt_out_email"`
}

type contactListResponse struct {
	Items []*model.Contact `json:"items"`
}

func (h *ContactHandler) CreateContact(ctx *xhttp.RequestCtx) {
	var req createContactRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	c, err := h.svc.Create(ctx, &model.Contact{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		Company:     req.Company,
		Categories:  req.Categories,
		OptOutSMS:   req.OptOutSMS,
		OptOutEmail: req.OptOutEmail,
	})
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, c)
}

func (h *ContactHandler) ListContacts(ctx *xhttp.RequestCtx) {
	var f model.ContactFilter

	if v := query(ctx, "categories"); v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if id, e := strconv.ParseInt(part, 10, 64); e == nil {
				f.CategoryIDs = append(f.CategoryIDs, id)
			}
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

	items, err := h.svc.ListActive(ctx, f)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, contactListResponse{Items: items})
}
