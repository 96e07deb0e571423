package handlers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
	"github.com/SoHOSolatube/PD-App-sub000/internal/services"
	xhttp "github.com/SoHOSolatube/PD-App-sub000/pkg/http"
)

type MockBroadcastService struct {
	mock.Mock
}

func (m *MockBroadcastService) Create(ctx context.Context, p model.BroadcastCreateRequest) (*model.Broadcast, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Broadcast), args.Error(1)
}

func (m *MockBroadcastService) Schedule(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockBroadcastService) Get(ctx context.Context, id int64) (*model.Broadcast, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Broadcast), args.Error(1)
}

func (m *MockBroadcastService) List(ctx context.Context, f model.BroadcastFilter) ([]*model.Broadcast, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Broadcast), args.Get(1).(int64), args.Error(2)
}

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	return ctx
}

func TestBroadcastHandler_CreateBroadcast(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		svc := new(MockBroadcastService)
		handler := NewBroadcastHandler(svc)

		reqBody := createBroadcastRequest{
			Channel:    "sms",
			SMSContent: "Hi {{name}}",
			Audience:   model.AudienceTarget{Type: model.AudienceAll},
		}
		bodyBytes, _ := json.Marshal(reqBody)

		svc.On("Create", mock.Anything, mock.MatchedBy(func(p model.BroadcastCreateRequest) bool {
			return p.Channel == model.ChannelSMS && p.SMSContent == "Hi {{name}}"
		})).Return(&model.Broadcast{ID: 42, Status: model.BroadcastStatusDraft}, nil)

		ctx := setupTestContext("POST", "/api/v1/broadcasts", bodyBytes)
		handler.CreateBroadcast(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())

		var response model.Broadcast
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, int64(42), response.ID)
		svc.AssertExpectations(t)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		svc := new(MockBroadcastService)
		handler := NewBroadcastHandler(svc)

		ctx := setupTestContext("POST", "/api/v1/broadcasts", []byte("invalid json"))
		handler.CreateBroadcast(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("service validation error", func(t *testing.T) {
		svc := new(MockBroadcastService)
		handler := NewBroadcastHandler(svc)

		reqBody := createBroadcastRequest{Channel: "fax"}
		bodyBytes, _ := json.Marshal(reqBody)

		svc.On("Create", mock.Anything, mock.Anything).Return(nil, assert.AnError)

		ctx := setupTestContext("POST", "/api/v1/broadcasts", bodyBytes)
		handler.CreateBroadcast(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestBroadcastHandler_ScheduleBroadcast(t *testing.T) {
	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	bodyBytes, _ := json.Marshal(scheduleBroadcastRequest{ScheduledAt: at})

	t.Run("successful schedule", func(t *testing.T) {
		svc := new(MockBroadcastService)
		handler := NewBroadcastHandler(svc)

		svc.On("Schedule", mock.Anything, int64(42), at).Return(nil)

		ctx := setupTestContext("POST", "/api/v1/broadcasts/42/schedule", bodyBytes)
		ctx.SetUserValue("id", "42")
		handler.ScheduleBroadcast(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("unknown broadcast", func(t *testing.T) {
		svc := new(MockBroadcastService)
		handler := NewBroadcastHandler(svc)

		svc.On("Schedule", mock.Anything, int64(99), at).Return(services.ErrNotFound)

		ctx := setupTestContext("POST", "/api/v1/broadcasts/99/schedule", bodyBytes)
		ctx.SetUserValue("id", "99")
		handler.ScheduleBroadcast(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
	})

	t.Run("bad id", func(t *testing.T) {
		svc := new(MockBroadcastService)
		handler := NewBroadcastHandler(svc)

		ctx := setupTestContext("POST", "/api/v1/broadcasts/abc/schedule", bodyBytes)
		ctx.SetUserValue("id", "abc")
		handler.ScheduleBroadcast(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBroadcastHandler_ListBroadcasts(t *testing.T) {
	svc := new(MockBroadcastService)
	handler := NewBroadcastHandler(svc)

	svc.On("List", mock.Anything, mock.MatchedBy(func(f model.BroadcastFilter) bool {
		return len(f.Statuses) == 2 &&
			f.Statuses[0] == model.BroadcastStatusScheduled &&
			f.Statuses[1] == model.BroadcastStatusSent &&
			f.Limit == 10 && f.Desc
	})).Return([]*model.Broadcast{{ID: 1}}, int64(1), nil)

	ctx := setupTestContext("GET", "/api/v1/broadcasts?status=scheduled,sent&limit=10&order=desc", nil)
	handler.ListBroadcasts(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())

	var response broadcastListResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
	assert.Equal(t, int64(1), response.Total)
	assert.Len(t, response.Items, 1)
	svc.AssertExpectations(t)
}
