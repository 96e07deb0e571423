package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
	"github.com/SoHOSolatube/PD-App-sub000/internal/repository"
)

type MockBroadcastRepository struct {
	mock.Mock
}

func (m *MockBroadcastRepository) Create(ctx context.Context, b *model.Broadcast) (*model.Broadcast, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Broadcast), args.Error(1)
}

func (m *MockBroadcastRepository) Get(ctx context.Context, id int64) (*model.Broadcast, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Broadcast), args.Error(1)
}

func (m *MockBroadcastRepository) List(ctx context.Context, f model.BroadcastFilter) ([]*model.Broadcast, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Broadcast), args.Get(1).(int64), args.Error(2)
}

func (m *MockBroadcastRepository) UpdateScheduledAt(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func validRequest() model.BroadcastCreateRequest {
	return model.BroadcastCreateRequest{
		Channel:    model.ChannelSMS,
		SMSContent: "Hi {{name}}",
		Audience:   model.AudienceTarget{Type: model.AudienceAll},
	}
}

func TestBroadcastService_CreateDraft(t *testing.T) {
	repo := new(MockBroadcastRepository)
	service := NewBroadcastService(repo)
	service.now = fixedNow
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(b *model.Broadcast) bool {
		return b.Status == model.BroadcastStatusDraft && b.ScheduledAt == nil
	})).Return(&model.Broadcast{ID: 1}, nil)

	created, err := service.Create(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	repo.AssertExpectations(t)
}

func TestBroadcastService_CreateScheduled(t *testing.T) {
	repo := new(MockBroadcastRepository)
	service := NewBroadcastService(repo)
	service.now = fixedNow
	ctx := context.Background()

	at := fixedNow().Add(time.Hour)
	req := validRequest()
	req.ScheduledAt = &at

	repo.On("Create", ctx, mock.MatchedBy(func(b *model.Broadcast) bool {
		return b.Status == model.BroadcastStatusScheduled && b.ScheduledAt.Equal(at)
	})).Return(&model.Broadcast{ID: 2}, nil)

	_, err := service.Create(ctx, req)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestBroadcastService_CreateValidation(t *testing.T) {
	repo := new(MockBroadcastRepository)
	service := NewBroadcastService(repo)
	service.now = fixedNow
	ctx := context.Background()

	t.Run("bad channel", func(t *testing.T) {
		req := validRequest()
		req.Channel = "fax"
		_, err := service.Create(ctx, req)
		assert.Error(t, err)
	})

	t.Run("sms channel without sms content", func(t *testing.T) {
		req := validRequest()
		req.SMSContent = ""
		_, err := service.Create(ctx, req)
		assert.Error(t, err)
	})

	t.Run("email channel without subject", func(t *testing.T) {
		req := model.BroadcastCreateRequest{
			Channel:   model.ChannelEmail,
			EmailHTML: "<p>Hi</p>",
			Audience:  model.AudienceTarget{Type: model.AudienceAll},
		}
		_, err := service.Create(ctx, req)
		assert.ErrorIs(t, err, ErrSubjectMissing)
	})

	t.Run("event audience without event id", func(t *testing.T) {
		req := validRequest()
		req.Audience = model.AudienceTarget{Type: model.AudienceEventRegistered}
		_, err := service.Create(ctx, req)
		assert.Error(t, err)
	})

	t.Run("scheduled in the past", func(t *testing.T) {
		at := fixedNow().Add(-time.Minute)
		req := validRequest()
		req.ScheduledAt = &at
		_, err := service.Create(ctx, req)
		assert.ErrorIs(t, err, ErrPastSchedule)
	})

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBroadcastService_Schedule(t *testing.T) {
	repo := new(MockBroadcastRepository)
	service := NewBroadcastService(repo)
	service.now = fixedNow
	ctx := context.Background()

	at := fixedNow().Add(2 * time.Hour)
	repo.On("UpdateScheduledAt", ctx, int64(5), at).Return(nil)
	require.NoError(t, service.Schedule(ctx, 5, at))

	repo.On("UpdateScheduledAt", ctx, int64(6), at).Return(repository.ErrNotFound)
	assert.ErrorIs(t, service.Schedule(ctx, 6, at), ErrNotFound)

	assert.ErrorIs(t, service.Schedule(ctx, 5, fixedNow().Add(-time.Hour)), ErrPastSchedule)
}
