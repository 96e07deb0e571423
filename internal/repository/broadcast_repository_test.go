package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
)

func newScheduledBroadcast(at time.Time) *model.Broadcast {
	return &model.Broadcast{
		Channel:     model.ChannelSMS,
		Status:      model.BroadcastStatusScheduled,
		SMSContent:  "Hi {{name}}",
		Audience:    model.AudienceTarget{Type: model.AudienceAll},
		ScheduledAt: &at,
	}
}

func TestBroadcastRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBroadcastRepository(db.DB)
	ctx := context.Background()

	at := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	created, err := repo.Create(ctx, newScheduledBroadcast(at))
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ChannelSMS, got.Channel)
	assert.Equal(t, model.BroadcastStatusScheduled, got.Status)
	assert.Equal(t, model.AudienceAll, got.Audience.Type)
	require.NotNil(t, got.ScheduledAt)
	assert.Equal(t, at.Unix(), got.ScheduledAt.Unix())

	_, err = repo.Get(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBroadcastRepository_ListDue(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBroadcastRepository(db.DB)
	ctx := context.Background()

	now := time.Now().UTC()

	due, err := repo.Create(ctx, newScheduledBroadcast(now.Add(-time.Minute)))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newScheduledBroadcast(now.Add(time.Hour)))
	require.NoError(t, err)

	draft := newScheduledBroadcast(now.Add(-time.Minute))
	draft.Status = model.BroadcastStatusDraft
	_, err = repo.Create(ctx, draft)
	require.NoError(t, err)

	items, err := repo.ListDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, due.ID, items[0].ID)
}

func TestBroadcastRepository_ClaimDue(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBroadcastRepository(db.DB)
	ctx := context.Background()

	now := time.Now().UTC()
	b1, err := repo.Create(ctx, newScheduledBroadcast(now.Add(-time.Minute)))
	require.NoError(t, err)
	b2, err := repo.Create(ctx, newScheduledBroadcast(now.Add(-2*time.Minute)))
	require.NoError(t, err)

	claimed, err := repo.ClaimDue(ctx, []int64{b1.ID, b2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), claimed)

	got, err := repo.Get(ctx, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BroadcastStatusSending, got.Status)

	// a second runner claiming the same ids gets nothing
	claimed, err = repo.ClaimDue(ctx, []int64{b1.ID, b2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), claimed)

	claimed, err = repo.ClaimDue(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), claimed)
}

func TestBroadcastRepository_MarkSentAndFailed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBroadcastRepository(db.DB)
	ctx := context.Background()

	now := time.Now().UTC()
	b1, err := repo.Create(ctx, newScheduledBroadcast(now.Add(-time.Minute)))
	require.NoError(t, err)
	b2, err := repo.Create(ctx, newScheduledBroadcast(now.Add(-time.Minute)))
	require.NoError(t, err)

	_, err = repo.ClaimDue(ctx, []int64{b1.ID, b2.ID})
	require.NoError(t, err)

	analytics := model.DeliveryAnalytics{SMSDelivered: 3, SMSTotal: 4}
	sentAt := now.Truncate(time.Second)
	require.NoError(t, repo.MarkSent(ctx, b1.ID, analytics, sentAt))
	require.NoError(t, repo.MarkFailed(ctx, b2.ID))

	got, err := repo.Get(ctx, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BroadcastStatusSent, got.Status)
	assert.Equal(t, analytics, got.Analytics)
	require.NotNil(t, got.SentAt)
	assert.Equal(t, sentAt.Unix(), got.SentAt.Unix())

	got, err = repo.Get(ctx, b2.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BroadcastStatusFailed, got.Status)

	// terminal rows are not moved again
	require.NoError(t, repo.MarkFailed(ctx, b1.ID))
	got, err = repo.Get(ctx, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BroadcastStatusSent, got.Status)
}

func TestBroadcastRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBroadcastRepository(db.DB)
	ctx := context.Background()

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, newScheduledBroadcast(now.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}
	draft := newScheduledBroadcast(now)
	draft.Status = model.BroadcastStatusDraft
	_, err := repo.Create(ctx, draft)
	require.NoError(t, err)

	items, total, err := repo.List(ctx, model.BroadcastFilter{
		Statuses: []model.BroadcastStatus{model.BroadcastStatusScheduled},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 3)

	items, total, err = repo.List(ctx, model.BroadcastFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, items, 2)
}

func TestBroadcastRepository_UpdateScheduledAt(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBroadcastRepository(db.DB)
	ctx := context.Background()

	draft := newScheduledBroadcast(time.Now())
	draft.Status = model.BroadcastStatusDraft
	draft.ScheduledAt = nil
	created, err := repo.Create(ctx, draft)
	require.NoError(t, err)

	at := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateScheduledAt(ctx, created.ID, at))

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BroadcastStatusScheduled, got.Status)
	require.NotNil(t, got.ScheduledAt)
	assert.Equal(t, at.Unix(), got.ScheduledAt.Unix())

	err = repo.UpdateScheduledAt(ctx, 777, at)
	assert.ErrorIs(t, err, ErrNotFound)
}
