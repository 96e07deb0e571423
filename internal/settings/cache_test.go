package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
)

type countingStore struct {
	calls int
	value *model.APISettings
	err   error
}

func (s *countingStore) Get(context.Context) (*model.APISettings, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.value, nil
}

func TestCache_ServesWithinTTL(t *testing.T) {
	store := &countingStore{value: &model.APISettings{TwilioAccountSID: "AC0001"}}
	cache := NewCache(store, time.Minute)

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		s, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "AC0001", s.TwilioAccountSID)
	}
	assert.Equal(t, 1, store.calls)

	// within the TTL the store is untouched
	clock = clock.Add(59 * time.Second)
	_, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)

	// past the TTL the entry is refreshed
	clock = clock.Add(2 * time.Second)
	store.value = &model.APISettings{TwilioAccountSID: "AC0002"}
	s, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AC0002", s.TwilioAccountSID)
	assert.Equal(t, 2, store.calls)
}

func TestCache_InvalidateForcesRefresh(t *testing.T) {
	store := &countingStore{value: &model.APISettings{}}
	cache := NewCache(store, time.Minute)
	ctx := context.Background()

	_, err := cache.Get(ctx)
	require.NoError(t, err)

	cache.Invalidate()
	_, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}

func TestCache_ServesStaleOnRefreshError(t *testing.T) {
	store := &countingStore{value: &model.APISettings{TwilioAccountSID: "AC0001"}}
	cache := NewCache(store, time.Minute)

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	ctx := context.Background()
	_, err := cache.Get(ctx)
	require.NoError(t, err)

	clock = clock.Add(2 * time.Minute)
	store.err = errors.New("store down")
	s, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AC0001", s.TwilioAccountSID)
}

func TestCache_ErrorWithoutCachedEntry(t *testing.T) {
	store := &countingStore{err: errors.New("store down")}
	cache := NewCache(store, time.Minute)

	_, err := cache.Get(context.Background())
	assert.Error(t, err)
}
