package dispatcher

import (
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoHOSolatube/PD-App-sub000/pkg/redis"
)

type mockRedisAdapter struct {
	data map[string][]byte
	ttls map[string]time.Time
}

func newMockRedisAdapter() *mockRedisAdapter {
	return &mockRedisAdapter{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Time),
	}
}

func (m *mockRedisAdapter) Set(key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	if ttl > 0 {
		m.ttls[key] = time.Now().Add(ttl)
	}
	return nil
}

func (m *mockRedisAdapter) SetNX(key string, value []byte, ttl time.Duration) (bool, error) {
	if _, exists := m.data[key]; exists {
		return false, nil
	}
	return true, m.Set(key, value, ttl)
}

func (m *mockRedisAdapter) Get(key string) ([]byte, error) {
	if ttl, ok := m.ttls[key]; ok && time.Now().After(ttl) {
		delete(m.data, key)
		delete(m.ttls, key)
		return nil, redis.NilError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, redis.NilError
}

func (m *mockRedisAdapter) Del(key string) error {
	delete(m.data, key)
	delete(m.ttls, key)
	return nil
}

func (m *mockRedisAdapter) Exist(key string) (int64, error) {
	if _, err := m.Get(key); err != nil {
		return 0, nil
	}
	return 1, nil
}

func (m *mockRedisAdapter) Client() goredis.UniversalClient { return nil }

func TestStepGuard_AcquireMarkRelease(t *testing.T) {
	adapter := newMockRedisAdapter()
	guard := NewStepGuard(adapter, DefaultStepGuardConfig())

	require.NoError(t, guard.Acquire(7, "step-1"))

	// a second worker cannot take the lock
	assert.ErrorIs(t, guard.Acquire(7, "step-1"), ErrStepLocked)

	// other steps are unaffected
	require.NoError(t, guard.Acquire(7, "step-2"))

	guard.MarkFired(7, "step-1")

	// fired marker blocks all later acquisitions
	assert.ErrorIs(t, guard.Acquire(7, "step-1"), ErrStepAlreadyProcessed)
}

func TestStepGuard_ReleaseAllowsRetry(t *testing.T) {
	adapter := newMockRedisAdapter()
	guard := NewStepGuard(adapter, DefaultStepGuardConfig())

	require.NoError(t, guard.Acquire(7, "step-1"))
	guard.Release(7, "step-1")

	// no fired marker was set, so the step can be claimed again
	assert.NoError(t, guard.Acquire(7, "step-1"))
}

func TestStepGuard_KeysAreScopedPerEvent(t *testing.T) {
	adapter := newMockRedisAdapter()
	guard := NewStepGuard(adapter, DefaultStepGuardConfig())

	require.NoError(t, guard.Acquire(7, "step-1"))
	guard.MarkFired(7, "step-1")

	// same step id on another event is independent
	assert.NoError(t, guard.Acquire(8, "step-1"))
}
