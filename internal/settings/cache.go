// Package settings caches the stored provider credentials so delivery
// cycles do not hit the database for every message.
package settings

import (
	"context"
	"sync"
	"time"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/logger"
)

const DefaultTTL = 60 * time.Second

type Store interface {
	Get(ctx context.Context) (*model.APISettings, error)
}

// Cache is a single-entry TTL cache over the settings store. A stale
// entry is served when a refresh fails, so a transient store error
// never turns configured providers into stubs mid-cycle.
type Cache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	cached    *model.APISettings
	fetchedAt time.Time
}

func NewCache(store Store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *Cache) Get(ctx context.Context) (*model.APISettings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.cached, nil
	}

	fresh, err := c.store.Get(ctx)
	if err != nil {
		if c.cached != nil {
			logger.Warn("settings refresh failed, serving stale entry", "error", err)
			return c.cached, nil
		}
		return nil, err
	}

	c.cached = fresh
	c.fetchedAt = c.now()
	return c.cached, nil
}

// Invalidate drops the cached entry. Called after a settings update so
// the next cycle sees the new credentials immediately.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = nil
}
