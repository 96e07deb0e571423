package dispatcher

import (
	"errors"
	"fmt"
	"time"

	"github.com/SoHOSolatube/PD-App-sub000/pkg/logger"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/redis"
)

var (
	ErrStepAlreadyProcessed = errors.New("notification step already processed")
	ErrStepLocked           = errors.New("notification step locked by another worker")
)

type StepGuardConfig struct {
	LockTTL        time.Duration
	FiredTTL       time.Duration
	LockKeyPrefix  string
	FiredKeyPrefix string
}

func DefaultStepGuardConfig() StepGuardConfig {
	return StepGuardConfig{
		LockTTL:        30 * time.Second,
		FiredTTL:       7 * 24 * time.Hour,
		LockKeyPrefix:  "step:lock:",
		FiredKeyPrefix: "step:fired:",
	}
}

// StepGuard is the fast cross-worker guard for notification steps. The
// fired flag on the step itself is the durable record; the guard keeps
// two sequencer replicas from racing into the same step within a tick.
type StepGuard struct {
	redis  redis.RedisAdapter
	config StepGuardConfig
}

func NewStepGuard(redisAdapter redis.RedisAdapter, config StepGuardConfig) *StepGuard {
	return &StepGuard{
		redis:  redisAdapter,
		config: config,
	}
}

func stepKey(prefix string, eventID int64, stepID string) string {
	return fmt.Sprintf("%s%d:%s", prefix, eventID, stepID)
}

// Acquire claims a step for firing. ErrStepAlreadyProcessed means
// another worker finished it; ErrStepLocked means one is working on it
// now.
func (g *StepGuard) Acquire(eventID int64, stepID string) error {
	firedKey := stepKey(g.config.FiredKeyPrefix, eventID, stepID)
	exists, err := g.redis.Exist(firedKey)
	if err != nil {
		// A failed check falls through to the lock; the store-level
		// fired flag still catches duplicates.
		logger.Warn("fired marker check failed", "event_id", eventID, "step_id", stepID, "error", err)
	} else if exists > 0 {
		return ErrStepAlreadyProcessed
	}

	lockKey := stepKey(g.config.LockKeyPrefix, eventID, stepID)
	lockValue := []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
	acquired, err := g.redis.SetNX(lockKey, lockValue, g.config.LockTTL)
	if err != nil {
		return fmt.Errorf("acquire step lock: %w", err)
	}
	if !acquired {
		return ErrStepLocked
	}
	return nil
}

// MarkFired records the long-term marker and drops the lock.
func (g *StepGuard) MarkFired(eventID int64, stepID string) {
	firedKey := stepKey(g.config.FiredKeyPrefix, eventID, stepID)
	if err := g.redis.Set(firedKey, []byte("1"), g.config.FiredTTL); err != nil {
		logger.Error("failed to set fired marker", "event_id", eventID, "step_id", stepID, "error", err)
	}
	g.Release(eventID, stepID)
}

// Release drops the lock so a failed step can be retried next tick.
func (g *StepGuard) Release(eventID int64, stepID string) {
	lockKey := stepKey(g.config.LockKeyPrefix, eventID, stepID)
	if err := g.redis.Del(lockKey); err != nil {
		logger.Warn("failed to release step lock", "event_id", eventID, "step_id", stepID, "error", err)
	}
}
