package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/braymix/panda/internal/config"
	"github.com/braymix/panda/internal/domain/event"
	"github.com/braymix/panda/internal/pkg/logger"
	"github.com/braymix/panda/internal/pkg/metrics"
)

// EventLock serializes updates and deletes of the same event across
// application instances.
type EventLock struct {
	manager    *LockManager
	ttl        time.Duration
	retries    int
	retryDelay time.Duration
	metrics    *metrics.Metrics
}

// NewEventLock creates an EventLock. m may be nil.
func NewEventLock(manager *LockManager, cfg *config.RedisConfig, m *metrics.Metrics) *EventLock {
	return &EventLock{
		manager:    manager,
		ttl:        cfg.LockTTL,
		retries:    cfg.LockRetries,
		retryDelay: cfg.LockRetryDelay,
		metrics:    m,
	}
}

// Lock blocks until the event's lock is held or the retries run out, in
// which case it returns event.ErrEventLocked.
func (l *EventLock) Lock(ctx context.Context, eventID string) (func(), error) {
	start := time.Now()
	lock, err := l.manager.AcquireLockWithRetry(ctx, "event:"+eventID, l.ttl, l.retries, l.retryDelay)
	if err != nil {
		l.observe("acquire", "failed", start)
		if errors.Is(err, ErrLockNotAcquired) {
			return nil, fmt.Errorf("%w: %s", event.ErrEventLocked, eventID)
		}
		return nil, err
	}
	l.observe("acquire", "success", start)

	// release must still run when the request context is already cancelled
	releaseCtx := context.WithoutCancel(ctx)
	return func() {
		start := time.Now()
		if err := lock.Release(releaseCtx); err != nil {
			l.observe("release", "failed", start)
			logger.Warn("failed to release event lock",
				zap.String("event_id", eventID),
				zap.Error(err),
			)
			return
		}
		l.observe("release", "success", start)
	}, nil
}

func (l *EventLock) observe(operation, status string, start time.Time) {
	if l.metrics == nil {
		return
	}
	l.metrics.MutationLockDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
}
