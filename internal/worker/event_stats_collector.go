package worker

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/braymix/panda/internal/pkg/logger"
)

// EventCounter reports how many events are stored
type EventCounter interface {
	CountEvents(ctx context.Context) (int64, error)
}

// EventStatsCollector periodically publishes the stored-events gauge
type EventStatsCollector struct {
	counter  EventCounter
	gauge    prometheus.Gauge
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewEventStatsCollector creates a collector that sets gauge every interval
func NewEventStatsCollector(counter EventCounter, gauge prometheus.Gauge, interval time.Duration) *EventStatsCollector {
	return &EventStatsCollector{
		counter:  counter,
		gauge:    gauge,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start collects once immediately, then on every tick until ctx is done or Stop is called
func (c *EventStatsCollector) Start(ctx context.Context) {
	logger.Info("event stats collector started", zap.Duration("interval", c.interval))

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.doneCh)

	c.collect(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("event stats collector stopped (context cancelled)")
			return
		case <-c.stopCh:
			logger.Info("event stats collector stopped")
			return
		case <-ticker.C:
			c.collect(ctx)
		}
	}
}

// Stop ends the loop and waits for it to exit
func (c *EventStatsCollector) Stop() {
	close(c.stopCh)
	<-c.doneCh
}

func (c *EventStatsCollector) collect(ctx context.Context) {
	count, err := c.counter.CountEvents(ctx)
	if err != nil {
		logger.Error("failed to count events", zap.Error(err))
		return
	}
	c.gauge.Set(float64(count))
	logger.Debug("events counted", zap.Int64("count", count))
}
