package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockEventCounter is a mock of EventCounter
type MockEventCounter struct {
	mock.Mock
}

func (m *MockEventCounter) CountEvents(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func newGauge() prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Name: "events_stored_test"})
}

func TestNewEventStatsCollector(t *testing.T) {
	collector := NewEventStatsCollector(new(MockEventCounter), newGauge(), time.Minute)

	assert.NotNil(t, collector)
	assert.Equal(t, time.Minute, collector.interval)
	assert.NotNil(t, collector.stopCh)
	assert.NotNil(t, collector.doneCh)
}

func TestEventStatsCollector_Collect(t *testing.T) {
	t.Run("sets the gauge", func(t *testing.T) {
		counter := new(MockEventCounter)
		counter.On("CountEvents", mock.Anything).Return(int64(42), nil)
		gauge := newGauge()
		collector := NewEventStatsCollector(counter, gauge, time.Minute)

		collector.collect(context.Background())

		assert.Equal(t, 42.0, testutil.ToFloat64(gauge))
		counter.AssertExpectations(t)
	})

	t.Run("keeps the last value on error", func(t *testing.T) {
		counter := new(MockEventCounter)
		counter.On("CountEvents", mock.Anything).Return(int64(0), errors.New("db down"))
		gauge := newGauge()
		gauge.Set(7)
		collector := NewEventStatsCollector(counter, gauge, time.Minute)

		collector.collect(context.Background())

		assert.Equal(t, 7.0, testutil.ToFloat64(gauge))
	})
}

func TestEventStatsCollector_StartStop(t *testing.T) {
	var calls atomic.Int32
	counter := new(MockEventCounter)
	counter.On("CountEvents", mock.Anything).
		Run(func(mock.Arguments) { calls.Add(1) }).
		Return(int64(3), nil)
	gauge := newGauge()
	collector := NewEventStatsCollector(counter, gauge, 10*time.Millisecond)

	go collector.Start(context.Background())

	assert.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	collector.Stop()
	assert.Equal(t, 3.0, testutil.ToFloat64(gauge))
}

func TestEventStatsCollector_ContextCancel(t *testing.T) {
	counter := new(MockEventCounter)
	counter.On("CountEvents", mock.Anything).Return(int64(1), nil)
	collector := NewEventStatsCollector(counter, newGauge(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		collector.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop after context cancel")
	}
}
