package publish

import (
	"context"
	"sync"
	"time"
)

// MetricsCollector defines the interface for collecting publish metrics
type MetricsCollector interface {
	RecordEventPublished(eventType string, success bool, duration time.Duration)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (n *NoOpMetricsCollector) RecordEventPublished(eventType string, success bool, duration time.Duration) {
}

// MetricPublisher wraps an EventPublisher with metrics collection
type MetricPublisher struct {
	publisher EventPublisher
	metrics   MetricsCollector
}

func NewMetricPublisher(publisher EventPublisher, metrics MetricsCollector) *MetricPublisher {
	return &MetricPublisher{
		publisher: publisher,
		metrics:   metrics,
	}
}

func (p *MetricPublisher) Publish(ctx context.Context, event Event) error {
	start := time.Now()

	err := p.publisher.Publish(ctx, event)

	p.metrics.RecordEventPublished(event.EventType, err == nil, time.Since(start))
	return err
}

func (p *MetricPublisher) Close() error {
	return p.publisher.Close()
}

// Stats is a point-in-time view of CounterMetrics
type Stats struct {
	Published     uint64            `json:"published"`
	Failed        uint64            `json:"failed"`
	ByType        map[string]uint64 `json:"by_type"`
	TotalDuration time.Duration     `json:"total_duration_ns"`
}

// CounterMetrics keeps in-memory publish counters
type CounterMetrics struct {
	mu            sync.Mutex
	published     uint64
	failed        uint64
	byType        map[string]uint64
	totalDuration time.Duration
}

func NewCounterMetrics() *CounterMetrics {
	return &CounterMetrics{byType: make(map[string]uint64)}
}

func (m *CounterMetrics) RecordEventPublished(eventType string, success bool, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if success {
		m.published++
		m.byType[eventType]++
	} else {
		m.failed++
	}
	m.totalDuration += duration
}

func (m *CounterMetrics) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	byType := make(map[string]uint64, len(m.byType))
	for k, v := range m.byType {
		byType[k] = v
	}
	return Stats{
		Published:     m.published,
		Failed:        m.failed,
		ByType:        byType,
		TotalDuration: m.totalDuration,
	}
}
