package publish

import (
	"context"
	"errors"
	"testing"
)

type stubPublisher struct {
	err    error
	events []Event
	closed bool
}

func (s *stubPublisher) Publish(ctx context.Context, event Event) error {
	s.events = append(s.events, event)
	return s.err
}

func (s *stubPublisher) Close() error {
	s.closed = true
	return nil
}

func TestMetricPublisherCountsOutcomes(t *testing.T) {
	stub := &stubPublisher{}
	metrics := NewCounterMetrics()
	p := NewMetricPublisher(stub, metrics)

	if err := p.Publish(context.Background(), Event{ID: "1", EventType: "roundStart"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := p.Publish(context.Background(), Event{ID: "2", EventType: "roundStart"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	stub.err = errors.New("boom")
	if err := p.Publish(context.Background(), Event{ID: "3", EventType: "roundEnd"}); err == nil {
		t.Fatal("expected error to pass through")
	}

	stats := metrics.Stats()
	if stats.Published != 2 || stats.Failed != 1 {
		t.Fatalf("expected 2 published and 1 failed, got %+v", stats)
	}
	if stats.ByType["roundStart"] != 2 || stats.ByType["roundEnd"] != 0 {
		t.Fatalf("unexpected per-type counts %v", stats.ByType)
	}
	if len(stub.events) != 3 {
		t.Fatalf("expected 3 delegated events, got %d", len(stub.events))
	}

	if err := p.Close(); err != nil || !stub.closed {
		t.Fatalf("expected close to be delegated")
	}
}

func TestNoOpMetricsCollector(t *testing.T) {
	p := NewMetricPublisher(NewLogPublisher(), &NoOpMetricsCollector{})
	if err := p.Publish(context.Background(), Event{ID: "1", EventType: "gameOver"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func TestSubjectFor(t *testing.T) {
	if got := subjectFor("game.events", "roundEnd"); got != "game.events.roundEnd" {
		t.Fatalf("unexpected subject %q", got)
	}
}
