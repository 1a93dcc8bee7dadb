package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/printforge/planner/core/metrics"
)

type recordSink struct {
	count int
}

func (r *recordSink) RecordPlanningRun(coremetrics.PlanningRunEvent) error {
	r.count++
	return nil
}

func (r *recordSink) RecordPublishAttempt(coremetrics.PublishAttemptEvent) error {
	r.count++
	return nil
}

func (r *recordSink) RecordPreloadAllocation(coremetrics.PreloadAllocationEvent) error {
	r.count++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordPlanningRun(coremetrics.PlanningRunEvent{}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := m.RecordPublishAttempt(coremetrics.PublishAttemptEvent{}); err != nil {
		t.Fatalf("record publish: %v", err)
	}
	if s1.count != 2 || s2.count != 2 {
		t.Fatalf("events not forwarded")
	}
}

func TestFactoryDefaultsToNop(t *testing.T) {
	sink, err := NewSink(Config{})
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	if _, ok := sink.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", sink)
	}
}

func TestPromSinkRecords(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	if err := sink.RecordPlanningRun(coremetrics.PlanningRunEvent{CyclesPlanned: 3}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := sink.RecordPreloadAllocation(coremetrics.PreloadAllocationEvent{
		Strategy: "demand", TotalNeeded: 5, TotalAllocated: 4, TotalDeferred: 1,
		GloballyConstrained: true,
	}); err != nil {
		t.Fatalf("record preload: %v", err)
	}
}
