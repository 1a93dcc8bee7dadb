package metrics

import "time"

// PlanningRunEvent summarizes one full planning pass.
type PlanningRunEvent struct {
	StartedAt     time.Time
	Duration      time.Duration
	Projects      int
	CyclesPlanned int
	CyclesSkipped int
	NightsDropped int
}

// PublishAttemptEvent records one plan publish attempt against the store.
type PublishAttemptEvent struct {
	Success       bool
	Deferred      bool
	Version       int64
	CyclesCreated int
	CyclesDeleted int
	Time          time.Time
}

// PreloadAllocationEvent records the outcome of a night preload allocation.
type PreloadAllocationEvent struct {
	Date                time.Time
	Strategy            string
	TotalNeeded         int
	TotalAllocated      int
	TotalDeferred       int
	GloballyConstrained bool
}

// MetricsSink records planning events for observability purposes.
type MetricsSink interface {
	RecordPlanningRun(ev PlanningRunEvent) error
	RecordPublishAttempt(ev PublishAttemptEvent) error
	RecordPreloadAllocation(ev PreloadAllocationEvent) error
}

// NopSink ignores all events.
type NopSink struct{}

func (NopSink) RecordPlanningRun(PlanningRunEvent) error { return nil }
func (NopSink) RecordPublishAttempt(PublishAttemptEvent) error { return nil }
func (NopSink) RecordPreloadAllocation(PreloadAllocationEvent) error { return nil }
