package metrics

import coremetrics "github.com/printforge/planner/core/metrics"

// MultiSink fans planning events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPlanningRun forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordPlanningRun(ev coremetrics.PlanningRunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordPlanningRun(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordPublishAttempt forwards publish attempts.
func (m *MultiSink) RecordPublishAttempt(ev coremetrics.PublishAttemptEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordPublishAttempt(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordPreloadAllocation forwards preload outcomes.
func (m *MultiSink) RecordPreloadAllocation(ev coremetrics.PreloadAllocationEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordPreloadAllocation(ev); err != nil {
			return err
		}
	}
	return nil
}
