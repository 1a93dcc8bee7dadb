package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/printforge/planner/core/metrics"
)

// PromSink records planning events in Prometheus metrics.
type PromSink struct {
	runs          prometheus.Counter
	runDuration   prometheus.Histogram
	cyclesPlanned prometheus.Counter
	cyclesSkipped prometheus.Counter
	nightsDropped prometheus.Counter
	publishes     *prometheus.CounterVec
	preloadPlates *prometheus.GaugeVec
	constrained   prometheus.Counter
}

// NewPromSink registers planning metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planning_runs_total",
			Help: "Total number of planning passes executed",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "planning_run_duration_seconds",
			Help:    "Wall time of one full planning pass",
			Buckets: prometheus.DefBuckets,
		}),
		cyclesPlanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planning_cycles_planned_total",
			Help: "Cycles emitted by planning passes",
		}),
		cyclesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planning_cycles_skipped_total",
			Help: "Candidate cycles removed during validation",
		}),
		nightsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planning_nights_dropped_total",
			Help: "Printer-nights dropped by the filament gate",
		}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plan_publish_attempts_total",
			Help: "Plan publish attempts against the canonical store",
		}, []string{"success", "deferred"}),
		preloadPlates: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "preload_plates",
			Help: "Plates needed, allocated and deferred by the last preload pass",
		}, []string{"outcome", "strategy"}),
		constrained: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "preload_globally_constrained_total",
			Help: "Preload passes where demand exceeded the global plate pool",
		}),
	}
	for _, c := range []prometheus.Collector{
		s.runs, s.runDuration, s.cyclesPlanned, s.cyclesSkipped,
		s.nightsDropped, s.publishes, s.preloadPlates, s.constrained,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// RecordPlanningRun updates counters for one planning pass.
func (s *PromSink) RecordPlanningRun(ev coremetrics.PlanningRunEvent) error {
	s.runs.Inc()
	s.runDuration.Observe(ev.Duration.Seconds())
	s.cyclesPlanned.Add(float64(ev.CyclesPlanned))
	s.cyclesSkipped.Add(float64(ev.CyclesSkipped))
	s.nightsDropped.Add(float64(ev.NightsDropped))
	return nil
}

// RecordPublishAttempt counts a publish attempt by outcome.
func (s *PromSink) RecordPublishAttempt(ev coremetrics.PublishAttemptEvent) error {
	s.publishes.WithLabelValues(
		strconv.FormatBool(ev.Success), strconv.FormatBool(ev.Deferred)).Inc()
	return nil
}

// RecordPreloadAllocation exposes the latest preload outcome as gauges.
func (s *PromSink) RecordPreloadAllocation(ev coremetrics.PreloadAllocationEvent) error {
	s.preloadPlates.WithLabelValues("needed", ev.Strategy).Set(float64(ev.TotalNeeded))
	s.preloadPlates.WithLabelValues("allocated", ev.Strategy).Set(float64(ev.TotalAllocated))
	s.preloadPlates.WithLabelValues("deferred", ev.Strategy).Set(float64(ev.TotalDeferred))
	if ev.GloballyConstrained {
		s.constrained.Inc()
	}
	return nil
}
