package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/printforge/planner/core/metrics"
	"github.com/printforge/planner/infra/logger"
)

// InfluxSink writes planning events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordPlanningRun writes a planning-pass summary point.
func (s *InfluxSink) RecordPlanningRun(ev coremetrics.PlanningRunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("planning_run").
		AddTag("component", "planner").
		AddField("duration_ms", ev.Duration.Milliseconds()).
		AddField("projects", ev.Projects).
		AddField("cycles_planned", ev.CyclesPlanned).
		AddField("cycles_skipped", ev.CyclesSkipped).
		AddField("nights_dropped", ev.NightsDropped).
		SetTime(ev.StartedAt)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPublishAttempt writes one publish attempt.
func (s *InfluxSink) RecordPublishAttempt(ev coremetrics.PublishAttemptEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("plan_publish").
		AddTag("success", strconv.FormatBool(ev.Success)).
		AddTag("deferred", strconv.FormatBool(ev.Deferred)).
		AddTag("component", "planversion").
		AddField("version", ev.Version).
		AddField("cycles_created", ev.CyclesCreated).
		AddField("cycles_deleted", ev.CyclesDeleted).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPreloadAllocation writes the outcome of a preload pass.
func (s *InfluxSink) RecordPreloadAllocation(ev coremetrics.PreloadAllocationEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("preload_allocation").
		AddTag("strategy", ev.Strategy).
		AddTag("constrained", strconv.FormatBool(ev.GloballyConstrained)).
		AddTag("component", "preload").
		AddField("needed", ev.TotalNeeded).
		AddField("allocated", ev.TotalAllocated).
		AddField("deferred", ev.TotalDeferred).
		SetTime(ev.Date)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }
