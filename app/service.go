// Package app wires the planning engine together: snapshot, calendar,
// allocators, version service, metric sinks and the decision-event consumer.
package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/printforge/planner/config"
	"github.com/printforge/planner/core/calendar"
	"github.com/printforge/planner/core/events"
	"github.com/printforge/planner/core/material"
	coremetrics "github.com/printforge/planner/core/metrics"
	"github.com/printforge/planner/core/model"
	"github.com/printforge/planner/core/planner"
	"github.com/printforge/planner/core/planversion"
	"github.com/printforge/planner/core/preload"
	"github.com/printforge/planner/infra/logger"
	"github.com/printforge/planner/infra/metrics"
	"github.com/printforge/planner/infra/notify"
	"github.com/printforge/planner/infra/snapshot"
	"github.com/printforge/planner/infra/store"
	"github.com/printforge/planner/internal/eventbus"
)

// updatePollInterval paces the staleness check in serve mode.
const updatePollInterval = 30 * time.Second

// PlanResult bundles the output of one full planning pass.
type PlanResult struct {
	PhaseA planner.PhaseAResult
	PhaseB planner.PhaseBResult
}

// Service orchestrates the planning engine over one snapshot.
type Service struct {
	cfg       *config.Config
	snap      *snapshot.Snapshot
	cal       *calendar.Calculator
	planner   *planner.Planner
	preloader *preload.Allocator
	versions  *planversion.Service
	sink      coremetrics.MetricsSink
	notifier  notify.Notifier
	bus       *eventbus.Bus
	log       logger.Logger

	storeCloser interface{ Close() error }
	consumerDn  chan struct{}
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	snap, err := snapshot.Load(cfg.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	sink, err := metrics.NewSink(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	var planStore planversion.PlanStore
	var closer interface{ Close() error }
	switch cfg.Store.Backend {
	case "memory":
		planStore = store.NewMemoryStore()
	default:
		s, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("plan store: %w", err)
		}
		planStore = s
		closer = s
	}

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.Notify.Enabled {
		n, err := notify.NewMQTTNotifier(cfg.Notify)
		if err != nil {
			return nil, fmt.Errorf("notifier: %w", err)
		}
		notifier = n
	}

	bus := eventbus.New()
	cal := calendar.New(snap.Settings.Week, snap.Settings.AfterHours)
	svc := &Service{
		cfg:         cfg,
		snap:        snap,
		cal:         cal,
		planner:     planner.New(cal, logger.New("planner"), bus),
		preloader:   preload.NewAllocator(logger.New("preload"), bus, preload.NewCache()),
		versions:    planversion.NewService(planStore, logger.New("planversion"), bus),
		sink:        sink,
		notifier:    notifier,
		bus:         bus,
		log:         logg,
		storeCloser: closer,
		consumerDn:  make(chan struct{}),
	}
	go svc.consumeEvents(bus.Subscribe())
	return svc, nil
}

// consumeEvents renders every decision event as one structured log line.
// This is the audit trail of the engine; nothing in core writes to the
// console directly.
func (s *Service) consumeEvents(ch <-chan eventbus.Event) {
	defer close(s.consumerDn)
	log := logger.New("decisions")
	for ev := range ch {
		switch e := ev.(type) {
		case events.DeadlineRiskEvent:
			log.Infof("deadline risk: project=%s risk=%s margin=%.1fh", e.ProjectID, e.Risk, e.MarginHours)
		case events.CycleSkippedEvent:
			log.Infof("cycle skipped: cycle=%s project=%s printer=%s reason=%s", e.CycleID, e.ProjectID, e.PrinterID, e.Reason)
		case events.NightDroppedEvent:
			log.Warnf("night dropped: printer=%s night=%s color=%s short=%.0fg cycles=%d",
				e.PrinterID, e.Night.Format("2006-01-02"), e.Color, e.ShortfallGrams, e.Cycles)
		case events.PreloadDecisionEvent:
			log.Infof("preload: printer=%s date=%s requested=%d allocated=%d deferred=%d strategy=%s",
				e.PrinterID, e.Date.Format("2006-01-02"), e.Requested, e.Allocated, e.Deferred, e.Strategy)
		case events.PublishEvent:
			if e.Err != nil {
				log.Warnf("publish %s: %v", e.Action, e.Err)
			} else {
				log.Infof("publish %s: version=%d created=%d deleted=%d", e.Action, e.Version, e.CyclesCreated, e.CyclesDeleted)
			}
		case events.PlanRefreshedEvent:
			log.Infof("plan refreshed: version=%d cycles=%d", e.Version, e.CyclesLoaded)
		}
	}
}

// PlanProduction runs a full planning pass for the business day containing
// now: Phase A risk classification, candidate generation, Phase B pruning.
func (s *Service) PlanProduction(now time.Time) (*PlanResult, error) {
	started := time.Now()

	phaseA := s.planner.PlanDeadlines(now, s.snap.Projects, s.snap.Presets, len(s.snap.Printers))

	slots, err := s.buildSlots(now)
	if err != nil {
		return nil, err
	}
	candidates := s.generateCandidates(phaseA.Allocations, slots)
	phaseB := s.planner.ValidateUtilization(phaseA.Allocations, slots, candidates, s.snap.Inventory)

	if err := s.sink.RecordPlanningRun(coremetrics.PlanningRunEvent{
		StartedAt:     started,
		Duration:      time.Since(started),
		Projects:      len(s.snap.Projects),
		CyclesPlanned: len(phaseB.Cycles),
		CyclesSkipped: len(phaseB.SkippedNights),
		NightsDropped: countNightsDropped(phaseB),
	}); err != nil {
		s.log.Warnf("record planning run: %v", err)
	}
	return &PlanResult{PhaseA: phaseA, PhaseB: phaseB}, nil
}

// buildSlots positions one time-slot cursor per printer on the business day
// containing now, or on the next workday when now falls outside any shift.
func (s *Service) buildSlots(now time.Time) (map[string]*planner.PrinterTimeSlot, error) {
	day, ok := s.cal.BusinessDayOf(now)
	if !ok {
		return nil, fmt.Errorf("no workday within %d days of %s", calendar.DefaultMaxDaysAhead, now.Format("2006-01-02"))
	}
	start, end, ok := s.cal.WorkWindow(day)
	if !ok {
		return nil, fmt.Errorf("no work window on %s", day.Format("2006-01-02"))
	}
	slots := make(map[string]*planner.PrinterTimeSlot, len(s.snap.Printers))
	for _, p := range s.snap.Printers {
		slots[p.ID] = planner.NewPrinterTimeSlot(p, start, end, "work_window")
	}
	return slots, nil
}

// generateCandidates is a first-fit cycle generator: allocations arrive
// risk-first from Phase A and each required cycle lands on the earliest
// capable printer cursor. Phase B owns all night-time pruning; the generator
// only places.
func (s *Service) generateCandidates(allocs []planner.DeadlineAllocation, slots map[string]*planner.PrinterTimeSlot) []model.PlannedCycle {
	printers := make(map[string]model.Printer, len(s.snap.Printers))
	for _, p := range s.snap.Printers {
		printers[p.ID] = p
	}
	projects := make(map[string]model.Project, len(s.snap.Projects))
	for _, p := range s.snap.Projects {
		projects[p.ID] = p
	}

	ids := make([]string, 0, len(slots))
	for id := range slots {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []model.PlannedCycle
	for _, alloc := range allocs {
		project, ok := projects[alloc.ProjectID]
		if !ok {
			continue
		}
		preset, ok := s.snap.Presets[project.PresetID]
		if !ok {
			continue
		}
		colorKey := material.NormalizeColor(project.Color)
		for i := 0; i < alloc.RequiredCycles; i++ {
			slot := earliestCapableSlot(ids, slots, printers, colorKey)
			if slot == nil {
				break
			}
			if slot.AvailablePlates(slot.Current) == 0 {
				// All plates occupied; wait for the first one to free up.
				slot.Advance(nextPlateRelease(slot))
			}
			start := slot.Current
			end := start.Add(preset.CycleDuration())
			c := model.PlannedCycle{
				ID:        model.NewCycleID(),
				ProjectID: project.ID,
				PrinterID: slot.PrinterID,
				Start:     start,
				End:       end,
				Color:     colorKey,
				Material:  project.Material,
				Grams:     preset.GramsPerCycle,
				Status:    model.CyclePlanned,
				Source:    model.SourceAuto,
			}
			if !slot.ReservePlate(c.ID, start, s.plateRelease(end)) {
				break
			}
			slot.Advance(end)
			out = append(out, c)
		}
	}
	return out
}

// earliestCapableSlot picks the color-capable printer whose cursor is
// furthest behind. Ties resolve by printer ID, ascending.
func earliestCapableSlot(ids []string, slots map[string]*planner.PrinterTimeSlot, printers map[string]model.Printer, colorKey string) *planner.PrinterTimeSlot {
	var best *planner.PrinterTimeSlot
	for _, id := range ids {
		slot := slots[id]
		p := printers[id]
		if !p.CanPrintColor(colorKey, material.NormalizeColor(p.MountedColor)) {
			continue
		}
		if best == nil || slot.Current.Before(best.Current) {
			best = slot
		}
	}
	return best
}

// nextPlateRelease returns the earliest instant a busy plate frees up. With
// zero available plates at least one reservation releases in the future, so
// the cursor always moves.
func nextPlateRelease(slot *planner.PrinterTimeSlot) time.Time {
	next := slot.Current
	for _, u := range slot.PlatesInUse {
		if !u.ReleaseAt.After(slot.Current) {
			continue
		}
		if next.Equal(slot.Current) || u.ReleaseAt.Before(next) {
			next = u.ReleaseAt
		}
	}
	return next
}

// plateRelease returns when the plate of a cycle ending at end becomes
// reusable. Without an operator present the plate stays occupied until the
// next shift starts.
func (s *Service) plateRelease(end time.Time) time.Time {
	if s.cal.OperatorPresent(end) {
		return end
	}
	if next, ok := s.cal.NextWorkdayStart(end, s.cfg.Planner.MaxDaysAhead); ok {
		return next
	}
	return end
}

// PublishPlan commits the cycle set to the canonical store and announces the
// new version on success.
func (s *Service) PublishPlan(ctx context.Context, cycles []model.PlannedCycle) planversion.PublishPlanResult {
	durable := make(map[string]bool, len(s.snap.Projects))
	for _, p := range s.snap.Projects {
		durable[p.ID] = true
	}
	res := s.versions.Publish(ctx, cycles, durable)

	if err := s.sink.RecordPublishAttempt(coremetrics.PublishAttemptEvent{
		Success:       res.Success,
		Deferred:      res.Deferred,
		Version:       int64(res.PlanVersion),
		CyclesCreated: res.CyclesCreated,
		CyclesDeleted: res.CyclesDeleted,
		Time:          time.Now(),
	}); err != nil {
		s.log.Warnf("record publish attempt: %v", err)
	}
	if res.Success {
		if err := s.notifier.PlanPublished(notify.PlanNotification{
			Version:       int64(res.PlanVersion),
			CyclesCreated: res.CyclesCreated,
			CyclesDeleted: res.CyclesDeleted,
			PublishedAt:   time.Now(),
		}); err != nil {
			s.log.Warnf("plan notification: %v", err)
		}
	}
	return res
}

// PreloadPlan answers "what to preload tonight" for the night following the
// given date's shift.
func (s *Service) PreloadPlan(date time.Time, cycles []model.PlannedCycle, force bool) (preload.Summary, error) {
	window, ok := s.cal.NightWindow(date)
	if !ok {
		return preload.Summary{}, fmt.Errorf("no night window on %s", date.Format("2006-01-02"))
	}
	slots, err := s.buildSlots(date)
	if err != nil {
		return preload.Summary{}, err
	}
	projects := make(map[string]model.Project, len(s.snap.Projects))
	for _, p := range s.snap.Projects {
		projects[p.ID] = p
	}

	summary := s.preloader.Allocate(preload.Request{
		Date:              date,
		Window:            window,
		Printers:          s.snap.Printers,
		Slots:             slots,
		Cycles:            cycles,
		Projects:          projects,
		Presets:           s.snap.Presets,
		Inventory:         s.snap.Inventory,
		AverageCycleHours: s.cfg.Planner.AverageCycleHours,
		GlobalCap:         s.snap.Settings.GlobalPlateCap,
	}, preload.Strategy(s.cfg.Planner.PreloadStrategy), force)

	if err := s.sink.RecordPreloadAllocation(coremetrics.PreloadAllocationEvent{
		Date:                summary.Date,
		Strategy:            string(summary.Strategy),
		TotalNeeded:         summary.TotalNeeded,
		TotalAllocated:      summary.TotalAllocated,
		TotalDeferred:       summary.TotalDeferred,
		GloballyConstrained: summary.IsGloballyConstrained,
	}); err != nil {
		s.log.Warnf("record preload allocation: %v", err)
	}
	return summary, nil
}

// CheckForUpdates refreshes the local plan cache when the store moved on.
func (s *Service) CheckForUpdates(ctx context.Context) (planversion.PlanUpdateResult, error) {
	return s.versions.CheckForUpdates(ctx)
}

// WatchUpdates polls the store for external plan versions until the context
// is cancelled.
func (s *Service) WatchUpdates(ctx context.Context) {
	ticker := time.NewTicker(updatePollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.versions.CheckForUpdates(ctx); err != nil {
				s.log.Warnf("update check: %v", err)
			}
		}
	}
}

// Versions exposes the plan version service for status reporting.
func (s *Service) Versions() *planversion.Service { return s.versions }

// RunPromServer blocks serving /metrics until the context is cancelled.
func (s *Service) RunPromServer(ctx context.Context) error {
	if !s.cfg.Metrics.PrometheusEnabled {
		<-ctx.Done()
		return nil
	}
	return metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	<-s.consumerDn
	s.notifier.Close()
	if s.storeCloser != nil {
		return s.storeCloser.Close()
	}
	return nil
}

func countNightsDropped(res planner.PhaseBResult) int {
	seen := make(map[string]bool)
	for _, sk := range res.SkippedNights {
		if sk.Reason == material.ReasonInsufficientGrams {
			seen[sk.Cycle.PrinterID+"|"+sk.Cycle.Start.Format("2006-01-02")] = true
		}
	}
	return len(seen)
}
