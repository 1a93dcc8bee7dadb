// Package preload decides how many plates to prepare per printer for
// unattended night operation. A scarce global plate inventory is distributed
// round-robin so no printer is starved while another holds unused allocation.
package preload

import (
	"sort"
	"time"

	"github.com/printforge/planner/core/calendar"
	"github.com/printforge/planner/core/events"
	"github.com/printforge/planner/core/logger"
	"github.com/printforge/planner/core/model"
	"github.com/printforge/planner/core/planner"
	"github.com/printforge/planner/internal/eventbus"
)

// Strategy selects how per-printer plate demand is estimated.
type Strategy string

const (
	// StrategyDemand counts eligible candidate cycles. Preferred.
	StrategyDemand Strategy = "demand"
	// StrategyTime estimates from night length only. Degraded-mode fallback
	// for when demand data is unavailable.
	StrategyTime Strategy = "time"
)

// defaultAverageCycleHours backs the time strategy when no average is known.
const defaultAverageCycleHours = 8.0

// Request carries everything one allocation decision needs.
type Request struct {
	Date              time.Time
	Window            calendar.NightWindow
	Printers          []model.Printer
	Slots             map[string]*planner.PrinterTimeSlot
	Cycles            []model.PlannedCycle // candidate night cycles, in plan order
	Projects          map[string]model.Project
	Presets           map[string]model.Preset
	Inventory         model.Inventory
	AverageCycleHours float64
	GlobalCap         int
}

// PrinterPreload is the per-printer line of the summary.
type PrinterPreload struct {
	PrinterID string
	Needed    int
	Allocated int
	Deferred  int
}

// Summary is the operator-facing "what to preload tonight" answer.
type Summary struct {
	Date                  time.Time
	Strategy              Strategy
	Printers              []PrinterPreload
	TotalNeeded           int
	TotalAllocated        int
	TotalDeferred         int
	IsGloballyConstrained bool
}

// Allocator computes preload allocations and caches the same-day decision.
type Allocator struct {
	log   logger.Logger
	bus   eventbus.EventBus
	cache *Cache
}

// NewAllocator creates an Allocator. Logger, bus and cache may be nil; a nil
// cache disables same-day reuse.
func NewAllocator(log logger.Logger, bus eventbus.EventBus, cache *Cache) *Allocator {
	if log == nil {
		log = logger.Nop{}
	}
	return &Allocator{log: log, bus: bus, cache: cache}
}

// Allocate distributes the global plate inventory for the request's night.
// The decision is cached per date; force recomputes and replaces the cached
// entry.
func (a *Allocator) Allocate(req Request, strategy Strategy, force bool) Summary {
	key := DateKey(req.Date)
	if !force && a.cache != nil {
		if s, ok := a.cache.Get(key); ok {
			a.log.Debugf("preload allocation for %s served from cache", key)
			return s
		}
	}

	var demand map[string]int
	switch strategy {
	case StrategyTime:
		demand = estimateByTime(req)
	default:
		strategy = StrategyDemand
		demand = estimateByDemand(req)
	}

	caps := make(map[string]int, len(req.Printers))
	for _, p := range req.Printers {
		c := p.PlateCapacity
		if slot, ok := req.Slots[p.ID]; ok {
			if free := slot.AvailablePlates(req.Window.Start); free < c {
				c = free
			}
		}
		caps[p.ID] = c
	}

	granted := roundRobin(demand, caps, req.GlobalCap)

	s := Summary{Date: req.Date, Strategy: strategy}
	effectiveNeed := 0
	ids := make([]string, 0, len(req.Printers))
	for _, p := range req.Printers {
		ids = append(ids, p.ID)
	}
	sort.Strings(ids)
	for _, id := range ids {
		need := demand[id]
		if need == 0 {
			continue
		}
		line := PrinterPreload{
			PrinterID: id,
			Needed:    need,
			Allocated: granted[id],
			Deferred:  need - granted[id],
		}
		s.Printers = append(s.Printers, line)
		s.TotalNeeded += line.Needed
		s.TotalAllocated += line.Allocated
		s.TotalDeferred += line.Deferred
		if capped := min(need, caps[id]); capped > 0 {
			effectiveNeed += capped
		}
		if a.bus != nil {
			a.bus.Publish(events.PreloadDecisionEvent{
				PrinterID: id,
				Date:      req.Date,
				Requested: line.Needed,
				Allocated: line.Allocated,
				Deferred:  line.Deferred,
				Strategy:  string(strategy),
			})
		}
	}
	s.IsGloballyConstrained = effectiveNeed > req.GlobalCap

	if a.cache != nil {
		a.cache.Store(key, s)
	}
	return s
}

// Invalidate forgets the cached decision for the given date, forcing the
// next Allocate call to recompute.
func (a *Allocator) Invalidate(date time.Time) {
	if a.cache != nil {
		a.cache.Invalidate(DateKey(date))
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
