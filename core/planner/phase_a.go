package planner

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/printforge/planner/core/calendar"
	"github.com/printforge/planner/core/events"
	"github.com/printforge/planner/core/logger"
	"github.com/printforge/planner/core/model"
	"github.com/printforge/planner/internal/eventbus"
)

// RiskLevel classifies the deadline feasibility of a project.
type RiskLevel int

const (
	RiskOK RiskLevel = iota
	RiskTight
	RiskAtRisk
	RiskImpossible
)

// String returns a human-readable representation of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskOK:
		return "ok"
	case RiskTight:
		return "tight"
	case RiskAtRisk:
		return "at_risk"
	case RiskImpossible:
		return "impossible"
	default:
		return "unknown"
	}
}

// Critical reports whether the project cannot share printer capacity with
// others and needs its printers exclusively.
func (r RiskLevel) Critical() bool { return r >= RiskAtRisk }

// tightMarginHours separates ok from tight: below this margin any hiccup
// pushes the project past its deadline.
const tightMarginHours = 8.0

// DeadlineAllocation holds the per-project figures derived by Phase A.
// Allocations are computed fresh each run and never mutated in place.
type DeadlineAllocation struct {
	ProjectID      string
	DueDate        time.Time
	RequiredCycles int
	RequiredHours  float64
	AvailableHours float64
	MinPrinters    int
	MarginHours    float64
	Risk           RiskLevel
}

// PhaseAResult is the output of the deadline allocator, sorted risk-first
// then deadline-first.
type PhaseAResult struct {
	Allocations         []DeadlineAllocation
	Warnings            []string
	TotalPrintersNeeded int
}

// Planner runs the allocation phases against a fixed calendar.
type Planner struct {
	cal *calendar.Calculator
	log logger.Logger
	bus eventbus.EventBus
}

// New creates a Planner. Logger and bus may be nil.
func New(cal *calendar.Calculator, log logger.Logger, bus eventbus.EventBus) *Planner {
	if log == nil {
		log = logger.Nop{}
	}
	return &Planner{cal: cal, log: log, bus: bus}
}

func (p *Planner) publish(e eventbus.Event) {
	if p.bus != nil {
		p.bus.Publish(e)
	}
}

// PlanDeadlines computes the minimum-capacity envelope for every active
// project. Projects whose deadline already passed are excluded and reported
// as warnings; planning continues for the rest.
func (p *Planner) PlanDeadlines(now time.Time, projects []model.Project, presets map[string]model.Preset, printerCount int) PhaseAResult {
	var res PhaseAResult

	for _, proj := range projects {
		if !proj.Active() {
			continue
		}
		if !proj.DueDate.After(now) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("project %s: deadline %s already passed, excluded from allocation", proj.ID, proj.DueDate.Format(time.RFC3339)))
			continue
		}
		preset, ok := presets[proj.PresetID]
		if !ok || preset.UnitsPerCycle <= 0 || preset.CycleHours <= 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("project %s: no usable preset, excluded from allocation", proj.ID))
			continue
		}

		alloc := DeadlineAllocation{
			ProjectID:      proj.ID,
			DueDate:        proj.DueDate,
			RequiredCycles: int(math.Ceil(float64(proj.RemainingUnits) / float64(preset.UnitsPerCycle))),
		}
		alloc.RequiredHours = float64(alloc.RequiredCycles) * preset.CycleHours
		alloc.AvailableHours = p.availableHours(now, proj.DueDate)

		if alloc.AvailableHours <= 0 {
			alloc.Risk = RiskImpossible
			alloc.MinPrinters = printerCount
			alloc.MarginHours = -alloc.RequiredHours
		} else {
			need := int(math.Ceil(alloc.RequiredHours / alloc.AvailableHours))
			alloc.MinPrinters = need
			if alloc.MinPrinters > printerCount {
				alloc.MinPrinters = printerCount
			}
			alloc.MarginHours = alloc.AvailableHours*float64(alloc.MinPrinters) - alloc.RequiredHours
			switch {
			case alloc.MarginHours >= tightMarginHours:
				alloc.Risk = RiskOK
			case alloc.MarginHours >= 0:
				alloc.Risk = RiskTight
			case p.theoreticalHours(now, proj.DueDate)*float64(printerCount) >= alloc.RequiredHours:
				// Recoverable by escalating the after-hours policy.
				alloc.Risk = RiskAtRisk
			default:
				alloc.Risk = RiskImpossible
			}
		}

		if alloc.Risk == RiskImpossible {
			res.Warnings = append(res.Warnings, fmt.Sprintf("project %s: deadline %s cannot be met with %d printers", proj.ID, proj.DueDate.Format("2006-01-02"), printerCount))
		}
		p.publish(events.DeadlineRiskEvent{ProjectID: proj.ID, Risk: alloc.Risk.String(), MarginHours: alloc.MarginHours})
		res.Allocations = append(res.Allocations, alloc)
	}

	sort.SliceStable(res.Allocations, func(i, j int) bool {
		a, b := res.Allocations[i], res.Allocations[j]
		if a.Risk != b.Risk {
			return a.Risk > b.Risk
		}
		return a.DueDate.Before(b.DueDate)
	})

	// Critical projects need their printers exclusively; slack projects are
	// assumed to share capacity, so only their maximum counts.
	sharedMax := 0
	for _, a := range res.Allocations {
		if a.Risk.Critical() {
			res.TotalPrintersNeeded += a.MinPrinters
		} else if a.MinPrinters > sharedMax {
			sharedMax = a.MinPrinters
		}
	}
	res.TotalPrintersNeeded += sharedMax

	return res
}

// availableHours sums the work hours between now and the deadline, walking
// forward one day at a time up to the search cap. Under the full after-hours
// policy the night windows count as capacity too.
func (p *Planner) availableHours(now, deadline time.Time) float64 {
	return p.sumHours(now, deadline, p.cal.Mode() == model.NightModeFull)
}

// theoreticalHours is the capacity if the factory escalated to full
// after-hours operation. Used only to separate at_risk from impossible.
func (p *Planner) theoreticalHours(now, deadline time.Time) float64 {
	return p.sumHours(now, deadline, true)
}

func (p *Planner) sumHours(now, deadline time.Time, includeNights bool) float64 {
	total := 0.0
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for i := 0; i <= calendar.DefaultMaxDaysAhead; i++ {
		d := day.AddDate(0, 0, i)
		if start, end, ok := p.cal.WorkWindow(d); ok {
			total += overlapHours(start, end, now, deadline)
		}
		if includeNights {
			if w, ok := p.cal.NightWindow(d); ok {
				total += overlapHours(w.Start, w.End, now, deadline)
			}
		}
	}
	return total
}

func overlapHours(start, end, lo, hi time.Time) float64 {
	if start.Before(lo) {
		start = lo
	}
	if end.After(hi) {
		end = hi
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start).Hours()
}
