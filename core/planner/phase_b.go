package planner

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/printforge/planner/core/calendar"
	"github.com/printforge/planner/core/events"
	"github.com/printforge/planner/core/material"
	"github.com/printforge/planner/core/model"
)

// Reason codes for cycles removed by Phase B.
const (
	ReasonOneCycleLimit   = "one_cycle_mode_limit"
	ReasonNoNightMode     = "no_night_mode"
	ReasonNightNotCapable = "printer_not_night_capable"
)

// SkippedCycle pairs a removed candidate with its machine-readable reason.
type SkippedCycle struct {
	Cycle  model.PlannedCycle
	Reason string
}

// PhaseBResult is the validated cycle set plus everything that was removed.
type PhaseBResult struct {
	Cycles          []model.PlannedCycle
	SkippedNights   []SkippedCycle
	Warnings        []string
	MeanUtilization float64
}

// ValidateUtilization prunes the candidate cycle set: day cycles pass
// through unchanged, night cycles must clear the mode limit and the filament
// gate. A failed gate drops every night cycle for that printer on that night;
// there is no partial commit.
func (p *Planner) ValidateUtilization(allocs []DeadlineAllocation, slots map[string]*PrinterTimeSlot, candidates []model.PlannedCycle, inv model.Inventory) PhaseBResult {
	var res PhaseBResult
	skipped := make(map[string]string) // cycle ID -> reason

	byPrinter := make(map[string][]model.PlannedCycle)
	for _, c := range candidates {
		byPrinter[c.PrinterID] = append(byPrinter[c.PrinterID], c)
	}
	printerIDs := make([]string, 0, len(byPrinter))
	for id := range byPrinter {
		printerIDs = append(printerIDs, id)
	}
	sort.Strings(printerIDs)

	for _, pid := range printerIDs {
		slot := slots[pid]
		nights := make(map[time.Time][]model.PlannedCycle)
		var nightOrder []time.Time

		for _, c := range byPrinter[pid] {
			if p.cal.OperatorPresent(c.Start) {
				continue // day cycle, passes through
			}
			w, ok := p.nightOf(c.Start)
			if !ok || w.Mode == model.NightModeNone {
				// Upstream misclassification guard: night-timed candidates
				// without a usable night window never run.
				p.skip(skipped, &res, c, ReasonNoNightMode)
				continue
			}
			if slot != nil && !slot.NightEligible {
				p.skip(skipped, &res, c, ReasonNightNotCapable)
				continue
			}
			if _, seen := nights[w.Start]; !seen {
				nightOrder = append(nightOrder, w.Start)
			}
			nights[w.Start] = append(nights[w.Start], c)
		}

		for _, start := range nightOrder {
			cs := nights[start]
			w, _ := p.nightOf(cs[0].Start)
			kept := cs
			if w.Mode == model.NightModeOneCycle && len(cs) > 1 {
				for _, c := range cs[1:] {
					p.skip(skipped, &res, c, ReasonOneCycleLimit)
				}
				kept = cs[:1]
			}

			// The gate runs once per color: stock of one color must never
			// vouch for cycles printed in another.
			byColor := make(map[string][]model.PlannedCycle)
			var colorOrder []string
			for _, c := range kept {
				key := material.NormalizeColor(c.Color)
				if _, seen := byColor[key]; !seen {
					colorOrder = append(colorOrder, key)
				}
				byColor[key] = append(byColor[key], c)
			}
			for _, colorKey := range colorOrder {
				group := byColor[colorKey]
				v := material.ValidateNight(group, inv.Grams(colorKey), w)
				if v.CanPlanNight {
					continue
				}
				for _, c := range group {
					p.skip(skipped, &res, c, v.Reason)
				}
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"printer %s: night of %s dropped, %s short by %.0fg",
					pid, start.Format("2006-01-02"), colorKey, v.Shortfall))
				p.publish(events.NightDroppedEvent{
					PrinterID:      pid,
					Night:          start,
					Color:          colorKey,
					ShortfallGrams: v.Shortfall,
					Cycles:         len(group),
				})
			}
		}
	}

	scheduled := make(map[string]float64) // printer ID -> kept hours
	for _, c := range candidates {
		if _, ok := skipped[c.ID]; ok {
			continue
		}
		res.Cycles = append(res.Cycles, c)
		scheduled[c.PrinterID] += c.Duration().Hours()
	}

	res.Warnings = append(res.Warnings, p.coverageWarnings(allocs, res.Cycles)...)
	res.MeanUtilization = meanUtilization(slots, scheduled)
	return res
}

func (p *Planner) skip(skipped map[string]string, res *PhaseBResult, c model.PlannedCycle, reason string) {
	skipped[c.ID] = reason
	res.SkippedNights = append(res.SkippedNights, SkippedCycle{Cycle: c, Reason: reason})
	p.publish(events.CycleSkippedEvent{
		CycleID:   c.ID,
		ProjectID: c.ProjectID,
		PrinterID: c.PrinterID,
		Reason:    reason,
	})
	p.log.Debugw("cycle skipped", map[string]any{
		"cycle":   c.ID,
		"printer": c.PrinterID,
		"reason":  reason,
	})
}

// nightOf finds the night window containing t, searching back far enough to
// cover multi-day gaps such as weekends.
func (p *Planner) nightOf(t time.Time) (calendar.NightWindow, bool) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	for i := 0; i <= calendar.DefaultMaxDaysAhead; i++ {
		if w, ok := p.cal.NightWindow(day.AddDate(0, 0, -i)); ok && w.InNight(t) {
			return w, true
		}
	}
	return calendar.NightWindow{}, false
}

// coverageWarnings reports projects whose surviving cycles no longer cover
// the Phase A requirement.
func (p *Planner) coverageWarnings(allocs []DeadlineAllocation, cycles []model.PlannedCycle) []string {
	perProject := make(map[string]int)
	for _, c := range cycles {
		perProject[c.ProjectID]++
	}
	var warnings []string
	for _, a := range allocs {
		if n := perProject[a.ProjectID]; n < a.RequiredCycles {
			warnings = append(warnings, fmt.Sprintf(
				"project %s: only %d of %d required cycles scheduled", a.ProjectID, n, a.RequiredCycles))
		}
	}
	return warnings
}

func meanUtilization(slots map[string]*PrinterTimeSlot, scheduled map[string]float64) float64 {
	var ratios []float64
	for id, slot := range slots {
		if h := slot.DayHours(); h > 0 {
			r := scheduled[id] / h
			if r > 1 {
				r = 1
			}
			ratios = append(ratios, r)
		}
	}
	if len(ratios) == 0 {
		return 0
	}
	return stat.Mean(ratios, nil)
}
