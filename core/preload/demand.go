package preload

import (
	"github.com/printforge/planner/core/material"
	"github.com/printforge/planner/core/model"
)

// estimateByDemand counts candidate night cycles that clear the eligibility
// gate. Cycles outside the night window never count. Material is reserved
// sequentially in plan order, so when two cycles compete for the same
// filament the earlier one wins.
func estimateByDemand(req Request) map[string]int {
	printers := make(map[string]model.Printer, len(req.Printers))
	for _, p := range req.Printers {
		printers[p.ID] = p
	}

	demand := make(map[string]int)
	reserved := make(map[string]float64) // color key -> grams provisionally consumed

	for _, c := range req.Cycles {
		if !req.Window.InNight(c.Start) {
			continue // day cycle, needs no preloaded plate
		}
		p, ok := printers[c.PrinterID]
		if !ok || !p.CanRunAfterHours {
			continue
		}
		colorKey := material.NormalizeColor(c.Color)
		if !p.CanPrintColor(colorKey, material.NormalizeColor(p.MountedColor)) {
			continue
		}
		if !presetAllowsNight(req, c.ProjectID) {
			continue
		}
		if c.Duration().Hours() > req.Window.TotalHours {
			continue
		}
		if reserved[colorKey]+c.Grams > req.Inventory.Grams(colorKey) {
			continue
		}
		reserved[colorKey] += c.Grams
		demand[c.PrinterID]++
	}
	return demand
}

func presetAllowsNight(req Request, projectID string) bool {
	proj, ok := req.Projects[projectID]
	if !ok {
		return false
	}
	preset, ok := req.Presets[proj.PresetID]
	return ok && preset.AllowedAtNight
}

// estimateByTime is the legacy fallback: cycles per night from wall time
// alone, ignoring material and color.
func estimateByTime(req Request) map[string]int {
	avg := req.AverageCycleHours
	if avg <= 0 {
		avg = defaultAverageCycleHours
	}
	perPrinter := int(req.Window.TotalHours / avg)
	demand := make(map[string]int)
	if perPrinter <= 0 {
		return demand
	}
	for _, p := range req.Printers {
		if p.CanRunAfterHours {
			demand[p.ID] = perPrinter
		}
	}
	return demand
}
