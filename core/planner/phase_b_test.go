package planner

import (
	"strings"
	"testing"
	"time"

	"github.com/printforge/planner/core/material"
	"github.com/printforge/planner/core/model"
)

// tuesday cycle helpers: work hours are 08:00-17:00, the night window of
// Tuesday runs 17:00 -> Wednesday 08:00.
func dayCycle(id, printer string, grams float64) model.PlannedCycle {
	start := time.Date(2025, time.March, 4, 9, 0, 0, 0, time.UTC)
	return model.PlannedCycle{
		ID: id, ProjectID: "proj", PrinterID: printer,
		Start: start, End: start.Add(3 * time.Hour),
		Color: "gray", Grams: grams,
	}
}

func nightCycle(id, printer string, hour int, grams float64) model.PlannedCycle {
	start := time.Date(2025, time.March, 4, hour, 0, 0, 0, time.UTC)
	return model.PlannedCycle{
		ID: id, ProjectID: "proj", PrinterID: printer,
		Start: start, End: start.Add(3 * time.Hour),
		Color: "gray", Grams: grams,
	}
}

func nightSlots(printer string) map[string]*PrinterTimeSlot {
	day := time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)
	return map[string]*PrinterTimeSlot{
		printer: NewPrinterTimeSlot(
			model.Printer{ID: printer, CanRunAfterHours: true, PlateCapacity: 4},
			day.Add(8*time.Hour), day.Add(17*time.Hour), "work_window",
		),
	}
}

func grayInventory(grams float64) model.Inventory {
	return model.Inventory{"gray": {Color: "gray", OpenGrams: grams}}
}

func TestValidateUtilizationDayCyclesPassThrough(t *testing.T) {
	p := newTestPlanner(model.NightModeNone)
	candidates := []model.PlannedCycle{dayCycle("d1", "p1", 100)}

	res := p.ValidateUtilization(nil, nightSlots("p1"), candidates, grayInventory(0))
	if len(res.Cycles) != 1 || len(res.SkippedNights) != 0 {
		t.Fatalf("day cycle must pass unchanged, got %d kept %d skipped", len(res.Cycles), len(res.SkippedNights))
	}
}

func TestValidateUtilizationFullModePasses(t *testing.T) {
	p := newTestPlanner(model.NightModeFull)
	candidates := []model.PlannedCycle{
		dayCycle("d1", "p1", 100),
		nightCycle("n1", "p1", 18, 200),
		nightCycle("n2", "p1", 22, 200),
	}

	// Demand 400 + buffer max(40, 100) = 500, stock 1000: all pass.
	res := p.ValidateUtilization(nil, nightSlots("p1"), candidates, grayInventory(1000))
	if len(res.Cycles) != 3 {
		t.Fatalf("kept = %d, want 3", len(res.Cycles))
	}
}

func TestValidateUtilizationFilamentShortDropsWholeNight(t *testing.T) {
	p := newTestPlanner(model.NightModeFull)
	candidates := []model.PlannedCycle{
		dayCycle("d1", "p1", 100),
		nightCycle("n1", "p1", 18, 200),
		nightCycle("n2", "p1", 22, 200),
	}

	// Required 500, stock 450: no partial commit, both night cycles go.
	res := p.ValidateUtilization(nil, nightSlots("p1"), candidates, grayInventory(450))
	if len(res.Cycles) != 1 || res.Cycles[0].ID != "d1" {
		t.Fatalf("only the day cycle should survive, got %v", res.Cycles)
	}
	if len(res.SkippedNights) != 2 {
		t.Fatalf("skipped = %d, want 2", len(res.SkippedNights))
	}
	for _, s := range res.SkippedNights {
		if s.Reason != material.ReasonInsufficientGrams {
			t.Errorf("reason = %q, want %q", s.Reason, material.ReasonInsufficientGrams)
		}
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "short by 50g") {
			found = true
		}
	}
	if !found {
		t.Errorf("warning must name the shortfall, got %v", res.Warnings)
	}
}

func TestValidateUtilizationGatesEachColorSeparately(t *testing.T) {
	p := newTestPlanner(model.NightModeFull)
	red := nightCycle("n2", "p1", 22, 400)
	red.Color = "red"
	candidates := []model.PlannedCycle{
		nightCycle("n1", "p1", 18, 200),
		red,
	}

	// Gray stock covers the gray cycle (200 + 100 buffer <= 1000); red has
	// no stock, so its cycle must not ride on the gray grams.
	res := p.ValidateUtilization(nil, nightSlots("p1"), candidates, grayInventory(1000))
	if len(res.Cycles) != 1 || res.Cycles[0].ID != "n1" {
		t.Fatalf("only the gray cycle should survive, got %v", res.Cycles)
	}
	if len(res.SkippedNights) != 1 || res.SkippedNights[0].Reason != material.ReasonInsufficientGrams {
		t.Fatalf("expected insufficient_filament skip for red, got %v", res.SkippedNights)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "red short by 500g") {
			found = true
		}
	}
	if !found {
		t.Errorf("warning must name the red shortfall, got %v", res.Warnings)
	}
}

func TestValidateUtilizationOneCycleModeLimit(t *testing.T) {
	p := newTestPlanner(model.NightModeOneCycle)
	candidates := []model.PlannedCycle{
		nightCycle("n1", "p1", 18, 200),
		nightCycle("n2", "p1", 22, 200),
	}

	// First cycle kept (200 + 50 <= 300), second skipped by the mode limit.
	res := p.ValidateUtilization(nil, nightSlots("p1"), candidates, grayInventory(300))
	if len(res.Cycles) != 1 || res.Cycles[0].ID != "n1" {
		t.Fatalf("expected only the first night cycle, got %v", res.Cycles)
	}
	if len(res.SkippedNights) != 1 || res.SkippedNights[0].Reason != ReasonOneCycleLimit {
		t.Fatalf("expected one_cycle_mode_limit skip, got %v", res.SkippedNights)
	}
}

func TestValidateUtilizationNoNightMode(t *testing.T) {
	p := newTestPlanner(model.NightModeNone)
	candidates := []model.PlannedCycle{nightCycle("n1", "p1", 18, 200)}

	res := p.ValidateUtilization(nil, nightSlots("p1"), candidates, grayInventory(1e6))
	if len(res.Cycles) != 0 {
		t.Fatalf("night-timed candidates must never run in mode none")
	}
	if res.SkippedNights[0].Reason != ReasonNoNightMode {
		t.Errorf("reason = %q, want %q", res.SkippedNights[0].Reason, ReasonNoNightMode)
	}
}

func TestValidateUtilizationPrinterNotNightCapable(t *testing.T) {
	p := newTestPlanner(model.NightModeFull)
	day := time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)
	slots := map[string]*PrinterTimeSlot{
		"p1": NewPrinterTimeSlot(
			model.Printer{ID: "p1", CanRunAfterHours: false, PlateCapacity: 1},
			day.Add(8*time.Hour), day.Add(17*time.Hour), "work_window",
		),
	}
	candidates := []model.PlannedCycle{nightCycle("n1", "p1", 18, 10)}

	res := p.ValidateUtilization(nil, slots, candidates, grayInventory(1e6))
	if len(res.Cycles) != 0 || res.SkippedNights[0].Reason != ReasonNightNotCapable {
		t.Fatalf("expected printer_not_night_capable skip, got %v", res.SkippedNights)
	}
}

func TestValidateUtilizationCoverageWarning(t *testing.T) {
	p := newTestPlanner(model.NightModeFull)
	allocs := []DeadlineAllocation{{ProjectID: "proj", RequiredCycles: 3}}
	candidates := []model.PlannedCycle{dayCycle("d1", "p1", 100)}

	res := p.ValidateUtilization(allocs, nightSlots("p1"), candidates, grayInventory(0))
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "1 of 3") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected coverage warning, got %v", res.Warnings)
	}
}

func TestValidateUtilizationMeanUtilization(t *testing.T) {
	p := newTestPlanner(model.NightModeFull)
	candidates := []model.PlannedCycle{dayCycle("d1", "p1", 100)} // 3h of a 9h day

	res := p.ValidateUtilization(nil, nightSlots("p1"), candidates, grayInventory(0))
	if got := res.MeanUtilization; got < 0.33 || got > 0.34 {
		t.Errorf("mean utilization = %v, want ~1/3", got)
	}
}
