package preload

import (
	"testing"
	"time"

	"github.com/printforge/planner/core/calendar"
	"github.com/printforge/planner/core/model"
)

var nightDate = time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)

func testWindow() calendar.NightWindow {
	start := nightDate.Add(17 * time.Hour)
	return calendar.NightWindow{
		Start:      start,
		End:        start.Add(15 * time.Hour),
		TotalHours: 15,
		Mode:       model.NightModeFull,
	}
}

func nightReq(cycles []model.PlannedCycle, inv model.Inventory, globalCap int) Request {
	return Request{
		Date:   nightDate,
		Window: testWindow(),
		Printers: []model.Printer{
			{ID: "p1", CanRunAfterHours: true, PlateCapacity: 8, MountedColor: "gray"},
			{ID: "p2", CanRunAfterHours: true, PlateCapacity: 8, HasMultiMaterial: true},
			{ID: "p3", CanRunAfterHours: false, PlateCapacity: 8, MountedColor: "gray"},
		},
		Cycles: cycles,
		Projects: map[string]model.Project{
			"proj": {ID: "proj", PresetID: "std"},
			"day":  {ID: "day", PresetID: "dayonly"},
		},
		Presets: map[string]model.Preset{
			"std":     {ID: "std", AllowedAtNight: true},
			"dayonly": {ID: "dayonly", AllowedAtNight: false},
		},
		Inventory: inv,
		GlobalCap: globalCap,
	}
}

func candidate(printer, project, color string, grams, hours float64) model.PlannedCycle {
	start := nightDate.Add(18 * time.Hour)
	return model.PlannedCycle{
		ID: model.NewCycleID(), ProjectID: project, PrinterID: printer,
		Start: start, End: start.Add(time.Duration(hours * float64(time.Hour))),
		Color: color, Grams: grams,
	}
}

func grayStock(grams float64) model.Inventory {
	return model.Inventory{"gray": {Color: "gray", OpenGrams: grams}}
}

func TestDemandEligibilityGates(t *testing.T) {
	cycles := []model.PlannedCycle{
		candidate("p1", "proj", "gray", 100, 3),  // eligible
		candidate("p1", "proj", "red", 100, 3),   // wrong mounted color
		candidate("p2", "proj", "red", 100, 3),   // multi-material, any color
		candidate("p3", "proj", "gray", 100, 3),  // printer cannot run at night
		candidate("p1", "day", "gray", 100, 3),   // preset forbids night
		candidate("p1", "proj", "gray", 100, 20), // does not fit the window
	}
	inv := grayStock(1000)
	inv["red"] = model.ColorInventoryItem{Color: "red", OpenGrams: 1000}

	demand := estimateByDemand(nightReq(cycles, inv, 10))
	if demand["p1"] != 1 {
		t.Errorf("p1 demand = %d, want 1", demand["p1"])
	}
	if demand["p2"] != 1 {
		t.Errorf("p2 demand = %d, want 1", demand["p2"])
	}
	if demand["p3"] != 0 {
		t.Errorf("p3 demand = %d, want 0", demand["p3"])
	}
}

func TestDemandIgnoresDayCycles(t *testing.T) {
	// 10:00-13:00 runs under operator supervision; it must not consume
	// plates or filament reserved for the night.
	day := candidate("p1", "proj", "gray", 100, 3)
	day.Start = nightDate.Add(10 * time.Hour)
	day.End = day.Start.Add(3 * time.Hour)

	demand := estimateByDemand(nightReq([]model.PlannedCycle{day}, grayStock(1000), 10))
	if demand["p1"] != 0 {
		t.Fatalf("p1 demand = %d, want 0 for a day-timed cycle", demand["p1"])
	}

	night := candidate("p1", "proj", "gray", 100, 3)
	demand = estimateByDemand(nightReq([]model.PlannedCycle{day, night}, grayStock(150), 10))
	if demand["p1"] != 1 {
		t.Fatalf("p1 demand = %d, want 1 (day cycle must not reserve the 100g)", demand["p1"])
	}
}

func TestDemandSequentialMaterialReservation(t *testing.T) {
	// 250g of gray: first two 100g cycles fit, the third does not.
	cycles := []model.PlannedCycle{
		candidate("p1", "proj", "gray", 100, 3),
		candidate("p1", "proj", "gray", 100, 3),
		candidate("p1", "proj", "gray", 100, 3),
	}
	demand := estimateByDemand(nightReq(cycles, grayStock(250), 10))
	if demand["p1"] != 2 {
		t.Fatalf("p1 demand = %d, want 2 (first candidates win)", demand["p1"])
	}
}

func TestDemandColorAliasMatchesMountedSpool(t *testing.T) {
	cycles := []model.PlannedCycle{candidate("p1", "proj", "Gris", 100, 3)}
	demand := estimateByDemand(nightReq(cycles, grayStock(500), 10))
	if demand["p1"] != 1 {
		t.Fatalf("alias color must match mounted gray spool, demand = %v", demand)
	}
}

func TestTimeStrategyIgnoresMaterial(t *testing.T) {
	req := nightReq(nil, model.Inventory{}, 10)
	req.AverageCycleHours = 5

	demand := estimateByTime(req)
	if demand["p1"] != 3 || demand["p2"] != 3 { // 15h / 5h
		t.Errorf("demand = %v, want 3 per night-capable printer", demand)
	}
	if _, ok := demand["p3"]; ok {
		t.Errorf("p3 is not night capable")
	}
}

func TestAllocateSummaryAndConstraintFlag(t *testing.T) {
	cycles := []model.PlannedCycle{
		candidate("p1", "proj", "gray", 10, 3),
		candidate("p1", "proj", "gray", 10, 3),
		candidate("p1", "proj", "gray", 10, 3),
		candidate("p2", "proj", "gray", 10, 3),
		candidate("p2", "proj", "gray", 10, 3),
	}
	a := NewAllocator(nil, nil, nil)
	s := a.Allocate(nightReq(cycles, grayStock(1000), 4), StrategyDemand, false)

	if s.TotalNeeded != 5 || s.TotalAllocated != 4 || s.TotalDeferred != 1 {
		t.Fatalf("summary = %+v, want needed 5 allocated 4 deferred 1", s)
	}
	if !s.IsGloballyConstrained {
		t.Errorf("global cap 4 under need 5 must flag constraint")
	}
	// Fair split: p1 gets 2, p2 gets 2.
	for _, line := range s.Printers {
		if line.Allocated != 2 {
			t.Errorf("printer %s allocated %d, want 2", line.PrinterID, line.Allocated)
		}
	}
}

func TestAllocateCachesPerDate(t *testing.T) {
	cycles := []model.PlannedCycle{candidate("p1", "proj", "gray", 10, 3)}
	cache := NewCache()
	a := NewAllocator(nil, nil, cache)

	first := a.Allocate(nightReq(cycles, grayStock(1000), 4), StrategyDemand, false)
	// Demand changes, but the same-day decision is served from cache.
	second := a.Allocate(nightReq(nil, grayStock(1000), 4), StrategyDemand, false)
	if second.TotalNeeded != first.TotalNeeded {
		t.Fatalf("expected cached decision, got %+v", second)
	}

	// Force recomputes and replaces the entry.
	third := a.Allocate(nightReq(nil, grayStock(1000), 4), StrategyDemand, true)
	if third.TotalNeeded != 0 {
		t.Fatalf("forced recompute should see empty demand, got %+v", third)
	}

	a.Invalidate(nightDate)
	fourth := a.Allocate(nightReq(cycles, grayStock(1000), 4), StrategyDemand, false)
	if fourth.TotalNeeded != 1 {
		t.Fatalf("after invalidation the allocator must recompute, got %+v", fourth)
	}
}
