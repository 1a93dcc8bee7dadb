package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/printforge/planner/core/model"
)

const sampleYAML = `factory:
  after_hours: "one_cycle"
  global_plate_cap: 8
  material_lead_time_hours: 24
  week:
    monday:
      enabled: true
      start: "08:00"
      end: "17:00"
    friday:
      enabled: true
      start: "08:00"
      end: "01:30"
presets:
  - id: "bracket"
    units_per_cycle: 4
    cycle_hours: 3.5
    grams_per_cycle: 180
    allowed_at_night: true
    risk_level: "low"
projects:
  - id: "proj-1"
    name: "Wall brackets"
    color: "Noir"
    material: "PLA"
    due_date: "2025-03-10T17:00:00Z"
    remaining_units: 12
    urgency: "high"
    preset_id: "bracket"
printers:
  - id: "p1"
    name: "X1C-1"
    multi_material: true
    can_run_after_hours: true
    plate_capacity: 4
    mounted_color: "black"
inventory:
  - color: "Noir"
    material: "PLA"
    closed_spool_count: 2
    closed_spool_grams: 1000
    open_grams: 420
`

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	snap, err := Load(writeSnapshot(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if snap.Settings.AfterHours != model.NightModeOneCycle {
		t.Errorf("after hours = %v", snap.Settings.AfterHours)
	}
	if snap.Settings.GlobalPlateCap != 8 {
		t.Errorf("plate cap = %d", snap.Settings.GlobalPlateCap)
	}
	mon := snap.Settings.Week.Day(time.Monday)
	if !mon.Enabled || mon.Start.Hour != 8 || mon.End.Hour != 17 {
		t.Errorf("monday = %+v", mon)
	}
	fri := snap.Settings.Week.Day(time.Friday)
	if !fri.CrossesMidnight() {
		t.Errorf("friday shift should cross midnight: %+v", fri)
	}
	if snap.Settings.Week.Day(time.Tuesday).Enabled {
		t.Errorf("unlisted weekday should be disabled")
	}

	if len(snap.Projects) != 1 {
		t.Fatalf("projects = %d", len(snap.Projects))
	}
	p := snap.Projects[0]
	if p.Urgency != model.UrgencyHigh || p.PresetID != "bracket" {
		t.Errorf("project = %+v", p)
	}
	if _, ok := snap.Presets["bracket"]; !ok {
		t.Errorf("preset not loaded")
	}

	// Inventory is keyed by the normalized color; "Noir" folds to black.
	if got := snap.Inventory.Grams("black"); got != 2420 {
		t.Errorf("black grams = %v, want 2420", got)
	}
}

func TestLoadRejectsUnknownPreset(t *testing.T) {
	content := `factory:
  after_hours: "none"
  week:
    monday: {enabled: true, start: "08:00", end: "17:00"}
presets: []
projects:
  - id: "proj-2"
    color: "red"
    material: "PLA"
    due_date: "2025-03-10T17:00:00Z"
    remaining_units: 1
    preset_id: "missing"
`
	if _, err := Load(writeSnapshot(t, content)); err == nil {
		t.Fatalf("expected unknown preset error")
	}
}

func TestLoadRejectsBadClock(t *testing.T) {
	content := `factory:
  after_hours: "none"
  week:
    monday: {enabled: true, start: "25:00", end: "17:00"}
`
	if _, err := Load(writeSnapshot(t, content)); err == nil {
		t.Fatalf("expected clock range error")
	}
}

func TestLoadRejectsUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.toml")
	if err := os.WriteFile(path, []byte("x = 1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected format error")
	}
}
