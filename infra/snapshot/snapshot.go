// Package snapshot loads a planning-input snapshot (factory settings,
// projects, presets, printers, filament inventory) from a YAML or JSON file.
// The CLI feeds one snapshot into a full planning pass.
package snapshot

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/printforge/planner/core/material"
	"github.com/printforge/planner/core/model"
)

// Snapshot is the fully parsed planning input.
type Snapshot struct {
	Settings  model.FactorySettings
	Projects  []model.Project
	Presets   map[string]model.Preset
	Printers  []model.Printer
	Inventory model.Inventory
}

type daySpec struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

type factorySpec struct {
	AfterHours            string             `json:"after_hours"`
	GlobalPlateCap        int                `json:"global_plate_cap"`
	MaterialLeadTimeHours float64            `json:"material_lead_time_hours"`
	Week                  map[string]daySpec `json:"week"`
}

type presetSpec struct {
	ID             string  `json:"id"`
	UnitsPerCycle  int     `json:"units_per_cycle"`
	CycleHours     float64 `json:"cycle_hours"`
	GramsPerCycle  float64 `json:"grams_per_cycle"`
	AllowedAtNight bool    `json:"allowed_at_night"`
	RiskLevel      string  `json:"risk_level"`
}

type projectSpec struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Color          string `json:"color"`
	Material       string `json:"material"`
	DueDate        string `json:"due_date"`
	RemainingUnits int    `json:"remaining_units"`
	Urgency        string `json:"urgency"`
	PresetID       string `json:"preset_id"`
}

type printerSpec struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	MultiMaterial    bool   `json:"multi_material"`
	CanRunAfterHours bool   `json:"can_run_after_hours"`
	PlateCapacity    int    `json:"plate_capacity"`
	MountedColor     string `json:"mounted_color"`
}

type inventorySpec struct {
	Color            string  `json:"color"`
	Material         string  `json:"material"`
	ClosedSpoolCount int     `json:"closed_spool_count"`
	ClosedSpoolGrams float64 `json:"closed_spool_grams"`
	OpenGrams        float64 `json:"open_grams"`
}

type fileSpec struct {
	Factory   factorySpec     `json:"factory"`
	Presets   []presetSpec    `json:"presets"`
	Projects  []projectSpec   `json:"projects"`
	Printers  []printerSpec   `json:"printers"`
	Inventory []inventorySpec `json:"inventory"`
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Load reads and validates the snapshot at path. The format is chosen by
// file extension, matching the config loader.
func Load(path string) (*Snapshot, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported snapshot format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	var spec fileSpec
	if err := k.UnmarshalWithConf("", &spec, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	return build(spec)
}

func build(spec fileSpec) (*Snapshot, error) {
	snap := &Snapshot{
		Presets:   make(map[string]model.Preset, len(spec.Presets)),
		Inventory: make(model.Inventory, len(spec.Inventory)),
	}

	mode, err := model.ParseNightMode(spec.Factory.AfterHours)
	if err != nil {
		return nil, fmt.Errorf("factory: %w", err)
	}
	var week model.WeekSchedule
	for name, day := range spec.Factory.Week {
		wd, ok := weekdays[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("factory: unknown weekday %q", name)
		}
		sched := model.DaySchedule{Enabled: day.Enabled}
		if day.Enabled {
			if sched.Start, err = parseClock(day.Start); err != nil {
				return nil, fmt.Errorf("factory: %s start: %w", name, err)
			}
			if sched.End, err = parseClock(day.End); err != nil {
				return nil, fmt.Errorf("factory: %s end: %w", name, err)
			}
		}
		week[int(wd)] = sched
	}
	snap.Settings = model.FactorySettings{
		Week:                  week,
		AfterHours:            mode,
		GlobalPlateCap:        spec.Factory.GlobalPlateCap,
		MaterialLeadTimeHours: spec.Factory.MaterialLeadTimeHours,
	}
	if err := snap.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("factory: %w", err)
	}

	for _, p := range spec.Presets {
		if p.ID == "" {
			return nil, fmt.Errorf("preset without id")
		}
		if p.UnitsPerCycle <= 0 || p.CycleHours <= 0 {
			return nil, fmt.Errorf("preset %s: units_per_cycle and cycle_hours must be positive", p.ID)
		}
		snap.Presets[p.ID] = model.Preset{
			ID:             p.ID,
			UnitsPerCycle:  p.UnitsPerCycle,
			CycleHours:     p.CycleHours,
			GramsPerCycle:  p.GramsPerCycle,
			AllowedAtNight: p.AllowedAtNight,
			RiskLevel:      p.RiskLevel,
		}
	}

	for _, p := range spec.Projects {
		if p.ID == "" {
			return nil, fmt.Errorf("project without id")
		}
		if _, ok := snap.Presets[p.PresetID]; !ok {
			return nil, fmt.Errorf("project %s: unknown preset %q", p.ID, p.PresetID)
		}
		due, err := time.Parse(time.RFC3339, p.DueDate)
		if err != nil {
			return nil, fmt.Errorf("project %s: due_date: %w", p.ID, err)
		}
		urgency, err := parseUrgency(p.Urgency)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", p.ID, err)
		}
		snap.Projects = append(snap.Projects, model.Project{
			ID:             p.ID,
			Name:           p.Name,
			Color:          p.Color,
			Material:       p.Material,
			DueDate:        due,
			RemainingUnits: p.RemainingUnits,
			Urgency:        urgency,
			PresetID:       p.PresetID,
		})
	}

	for _, p := range spec.Printers {
		if p.ID == "" {
			return nil, fmt.Errorf("printer without id")
		}
		snap.Printers = append(snap.Printers, model.Printer{
			ID:               p.ID,
			Name:             p.Name,
			HasMultiMaterial: p.MultiMaterial,
			CanRunAfterHours: p.CanRunAfterHours,
			PlateCapacity:    p.PlateCapacity,
			MountedColor:     p.MountedColor,
		})
	}

	for _, item := range spec.Inventory {
		key := material.NormalizeColor(item.Color)
		if key == "" {
			return nil, fmt.Errorf("inventory item without color")
		}
		snap.Inventory[key] = model.ColorInventoryItem{
			Color:            item.Color,
			Material:         item.Material,
			ClosedSpoolCount: item.ClosedSpoolCount,
			ClosedSpoolGrams: item.ClosedSpoolGrams,
			OpenGrams:        item.OpenGrams,
		}
	}

	return snap, nil
}

func parseClock(s string) (model.ClockTime, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return model.ClockTime{}, fmt.Errorf("invalid time %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return model.ClockTime{}, fmt.Errorf("time %q out of range", s)
	}
	return model.ClockTime{Hour: h, Minute: m}, nil
}

func parseUrgency(s string) (model.Urgency, error) {
	switch strings.ToLower(s) {
	case "", "normal":
		return model.UrgencyNormal, nil
	case "high":
		return model.UrgencyHigh, nil
	case "critical":
		return model.UrgencyCritical, nil
	default:
		return model.UrgencyNormal, fmt.Errorf("unknown urgency %q", s)
	}
}
