package material

import (
	"github.com/printforge/planner/core/calendar"
	"github.com/printforge/planner/core/model"
)

// Reason codes returned by the night filament gate.
const (
	ReasonNoAfterHours       = "no_after_hours_configured"
	ReasonNoCyclesToValidate = "no_cycles_to_validate"
	ReasonInsufficientGrams  = "insufficient_filament"
	ReasonValidated          = "validated"
)

// Buffer constants. One-cycle mode adds a flat reserve; full mode reserves a
// share of the total demand with a floor.
const (
	OneCycleBufferGrams = 50.0
	FullBufferFraction  = 0.10
	FullBufferMinGrams  = 100.0
)

// NightValidation is the outcome of the filament gate for one printer night.
type NightValidation struct {
	CanPlanNight   bool
	Reason         string
	GramsRequired  float64
	GramsAvailable float64
	BufferGrams    float64
	Shortfall      float64
	Mode           model.NightMode
}

// ValidateNight decides whether the candidate night cycles can run with the
// available inventory for their color. It is a pure function: callers must
// invoke it before committing any night cycle and must drop the whole night
// when it fails.
//
// Mode rules:
//   - none: always fails.
//   - one_cycle: only the first candidate counts; buffer is a flat 50g.
//   - full: all candidates count; buffer is max(10% of demand, 100g).
func ValidateNight(cycles []model.PlannedCycle, available float64, window calendar.NightWindow) NightValidation {
	v := NightValidation{Mode: window.Mode, GramsAvailable: available}

	if window.Mode == model.NightModeNone {
		v.Reason = ReasonNoAfterHours
		return v
	}
	if len(cycles) == 0 {
		v.CanPlanNight = true
		v.Reason = ReasonNoCyclesToValidate
		return v
	}

	switch window.Mode {
	case model.NightModeOneCycle:
		v.BufferGrams = OneCycleBufferGrams
		v.GramsRequired = cycles[0].Grams + v.BufferGrams
	case model.NightModeFull:
		var total float64
		for _, c := range cycles {
			total += c.Grams
		}
		v.BufferGrams = total * FullBufferFraction
		if v.BufferGrams < FullBufferMinGrams {
			v.BufferGrams = FullBufferMinGrams
		}
		v.GramsRequired = total + v.BufferGrams
	}

	if shortfall := v.GramsRequired - v.GramsAvailable; shortfall > 0 {
		v.Shortfall = shortfall
		v.Reason = ReasonInsufficientGrams
		return v
	}
	v.CanPlanNight = true
	v.Reason = ReasonValidated
	return v
}
