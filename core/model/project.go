package model

import "time"

// Urgency classifies how a project deadline was set by the operator.
type Urgency int

const (
	UrgencyNormal Urgency = iota
	UrgencyHigh
	UrgencyCritical
)

// String returns a human-readable representation of the urgency.
func (u Urgency) String() string {
	switch u {
	case UrgencyNormal:
		return "normal"
	case UrgencyHigh:
		return "high"
	case UrgencyCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Project represents an in-flight print job with an outstanding quantity.
type Project struct {
	ID             string
	Name           string
	Color          string
	Material       string
	DueDate        time.Time
	RemainingUnits int
	Urgency        Urgency
	PresetID       string
}

// Active reports whether the project still needs production.
func (p Project) Active() bool { return p.RemainingUnits > 0 }

// Preset describes the production parameters of a product on a printer.
type Preset struct {
	ID             string
	UnitsPerCycle  int
	CycleHours     float64
	GramsPerCycle  float64
	AllowedAtNight bool
	RiskLevel      string
}

// CycleDuration returns the cycle length as a duration.
func (p Preset) CycleDuration() time.Duration {
	return time.Duration(p.CycleHours * float64(time.Hour))
}
