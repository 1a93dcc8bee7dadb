package events

import "time"

// DeadlineRiskEvent is published for each project classified by Phase A.
type DeadlineRiskEvent struct {
	ProjectID   string
	Risk        string
	MarginHours float64
}

// CycleSkippedEvent records one candidate cycle removed from the plan.
// Reason is a machine-readable code such as "one_cycle_mode_limit".
type CycleSkippedEvent struct {
	CycleID   string
	ProjectID string
	PrinterID string
	Reason    string
}

// NightDroppedEvent is published when the filament gate fails and every
// night cycle for the printer is dropped at once.
type NightDroppedEvent struct {
	PrinterID      string
	Night          time.Time
	Color          string
	ShortfallGrams float64
	Cycles         int
}

// PreloadDecisionEvent records the plate grant for one printer.
type PreloadDecisionEvent struct {
	PrinterID string
	Date      time.Time
	Requested int
	Allocated int
	Deferred  int
	Strategy  string
}
