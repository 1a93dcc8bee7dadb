package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CycleStatus tracks the lifecycle of a planned cycle.
type CycleStatus int

const (
	CyclePlanned CycleStatus = iota
	CycleInProgress
	CycleCompleted
	CycleCancelled
	CycleFailed
)

// String returns a human-readable representation of the status.
func (s CycleStatus) String() string {
	switch s {
	case CyclePlanned:
		return "planned"
	case CycleInProgress:
		return "in_progress"
	case CycleCompleted:
		return "completed"
	case CycleCancelled:
		return "cancelled"
	case CycleFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParseCycleStatus converts a stored string into a CycleStatus.
func ParseCycleStatus(s string) (CycleStatus, error) {
	switch s {
	case "planned":
		return CyclePlanned, nil
	case "in_progress":
		return CycleInProgress, nil
	case "completed":
		return CycleCompleted, nil
	case "cancelled":
		return CycleCancelled, nil
	case "failed":
		return CycleFailed, nil
	default:
		return CyclePlanned, fmt.Errorf("unknown cycle status %q", s)
	}
}

// CycleSource records whether a cycle was created by the allocator or by hand.
type CycleSource int

const (
	SourceAuto CycleSource = iota
	SourceManual
)

// String returns a human-readable representation of the source.
func (s CycleSource) String() string {
	if s == SourceManual {
		return "manual"
	}
	return "auto"
}

// PlannedCycle is the scheduling unit: one production run of a project on a
// printer, bounded by a start and end time. Completed and cancelled cycles
// are immutable.
type PlannedCycle struct {
	ID        string
	ProjectID string
	PrinterID string
	Start     time.Time
	End       time.Time
	Color     string
	Material  string
	Grams     float64
	Status    CycleStatus
	Source    CycleSource
	Locked    bool
}

// NewCycleID returns a fresh unique cycle identifier.
func NewCycleID() string { return uuid.NewString() }

// Duration returns the planned runtime of the cycle.
func (c PlannedCycle) Duration() time.Duration { return c.End.Sub(c.Start) }

// Mutable reports whether the cycle may still change status.
func (c PlannedCycle) Mutable() bool {
	return c.Status != CycleCompleted && c.Status != CycleCancelled
}

// Preserved reports whether the publisher must keep this cycle verbatim when
// replacing a plan: locked, manual and started cycles survive replans.
func (c PlannedCycle) Preserved() bool {
	return c.Locked || c.Source == SourceManual || c.Status == CycleInProgress
}

// Transition moves the cycle to the requested status, enforcing that
// terminal states are never left.
func (c *PlannedCycle) Transition(to CycleStatus) error {
	if !c.Mutable() {
		return fmt.Errorf("cycle %s is %s and cannot transition to %s", c.ID, c.Status, to)
	}
	c.Status = to
	return nil
}
