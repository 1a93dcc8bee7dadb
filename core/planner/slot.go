package planner

import (
	"time"

	"github.com/printforge/planner/core/model"
)

// PlateUse marks one physical plate as occupied until its release time.
type PlateUse struct {
	CycleID   string
	ReleaseAt time.Time
}

// PrinterTimeSlot is the mutable scheduling cursor for one printer during a
// single allocation pass. It is owned by exactly one pass and discarded
// afterwards; it is never shared or persisted.
type PrinterTimeSlot struct {
	PrinterID     string
	Current       time.Time
	DayStart      time.Time
	DayEnd        time.Time
	NightEligible bool
	PlateCapacity int
	PlatesInUse   []PlateUse
	// BoundsReason records why the day boundary was set, for diagnostics.
	BoundsReason string
}

// NewPrinterTimeSlot positions a cursor at the start of the printer's work
// day.
func NewPrinterTimeSlot(p model.Printer, dayStart, dayEnd time.Time, reason string) *PrinterTimeSlot {
	return &PrinterTimeSlot{
		PrinterID:     p.ID,
		Current:       dayStart,
		DayStart:      dayStart,
		DayEnd:        dayEnd,
		NightEligible: p.CanRunAfterHours,
		PlateCapacity: p.PlateCapacity,
		BoundsReason:  reason,
	}
}

// AvailablePlates returns how many plates are free at the given instant.
func (s *PrinterTimeSlot) AvailablePlates(at time.Time) int {
	used := 0
	for _, p := range s.PlatesInUse {
		if p.ReleaseAt.After(at) {
			used++
		}
	}
	free := s.PlateCapacity - used
	if free < 0 {
		free = 0
	}
	return free
}

// ReservePlate marks a plate as occupied until release. It returns false
// when no plate is free at the reservation time.
func (s *PrinterTimeSlot) ReservePlate(cycleID string, from, release time.Time) bool {
	if s.AvailablePlates(from) == 0 {
		return false
	}
	s.PlatesInUse = append(s.PlatesInUse, PlateUse{CycleID: cycleID, ReleaseAt: release})
	return true
}

// Advance moves the cursor forward; it never moves backwards.
func (s *PrinterTimeSlot) Advance(to time.Time) {
	if to.After(s.Current) {
		s.Current = to
	}
}

// DayHours returns the length of the slot's work day in hours.
func (s *PrinterTimeSlot) DayHours() float64 {
	if s.DayEnd.Before(s.DayStart) {
		return 0
	}
	return s.DayEnd.Sub(s.DayStart).Hours()
}
