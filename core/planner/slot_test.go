package planner

import (
	"testing"
	"time"

	"github.com/printforge/planner/core/model"
)

func TestPrinterTimeSlotPlates(t *testing.T) {
	day := time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)
	slot := NewPrinterTimeSlot(
		model.Printer{ID: "p1", CanRunAfterHours: true, PlateCapacity: 2},
		day.Add(8*time.Hour), day.Add(17*time.Hour), "work_window",
	)

	if got := slot.AvailablePlates(day.Add(9 * time.Hour)); got != 2 {
		t.Fatalf("available = %d, want 2", got)
	}
	if !slot.ReservePlate("c1", day.Add(9*time.Hour), day.Add(12*time.Hour)) {
		t.Fatalf("first reservation must succeed")
	}
	if !slot.ReservePlate("c2", day.Add(9*time.Hour), day.Add(11*time.Hour)) {
		t.Fatalf("second reservation must succeed")
	}
	if slot.ReservePlate("c3", day.Add(10*time.Hour), day.Add(13*time.Hour)) {
		t.Fatalf("capacity exhausted, reservation must fail")
	}
	// After the first release the plate frees up again.
	if got := slot.AvailablePlates(day.Add(11 * time.Hour)); got != 1 {
		t.Errorf("available after release = %d, want 1", got)
	}
}

func TestPrinterTimeSlotAdvance(t *testing.T) {
	day := time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)
	slot := NewPrinterTimeSlot(model.Printer{ID: "p1"}, day.Add(8*time.Hour), day.Add(17*time.Hour), "work_window")

	slot.Advance(day.Add(10 * time.Hour))
	if !slot.Current.Equal(day.Add(10 * time.Hour)) {
		t.Fatalf("cursor = %v", slot.Current)
	}
	slot.Advance(day.Add(9 * time.Hour)) // never moves backwards
	if !slot.Current.Equal(day.Add(10 * time.Hour)) {
		t.Fatalf("cursor moved backwards to %v", slot.Current)
	}
	if slot.DayHours() != 9 {
		t.Errorf("day hours = %v, want 9", slot.DayHours())
	}
}
