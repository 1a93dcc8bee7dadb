package model

import (
	"fmt"
	"time"
)

// NightMode defines the factory after-hours operating policy.
type NightMode int

const (
	// NightModeNone disables unattended operation entirely.
	NightModeNone NightMode = iota
	// NightModeOneCycle allows a single unattended cycle per printer per night.
	NightModeOneCycle
	// NightModeFull allows back-to-back unattended cycles through the night.
	NightModeFull
)

// String returns a human-readable representation of the night mode.
func (m NightMode) String() string {
	switch m {
	case NightModeNone:
		return "none"
	case NightModeOneCycle:
		return "one_cycle"
	case NightModeFull:
		return "full"
	default:
		return "unknown"
	}
}

// ParseNightMode converts a configuration string into a NightMode.
func ParseNightMode(s string) (NightMode, error) {
	switch s {
	case "", "none":
		return NightModeNone, nil
	case "one_cycle":
		return NightModeOneCycle, nil
	case "full":
		return NightModeFull, nil
	default:
		return NightModeNone, fmt.Errorf("unknown night mode %q", s)
	}
}

// ClockTime is a time of day independent of any date.
type ClockTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Minutes returns the offset from midnight in minutes.
func (c ClockTime) Minutes() int { return c.Hour*60 + c.Minute }

// On anchors the clock time on the given calendar date in its location.
func (c ClockTime) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, 0, 0, date.Location())
}

// DaySchedule describes work hours for a single weekday. End may be
// numerically earlier than Start, meaning the shift crosses midnight.
type DaySchedule struct {
	Enabled bool      `json:"enabled"`
	Start   ClockTime `json:"start"`
	End     ClockTime `json:"end"`
}

// CrossesMidnight reports whether the shift ends on the following calendar day.
func (d DaySchedule) CrossesMidnight() bool {
	return d.End.Minutes() < d.Start.Minutes()
}

// WeekSchedule holds one DaySchedule per weekday, indexed by time.Weekday.
type WeekSchedule [7]DaySchedule

// Day returns the schedule for the given weekday.
func (w WeekSchedule) Day(wd time.Weekday) DaySchedule { return w[int(wd)] }

// HasEnabledDay reports whether at least one weekday is enabled.
func (w WeekSchedule) HasEnabledDay() bool {
	for _, d := range w {
		if d.Enabled {
			return true
		}
	}
	return false
}

// FactorySettings groups the factory-wide planning parameters.
type FactorySettings struct {
	Week                  WeekSchedule
	AfterHours            NightMode
	GlobalPlateCap        int
	MaterialLeadTimeHours float64
}

// Validate checks that the settings allow any planning at all.
func (s FactorySettings) Validate() error {
	if !s.Week.HasEnabledDay() {
		return fmt.Errorf("week schedule has no enabled day")
	}
	if s.GlobalPlateCap < 0 {
		return fmt.Errorf("global plate cap must not be negative")
	}
	return nil
}
