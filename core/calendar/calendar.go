// Package calendar resolves the weekly work schedule into concrete intervals:
// per-date work windows, the unattended night window between workdays, and
// the business day a timestamp belongs to.
package calendar

import (
	"time"

	"github.com/printforge/planner/core/model"
)

// DefaultMaxDaysAhead bounds the forward search for the next enabled workday.
const DefaultMaxDaysAhead = 14

// NightWindow is the interval between the end of a date's work hours and the
// start of the next enabled workday. It is derived on demand and never stored.
type NightWindow struct {
	Start          time.Time
	End            time.Time
	TotalHours     float64
	IsWeekendNight bool
	Mode           model.NightMode
}

// Calculator answers all schedule arithmetic for a fixed weekly schedule and
// after-hours policy. It is immutable and safe for concurrent use.
type Calculator struct {
	week model.WeekSchedule
	mode model.NightMode
}

// New creates a Calculator for the given weekly schedule and night mode.
func New(week model.WeekSchedule, mode model.NightMode) *Calculator {
	return &Calculator{week: week, mode: mode}
}

// Mode returns the configured after-hours policy.
func (c *Calculator) Mode() model.NightMode { return c.mode }

// ScheduleForDate returns the schedule of the weekday of date. The second
// return value is false when the day is disabled.
func (c *Calculator) ScheduleForDate(date time.Time) (model.DaySchedule, bool) {
	d := c.week.Day(date.Weekday())
	return d, d.Enabled
}

// WorkWindow resolves the concrete work interval for the given calendar date.
// A shift whose end time-of-day is earlier than its start crosses midnight
// and gets 24h added to its end instant.
func (c *Calculator) WorkWindow(date time.Time) (start, end time.Time, ok bool) {
	sched, enabled := c.ScheduleForDate(date)
	if !enabled {
		return time.Time{}, time.Time{}, false
	}
	start = sched.Start.On(date)
	end = sched.End.On(date)
	if sched.CrossesMidnight() {
		end = end.Add(24 * time.Hour)
	}
	return start, end, true
}

// NextWorkdayStart finds the first work-window start at or after from,
// searching forward day by day. maxDaysAhead caps the search; values <= 0
// fall back to DefaultMaxDaysAhead. The second return value is false when no
// enabled day exists within the cap.
func (c *Calculator) NextWorkdayStart(from time.Time, maxDaysAhead int) (time.Time, bool) {
	if maxDaysAhead <= 0 {
		maxDaysAhead = DefaultMaxDaysAhead
	}
	day := dateOf(from)
	for i := 0; i <= maxDaysAhead; i++ {
		if start, _, ok := c.WorkWindow(day.AddDate(0, 0, i)); ok && !start.Before(from) {
			return start, true
		}
	}
	return time.Time{}, false
}

// BusinessDayOf assigns the timestamp to the planning date whose work hours
// contain it. After-hours and disabled-day timestamps belong to the next
// enabled day. The second return value is false when no workday exists
// within the search cap.
func (c *Calculator) BusinessDayOf(t time.Time) (time.Time, bool) {
	if day, ok := c.containingWorkday(t); ok {
		return day, true
	}
	start, ok := c.NextWorkdayStart(t, DefaultMaxDaysAhead)
	if !ok {
		return time.Time{}, false
	}
	return dateOf(start), true
}

// OperatorPresent reports whether the timestamp falls inside a resolved work
// window. This is the single source of truth for day/night classification.
func (c *Calculator) OperatorPresent(t time.Time) bool {
	_, ok := c.containingWorkday(t)
	return ok
}

// containingWorkday returns the calendar date whose work window contains t.
// Cross-midnight shifts mean the previous date's window must be checked too.
func (c *Calculator) containingWorkday(t time.Time) (time.Time, bool) {
	day := dateOf(t)
	if start, end, ok := c.WorkWindow(day); ok && !t.Before(start) && t.Before(end) {
		return day, true
	}
	prev := day.AddDate(0, 0, -1)
	if start, end, ok := c.WorkWindow(prev); ok && !t.Before(start) && t.Before(end) {
		return prev, true
	}
	return time.Time{}, false
}

// NightWindow computes the unattended interval following the given date's
// work hours. The second return value is false when the date is disabled or
// no following workday exists; the zero NightWindow carries mode none.
func (c *Calculator) NightWindow(date time.Time) (NightWindow, bool) {
	_, end, ok := c.WorkWindow(date)
	if !ok {
		return NightWindow{}, false
	}
	nextStart, ok := c.NextWorkdayStart(end, DefaultMaxDaysAhead)
	if !ok {
		return NightWindow{}, false
	}
	return NightWindow{
		Start:          end,
		End:            nextStart,
		TotalHours:     nextStart.Sub(end).Hours(),
		IsWeekendNight: !dateOf(nextStart).Equal(dateOf(date).AddDate(0, 0, 1)),
		Mode:           c.mode,
	}, true
}

// InNight reports whether t falls inside the window.
func (w NightWindow) InNight(t time.Time) bool {
	if w.Start.IsZero() {
		return false
	}
	return !t.Before(w.Start) && t.Before(w.End)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
