package engine

import (
	"time"

	"github.com/tartampluch/go-timetrack/internal/config"
)

// HasEnd reports whether the end time is present.
func (iv Interval) HasEnd() bool {
	return !iv.End.IsZero()
}

// Duration returns End - Start, or zero when the end is absent.
func (iv Interval) Duration() time.Duration {
	if !iv.HasEnd() {
		return 0
	}
	return iv.End.Sub(iv.Start)
}

// Equal reports whether both endpoints denote the same instants.
func (iv Interval) Equal(other Interval) bool {
	return iv.Start.Equal(other.Start) && iv.End.Equal(other.End)
}

// DayKey returns the calendar date of Start in its own location.
func (iv Interval) DayKey() string {
	return DayKey(iv.Start)
}

// Overlaps reports whether two complete intervals on the same calendar day
// share any instant. Touching intervals ([9:00,10:00] and [10:00,11:00]) do
// not overlap. Intervals without an end or based on different days never overlap.
func (iv Interval) Overlaps(other Interval) bool {
	if !iv.HasEnd() || !other.HasEnd() {
		return false
	}
	if iv.DayKey() != other.DayKey() {
		return false
	}
	start := iv.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := iv.End
	if other.End.Before(end) {
		end = other.End
	}
	return start.Before(end)
}

// String renders the interval for logs.
func (iv Interval) String() string {
	if !iv.HasEnd() {
		return iv.Start.Format(config.DisplayLayout) + " - ?"
	}
	return iv.Start.Format(config.DisplayLayout) + " - " + iv.End.Format(config.DisplayLayout)
}

// DayKey formats the calendar date of t, e.g. "2024-02-01".
func DayKey(t time.Time) string {
	return t.Format(config.DayKeyLayout)
}

// startOfDay returns 00:00:00 of t's calendar day in t's location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// endOfDay returns the synthetic day end 23:{unit}:00 of t's calendar day.
func endOfDay(t time.Time, unit int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, config.LastHourOfDay, unit, 0, 0, t.Location())
}

// unitDuration converts a unit in minutes to a time.Duration.
func unitDuration(unit int) time.Duration {
	return time.Duration(unit) * time.Minute
}

// anyOverlap reports whether iv overlaps one of ctx.
func anyOverlap(iv Interval, ctx []Interval) bool {
	for _, c := range ctx {
		if iv.Overlaps(c) {
			return true
		}
	}
	return false
}

// intervalsOf extracts the intervals of events, skipping the one identified by exceptUID.
func intervalsOf(events []Event, exceptUID string) []Interval {
	out := make([]Interval, 0, len(events))
	for _, e := range events {
		if exceptUID != "" && e.UID == exceptUID {
			continue
		}
		out = append(out, e.Interval)
	}
	return out
}
