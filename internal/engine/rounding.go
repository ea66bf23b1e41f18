package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-timetrack/internal/config"
)

// RoundTime snaps t to the unit grid (in minutes).
// A time already on the grid is returned unchanged. Otherwise seconds are
// dropped and the minutes move up to the next or down to the previous grid
// line; overflow carries into the hour and day (23:45 up by 30 is 00:00).
func RoundTime(t time.Time, roundUp bool, unit int) time.Time {
	mod := t.Minute() % unit
	if mod == 0 {
		return t
	}
	base := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
	if roundUp {
		return base.Add(time.Duration(unit-mod) * time.Minute)
	}
	return base.Add(-time.Duration(mod) * time.Minute)
}

// RoundInterval applies policy to both endpoints of iv.
// The returned bool is false when the rounded interval is empty, reversed or
// shorter than one unit. ctx is only consulted by RoundNonDuplicate.
func RoundInterval(iv Interval, policy RoundingPolicy, ctx []Interval, unit int) (Interval, bool, error) {
	if !iv.HasEnd() {
		return Interval{}, false, fmt.Errorf("%w: %s", ErrMissingEnd, iv)
	}

	startMod := iv.Start.Minute() % unit
	endMod := iv.End.Minute() % unit
	if startMod == 0 && endMod == 0 {
		return iv, true, nil
	}

	var out Interval
	switch policy {
	case RoundBackward:
		out = Interval{Start: RoundTime(iv.Start, true, unit), End: RoundTime(iv.End, true, unit)}
	case RoundForward:
		out = Interval{Start: RoundTime(iv.Start, false, unit), End: RoundTime(iv.End, false, unit)}
	case RoundNearest, RoundHalf:
		// Both policies round half up. They stay distinct settings values.
		out = Interval{
			Start: RoundTime(iv.Start, 2*startMod >= unit, unit),
			End:   RoundTime(iv.End, 2*endMod >= unit, unit),
		}
	case RoundStretch:
		out = Interval{Start: RoundTime(iv.Start, false, unit), End: RoundTime(iv.End, true, unit)}
	case RoundNonDuplicate:
		out = roundNonDuplicate(iv, ctx, unit)
	default:
		return Interval{}, false, fmt.Errorf("%s: %q", config.ErrUnknownPolicy, policy)
	}

	if !out.Start.Before(out.End) || out.Duration() < unitDuration(unit) {
		slog.Debug(config.MsgIntervalDropped,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyInterval, iv.String(),
			config.LogKeyPolicy, string(policy))
		return Interval{}, false, nil
	}
	return out, true, nil
}

// roundNonDuplicate widens each endpoint first (start down, end up) and falls
// back to the opposite direction when the widened endpoint would collide with ctx.
// Each endpoint is tested against the other, unrounded, endpoint.
func roundNonDuplicate(iv Interval, ctx []Interval, unit int) Interval {
	start := RoundTime(iv.Start, false, unit)
	if anyOverlap(Interval{Start: start, End: iv.End}, ctx) {
		start = RoundTime(iv.Start, true, unit)
	}

	end := RoundTime(iv.End, true, unit)
	if anyOverlap(Interval{Start: iv.Start, End: end}, ctx) {
		end = RoundTime(iv.End, false, unit)
	}

	return Interval{Start: start, End: end}
}

// RoundEvent rounds ev with the intervals of ctx as collision context.
// ev itself (matched by UID) is never part of its own context.
func RoundEvent(ev Event, policy RoundingPolicy, ctx []Event, unit int) (Event, bool, error) {
	iv, ok, err := RoundInterval(ev.Interval, policy, intervalsOf(ctx, ev.UID), unit)
	if err != nil || !ok {
		return Event{}, ok, err
	}
	return ev.WithInterval(iv), true, nil
}

// RoundSchedule rounds a schedule. Schedules never use collision context.
func RoundSchedule(s Schedule, policy RoundingPolicy, unit int) (Schedule, bool, error) {
	iv, ok, err := RoundInterval(s.Interval, policy, nil, unit)
	if err != nil || !ok {
		return Schedule{}, ok, err
	}
	s.Interval = iv
	return s, true, nil
}
