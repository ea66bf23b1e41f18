package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tartampluch/go-timetrack/internal/config"
)

// BoundaryConfig controls which markers a schedule produces.
type BoundaryConfig struct {
	Type     StartEndType
	Length   time.Duration
	Rounding RoundingPolicy
}

// BoundaryEvents synthesizes "work start", "work end" and, in fill mode,
// "work middle" events for one single-day schedule.
// Holiday, errored or open-ended schedules are a hard failure.
func BoundaryEvents(s Schedule, cfg BoundaryConfig, ctx []Event, unit int) ([]Event, error) {
	switch {
	case s.IsHoliday, s.ErrorMessage != "":
		return nil, fmt.Errorf("%w: %s", ErrScheduleNotConvertible, s.Interval)
	case !s.HasEnd():
		return nil, fmt.Errorf("%w: %w", ErrScheduleNotConvertible, ErrMissingEnd)
	}

	busy := intervalsOf(ctx, "")
	var out []Event
	var startEv, endEv *Event

	if cfg.Type != StartEndEnd {
		iv, ok, err := RoundInterval(Interval{Start: s.Start, End: s.Start.Add(cfg.Length)}, cfg.Rounding, busy, unit)
		if err != nil {
			return nil, err
		}
		if ok {
			if iv.Duration() > cfg.Length {
				iv.End = iv.Start.Add(cfg.Length)
			}
			ev := boundaryEvent(WorkingStart, config.NameWorkStart, iv)
			out = append(out, ev)
			startEv = &ev
		}
	}

	if cfg.Type != StartEndStart {
		iv, ok, err := RoundInterval(Interval{Start: s.End.Add(-cfg.Length), End: s.End}, cfg.Rounding, busy, unit)
		if err != nil {
			return nil, err
		}
		if ok {
			if iv.Duration() > cfg.Length {
				iv.Start = iv.End.Add(-cfg.Length)
			}
			ev := boundaryEvent(WorkingEnd, config.NameWorkEnd, iv)
			out = append(out, ev)
			endEv = &ev
		}
	}

	if cfg.Type == StartEndFill && startEv != nil && endEv != nil {
		for _, iv := range fillSlots(startEv.End, endEv.Start, busy, unit) {
			out = append(out, boundaryEvent(WorkingMiddle, config.NameWorkMiddle, iv))
		}
	}

	return out, nil
}

// fillSlots walks [from, to] day by day in unit-sized slots, drops slots that
// collide with ctx and merges the contiguous survivors.
func fillSlots(from, to time.Time, ctx []Interval, unit int) []Interval {
	step := unitDuration(unit)
	firstDay := startOfDay(from)
	lastDay := startOfDay(to)

	var merged []Interval
	for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		dayStart, dayEnd := day, endOfDay(day, unit)
		if day.Equal(firstDay) {
			dayStart = from
		}
		if day.Equal(lastDay) {
			dayEnd = to
		}

		for cur := dayStart; !cur.Add(step).After(dayEnd); cur = cur.Add(step) {
			slot := Interval{Start: cur, End: cur.Add(step)}
			if anyOverlap(slot, ctx) {
				continue
			}
			if n := len(merged); n > 0 && merged[n-1].End.Equal(slot.Start) {
				merged[n-1].End = slot.End
				continue
			}
			merged = append(merged, slot)
		}
	}
	return merged
}

func boundaryEvent(kind WorkingEventType, name string, iv Interval) Event {
	return Event{
		UID:         uuid.NewString(),
		Name:        name,
		Organizer:   config.OrganizerAutomatic,
		Interval:    iv,
		WorkingType: kind,
	}
}
