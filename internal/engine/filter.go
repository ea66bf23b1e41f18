package engine

import (
	"log/slog"

	"github.com/tartampluch/go-timetrack/internal/config"
)

// FilterResult partitions events by how they relate to the work-day schedule.
type FilterResult struct {
	Enabled  []Event
	Adjusted []Adjustment
	Excluded []Exclusion[Event]
}

// FilterBySchedule clips each event to the schedule of its day.
// With no schedules every event is enabled as-is.
func FilterBySchedule(events []Event, schedules []Schedule, unit int, msgs Messages) FilterResult {
	if len(schedules) == 0 {
		return FilterResult{Enabled: events}
	}

	byDay := scheduleIndex(schedules)
	var res FilterResult

	for _, ev := range events {
		s, ok := byDay[ev.DayKey()]
		if !ok {
			res.exclude(ev, detail(msgs, ReasonOutOfSchedule, config.MKeyNotWorkDay, nil))
			continue
		}
		if !ev.HasEnd() || !s.HasEnd() {
			res.exclude(ev, detail(msgs, ReasonInvalid, config.MKeyMissingEnd, nil))
			continue
		}
		if !ev.End.After(s.Start) || !ev.Start.Before(s.End) {
			res.exclude(ev, detail(msgs, ReasonOutOfSchedule, config.MKeyOutsideHours, nil))
			continue
		}

		clipped := ev.Interval
		if clipped.Start.Before(s.Start) {
			clipped.Start = s.Start
		}
		if clipped.End.After(s.End) {
			clipped.End = s.End
		}
		if clipped.Duration() < unitDuration(unit) {
			res.exclude(ev, detail(msgs, ReasonInvalid, config.MKeyClippedBelowUnit, nil))
			continue
		}

		if clipped.Equal(ev.Interval) {
			res.Enabled = append(res.Enabled, ev)
			continue
		}
		res.Adjusted = append(res.Adjusted, Adjustment{
			Event:   ev.WithInterval(clipped),
			Old:     ev.Interval,
			Message: message(msgs, config.MKeyAdjustedToHours, nil),
		})
	}
	return res
}

func (r *FilterResult) exclude(ev Event, d ExclusionDetail) {
	r.Excluded = append(r.Excluded, Exclusion[Event]{Target: ev, Details: []ExclusionDetail{d}})
}

// scheduleIndex maps day keys to schedules. The first schedule of a day wins.
func scheduleIndex(schedules []Schedule) map[string]Schedule {
	out := make(map[string]Schedule, len(schedules))
	for _, s := range schedules {
		key := s.DayKey()
		if _, dup := out[key]; dup {
			slog.Warn(config.MsgScheduleDupKey,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyDay, key)
			continue
		}
		out[key] = s
	}
	return out
}
