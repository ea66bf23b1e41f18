package engine

import (
	"maps"
	"slices"
	"time"

	"github.com/tartampluch/go-timetrack/internal/config"
)

// GroupByDay buckets events by the day key of their start.
func GroupByDay(events []Event) map[string][]Event {
	out := make(map[string][]Event)
	for _, e := range events {
		key := e.DayKey()
		out[key] = append(out[key], e)
	}
	return out
}

// SplitAcrossDays cuts every event that ends on a later day than its bucket
// into per-day fragments, each filed under its own day key:
//
//	first:  original start   -> 23:{unit} of the bucket day (keeps the identity)
//	middle: 00:00            -> 23:{unit} for each full day in between
//	last:   00:00            -> original end
//
// Events without an end, or ending on their bucket day, pass through.
// Empty buckets are omitted.
func SplitAcrossDays(byDay map[string][]Event, unit int) map[string][]Event {
	out := make(map[string][]Event)
	for _, key := range slices.Sorted(maps.Keys(byDay)) {
		for _, e := range byDay[key] {
			bucketDay, err := time.ParseInLocation(config.DayKeyLayout, key, e.Start.Location())
			if err != nil {
				bucketDay = startOfDay(e.Start)
			}

			parts := splitInterval(e.Interval, bucketDay, unit)
			if parts == nil {
				out[key] = append(out[key], e)
				continue
			}
			for i, iv := range parts {
				frag := e.WithInterval(iv)
				if i > 0 {
					frag = e.derive(iv, OriginFragment)
				}
				out[iv.DayKey()] = append(out[iv.DayKey()], frag)
			}
		}
	}
	return out
}

// SplitSchedule cuts a multi-day schedule the same way SplitAcrossDays cuts events.
func SplitSchedule(s Schedule, unit int) []Schedule {
	parts := splitInterval(s.Interval, startOfDay(s.Start), unit)
	if parts == nil {
		return []Schedule{s}
	}
	out := make([]Schedule, 0, len(parts))
	for _, iv := range parts {
		frag := s
		frag.Interval = iv
		out = append(out, frag)
	}
	return out
}

// splitInterval returns nil unless the end of iv falls on a calendar day
// after bucketDay. A final fragment ending exactly at midnight has no length
// and is not emitted.
func splitInterval(iv Interval, bucketDay time.Time, unit int) []Interval {
	if !iv.HasEnd() {
		return nil
	}
	end := iv.End.In(bucketDay.Location())
	days := calendarDaysBetween(bucketDay, end)
	if days <= 0 {
		return nil
	}

	out := []Interval{{Start: iv.Start, End: endOfDay(bucketDay, unit)}}
	y, m, d := bucketDay.Date()
	loc := bucketDay.Location()
	for i := 1; i < days; i++ {
		day := time.Date(y, m, d+i, 0, 0, 0, 0, loc)
		out = append(out, Interval{Start: day, End: endOfDay(day, unit)})
	}
	last := time.Date(y, m, d+days, 0, 0, 0, 0, loc)
	if end.After(last) {
		out = append(out, Interval{Start: last, End: end})
	}
	return out
}
