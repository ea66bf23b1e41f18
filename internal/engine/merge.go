package engine

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/tartampluch/go-timetrack/internal/config"
)

// MergeResult is the outcome of reconciling boundary markers with real events.
type MergeResult struct {
	Real     []Event
	Boundary []Event
	// Dropped lists real events outside the work-day window or on a day
	// without a usable pair of markers.
	Dropped []Event
}

// MergeBoundaryEvents reconciles, day by day, the synthetic markers of a
// schedule with the real events of the same day.
//
// The first marker of a day is its start, the last its end, the rest are
// middles. A real event overlapping the start marker is stretched back to the
// marker start and absorbs it; the end marker works the same way forward.
// Days with fewer than two markers contribute nothing.
func MergeBoundaryEvents(boundary, real []Event) MergeResult {
	realByDay := GroupByDay(real)
	boundaryByDay := GroupByDay(boundary)

	var res MergeResult
	for _, key := range slices.Sorted(maps.Keys(realByDay)) {
		if len(boundaryByDay[key]) < 2 {
			res.Dropped = append(res.Dropped, realByDay[key]...)
		}
	}

	for _, key := range slices.Sorted(maps.Keys(boundaryByDay)) {
		markers := slices.Clone(boundaryByDay[key])
		if len(markers) < 2 {
			slog.Warn(config.MsgDaySkipped,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyDay, key,
				config.LogKeyCount, len(markers))
			continue
		}

		slices.SortStableFunc(markers, byStart)
		startItem := markers[0]
		endItem := markers[len(markers)-1]
		middle := markers[1 : len(markers)-1]

		startAbsorbed, endAbsorbed := false, false
		for _, ev := range realByDay[key] {
			if !ev.HasEnd() || !startItem.Start.Before(ev.End) || !endItem.End.After(ev.Start) {
				res.Dropped = append(res.Dropped, ev)
				continue
			}
			if startItem.Overlaps(ev.Interval) {
				startAbsorbed = true
				ev = ev.WithInterval(Interval{Start: startItem.Start, End: ev.End})
			}
			if endItem.Overlaps(ev.Interval) {
				endAbsorbed = true
				ev = ev.WithInterval(Interval{Start: ev.Start, End: endItem.End})
			}
			res.Real = append(res.Real, ev)
		}

		var day []Event
		if !startAbsorbed {
			day = append(day, startItem)
		}
		day = append(day, middle...)
		if !endAbsorbed {
			day = append(day, endItem)
		}
		slices.SortStableFunc(day, byStart)
		res.Boundary = append(res.Boundary, day...)
	}
	return res
}

func byStart(a, b Event) int {
	return a.Start.Compare(b.Start)
}
