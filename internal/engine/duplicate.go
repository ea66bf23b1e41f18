package engine

import (
	"cmp"
	"log/slog"
	"maps"
	"slices"

	"github.com/tartampluch/go-timetrack/internal/config"
)

// NextEvent advances the greedy selection by one step. current is nil on the
// first call. The bool is false when no further event can be chained.
//
// Candidates end after current and are clipped to start at current.End when
// they overlap it. The earliest candidate is provisional; under CompareSmall
// it is shortened to the start of a shorter overlapping candidate.
// Under CompareLarge the provisional event is always kept as is.
func NextEvent(current *Event, events []Event, compare TimeCompare) (Event, bool) {
	var cands []Event
	for _, e := range events {
		if !e.HasEnd() {
			continue
		}
		if current == nil {
			cands = append(cands, e)
			continue
		}
		if !e.End.After(current.End) {
			continue
		}
		if e.Overlaps(current.Interval) {
			e = e.WithInterval(Interval{Start: current.End, End: e.End})
			if !e.Start.Before(e.End) {
				continue
			}
		}
		cands = append(cands, e)
	}
	if len(cands) == 0 {
		return Event{}, false
	}

	slices.SortStableFunc(cands, func(a, b Event) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return compareDuration(a, b, compare)
	})
	provisional := cands[0]

	var group []Event
	for _, e := range cands {
		if e.Overlaps(provisional.Interval) {
			group = append(group, e)
		}
	}
	if len(group) == 0 {
		return provisional, true
	}
	slices.SortStableFunc(group, func(a, b Event) int { return compareDuration(a, b, compare) })
	challenger := group[0]

	if provisional.Duration() <= challenger.Duration() {
		return provisional, true
	}
	return provisional.WithInterval(Interval{Start: provisional.Start, End: challenger.Start}), true
}

// compareDuration orders shorter first for CompareSmall and longer first otherwise.
func compareDuration(a, b Event, compare TimeCompare) int {
	if compare == CompareLarge {
		return cmp.Compare(b.Duration(), a.Duration())
	}
	return cmp.Compare(a.Duration(), b.Duration())
}

// ResolveDuplicates drives NextEvent to a fixed point over one day of events.
// excluded holds the events whose identity never appears in the chain.
func ResolveDuplicates(events []Event, compare TimeCompare) (chain, excluded []Event) {
	var current *Event
	for {
		next, ok := NextEvent(current, events, compare)
		if !ok {
			break
		}
		chain = append(chain, next)
		current = &chain[len(chain)-1]
	}

	kept := make(map[string]bool, len(chain))
	for _, e := range chain {
		kept[e.UID] = true
	}
	for _, e := range events {
		if !kept[e.UID] {
			excluded = append(excluded, e)
		}
	}
	return chain, excluded
}

// ResolveDuplicatesByDay runs ResolveDuplicates on each day bucket.
// Days come out in ascending order.
func ResolveDuplicatesByDay(byDay map[string][]Event, compare TimeCompare) (chain, excluded []Event) {
	for _, key := range slices.Sorted(maps.Keys(byDay)) {
		c, x := ResolveDuplicates(byDay[key], compare)
		slog.Debug(config.MsgStageDone,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyStage, config.StageDuplicates,
			config.LogKeyDay, key,
			config.LogKeyOut, len(c),
			config.LogKeyExcluded, len(x))
		chain = append(chain, c...)
		excluded = append(excluded, x...)
	}
	return chain, excluded
}
