package engine

import "time"

// ExpandRecurrence builds one instance of ev for each date in ev.Recurrence.
// Instances keep the time of day of ev and get a fresh identity with no
// recurrence of their own. The date of ev itself is skipped.
func ExpandRecurrence(ev Event) []Event {
	if len(ev.Recurrence) == 0 {
		return nil
	}

	base := ev.DayKey()
	loc := ev.Start.Location()

	// A multi-day source keeps the same number of calendar days between start and end.
	var endOffsetDays int
	if ev.HasEnd() {
		endOffsetDays = calendarDaysBetween(ev.Start, ev.End.In(loc))
	}

	seen := make(map[string]bool, len(ev.Recurrence))
	var out []Event
	for _, date := range ev.Recurrence {
		key := DayKey(date)
		if key == base || seen[key] {
			continue
		}
		seen[key] = true

		y, m, d := date.Date()
		iv := Interval{Start: time.Date(y, m, d, ev.Start.Hour(), ev.Start.Minute(), ev.Start.Second(), 0, loc)}
		if ev.HasEnd() {
			end := ev.End.In(loc)
			iv.End = time.Date(y, m, d+endOffsetDays, end.Hour(), end.Minute(), end.Second(), 0, loc)
		}
		out = append(out, ev.derive(iv, OriginRecurrence))
	}
	return out
}

// calendarDaysBetween counts calendar-day boundaries from a to b, ignoring time of day.
func calendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
