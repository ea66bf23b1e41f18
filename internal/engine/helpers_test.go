package engine_test

import (
	"time"

	"github.com/tartampluch/go-timetrack/internal/engine"
)

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// at builds a UTC time in February 2024.
func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.February, day, hour, minute, 0, 0, time.UTC)
}

func span(start, end time.Time) engine.Interval {
	return engine.Interval{Start: start, End: end}
}

func event(uid string, start, end time.Time) engine.Event {
	return engine.Event{UID: uid, Name: "Event " + uid, Interval: span(start, end)}
}

func schedule(start, end time.Time) engine.Schedule {
	return engine.Schedule{Interval: span(start, end)}
}

func uids(events []engine.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.UID)
	}
	return out
}
