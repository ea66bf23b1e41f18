package timesheet_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-timetrack/internal/engine"
	"github.com/tartampluch/go-timetrack/internal/source"
	"github.com/tartampluch/go-timetrack/internal/timesheet"
)

// MockSource is an in-memory event source.
type MockSource struct {
	events []engine.Event
	err    error
}

func (m MockSource) Name() string { return "mock" }

func (m MockSource) Events(context.Context) ([]engine.Event, error) { return m.events, m.err }

func newRunner(events []engine.Event, schedules []engine.Schedule) *timesheet.Runner {
	s := testSettings()
	s.Sources.SchedulesFile = "schedules.yaml"

	return &timesheet.Runner{
		Settings: s,
		Clock:    MockClock{CurrentTime: at(10, 20, 0)},
		Sources:  []source.EventSource{MockSource{events: events}},
		LoadSchedules: func(path string, loc *time.Location) ([]engine.Schedule, error) {
			if path != "schedules.yaml" || loc != time.UTC {
				return nil, errors.New("unexpected schedules file or zone")
			}
			return schedules, nil
		},
	}
}

func TestRunner_Run(t *testing.T) {
	events, schedules := testInputs()

	report, err := newRunner(events, schedules).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Days, 2)
	assert.Equal(t, 1, report.Stats.PaidLeaveDays)
}

func TestRunner_NoSchedulesFile(t *testing.T) {
	events, _ := testInputs()
	r := newRunner(events, nil)
	r.Settings.Sources.SchedulesFile = ""

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Days, 1, "calendar-only run")
	assert.Empty(t, report.Days[0].BoundaryEvents)
}

func TestRunner_Errors(t *testing.T) {
	t.Run("Source failure", func(t *testing.T) {
		r := newRunner(nil, nil)
		r.Sources = []source.EventSource{MockSource{err: errors.New("offline")}}

		_, err := r.Run(context.Background())
		assert.ErrorContains(t, err, "offline")
	})

	t.Run("Schedules failure", func(t *testing.T) {
		r := newRunner(nil, nil)
		r.LoadSchedules = func(string, *time.Location) ([]engine.Schedule, error) {
			return nil, errors.New("bad yaml")
		}

		_, err := r.Run(context.Background())
		assert.ErrorContains(t, err, "bad yaml")
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newRunner(nil, nil).Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
