package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-timetrack/internal/engine"
)

func boundaryConfig(kind engine.StartEndType) engine.BoundaryConfig {
	return engine.BoundaryConfig{Type: kind, Length: 30 * time.Minute, Rounding: engine.RoundStretch}
}

func TestBoundaryEvents_Both(t *testing.T) {
	s := schedule(at(1, 9, 10), at(1, 17, 50))

	got, err := engine.BoundaryEvents(s, boundaryConfig(engine.StartEndBoth), nil, 30)
	require.NoError(t, err)
	require.Len(t, got, 2)

	start, end := got[0], got[1]
	assert.Equal(t, engine.WorkingStart, start.WorkingType)
	assert.Equal(t, "work start", start.Name)
	assert.Equal(t, span(at(1, 9, 0), at(1, 9, 30)), start.Interval, "stretched then clamped to the length")

	assert.Equal(t, engine.WorkingEnd, end.WorkingType)
	assert.Equal(t, "work end", end.Name)
	assert.Equal(t, span(at(1, 17, 30), at(1, 18, 0)), end.Interval)

	for _, e := range got {
		assert.Equal(t, "Automatic", e.Organizer)
		assert.NotEmpty(t, e.UID)
		assert.True(t, e.IsBoundary())
	}
}

func TestBoundaryEvents_StartOrEndOnly(t *testing.T) {
	s := schedule(at(1, 9, 0), at(1, 18, 0))

	got, err := engine.BoundaryEvents(s, boundaryConfig(engine.StartEndStart), nil, 30)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, engine.WorkingStart, got[0].WorkingType)

	got, err = engine.BoundaryEvents(s, boundaryConfig(engine.StartEndEnd), nil, 30)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, engine.WorkingEnd, got[0].WorkingType)
	assert.Equal(t, span(at(1, 17, 30), at(1, 18, 0)), got[0].Interval)
}

func TestBoundaryEvents_Fill(t *testing.T) {
	s := schedule(at(1, 9, 0), at(1, 12, 0))
	busy := []engine.Event{event("m", at(1, 10, 0), at(1, 10, 30))}

	got, err := engine.BoundaryEvents(s, boundaryConfig(engine.StartEndFill), busy, 30)
	require.NoError(t, err)
	require.Len(t, got, 4)

	var middles []engine.Interval
	for _, e := range got {
		if e.WorkingType == engine.WorkingMiddle {
			assert.Equal(t, "work middle", e.Name)
			middles = append(middles, e.Interval)
		}
	}
	assert.Equal(t, []engine.Interval{
		span(at(1, 9, 30), at(1, 10, 0)),
		span(at(1, 10, 30), at(1, 11, 30)),
	}, middles, "slots colliding with events are dropped, contiguous ones merged")
}

func TestBoundaryEvents_FillNoContext(t *testing.T) {
	s := schedule(at(1, 9, 0), at(1, 12, 0))

	got, err := engine.BoundaryEvents(s, boundaryConfig(engine.StartEndFill), nil, 30)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, engine.WorkingMiddle, got[2].WorkingType)
	assert.Equal(t, span(at(1, 9, 30), at(1, 11, 30)), got[2].Interval)
}

func TestBoundaryEvents_HardFailures(t *testing.T) {
	holiday := schedule(at(1, 9, 0), at(1, 18, 0))
	holiday.IsHoliday = true

	errored := schedule(at(1, 9, 0), at(1, 18, 0))
	errored.ErrorMessage = "unparseable row"

	open := engine.Schedule{Interval: engine.Interval{Start: at(1, 9, 0)}}

	for name, s := range map[string]engine.Schedule{"holiday": holiday, "errored": errored, "open": open} {
		t.Run(name, func(t *testing.T) {
			_, err := engine.BoundaryEvents(s, boundaryConfig(engine.StartEndBoth), nil, 30)
			assert.ErrorIs(t, err, engine.ErrScheduleNotConvertible)
		})
	}

	_, err := engine.BoundaryEvents(open, boundaryConfig(engine.StartEndBoth), nil, 30)
	assert.ErrorIs(t, err, engine.ErrMissingEnd)
}
