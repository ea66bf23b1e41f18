package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-timetrack/internal/engine"
)

func TestRoundTime(t *testing.T) {
	tests := []struct {
		name    string
		in      time.Time
		roundUp bool
		unit    int
		want    time.Time
	}{
		{"Down to the half hour", at(1, 9, 15), false, 30, at(1, 9, 0)},
		{"Up to the half hour", at(1, 9, 15), true, 30, at(1, 9, 30)},
		{"Minute overflow carries into the hour", at(1, 9, 59), true, 30, at(1, 10, 0)},
		{"Hour overflow carries into the next day", at(1, 23, 45), true, 30, at(2, 0, 15)},
		{"Seconds are dropped", at(1, 9, 15).Add(42 * time.Second), false, 30, at(1, 9, 0)},
		{"Quarter-hour grid", at(1, 9, 20), true, 15, at(1, 9, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.RoundTime(tt.in, tt.roundUp, tt.unit))
		})
	}
}

func TestRoundTime_OnGridUnchanged(t *testing.T) {
	// A time on the grid keeps even its seconds.
	in := at(1, 9, 30).Add(45 * time.Second)
	assert.Equal(t, in, engine.RoundTime(in, true, 30))
	assert.Equal(t, in, engine.RoundTime(in, false, 30))
}

func TestRoundInterval_Policies(t *testing.T) {
	in := span(at(1, 9, 15), at(1, 10, 40))

	tests := []struct {
		policy engine.RoundingPolicy
		want   engine.Interval
		desc   string
	}{
		{engine.RoundBackward, span(at(1, 9, 30), at(1, 11, 0)), "backward moves both ends later"},
		{engine.RoundForward, span(at(1, 9, 0), at(1, 10, 30)), "forward moves both ends earlier"},
		{engine.RoundNearest, span(at(1, 9, 30), at(1, 10, 30)), "15 rounds up, 10 rounds down"},
		{engine.RoundHalf, span(at(1, 9, 30), at(1, 10, 30)), "half behaves like round"},
		{engine.RoundStretch, span(at(1, 9, 0), at(1, 11, 0)), "stretch widens both ends"},
		{engine.RoundNonDuplicate, span(at(1, 9, 0), at(1, 11, 0)), "nonduplicate widens when nothing collides"},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			got, ok, err := engine.RoundInterval(in, tt.policy, nil, 30)
			require.NoError(t, err)
			require.True(t, ok, tt.desc)
			assert.Equal(t, tt.want, got, tt.desc)
		})
	}
}

func TestRoundInterval_Idempotent(t *testing.T) {
	aligned := span(at(1, 9, 0), at(1, 10, 30))
	ctx := []engine.Interval{span(at(1, 8, 0), at(1, 9, 30))}

	for _, p := range []engine.RoundingPolicy{
		engine.RoundBackward, engine.RoundForward, engine.RoundNearest,
		engine.RoundHalf, engine.RoundStretch, engine.RoundNonDuplicate,
	} {
		t.Run(string(p), func(t *testing.T) {
			once, ok, err := engine.RoundInterval(aligned, p, ctx, 30)
			require.NoError(t, err)
			require.True(t, ok)
			twice, ok, err := engine.RoundInterval(once, p, ctx, 30)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, aligned, twice)
		})
	}
}

func TestRoundInterval_Collapse(t *testing.T) {
	tests := []struct {
		name   string
		in     engine.Interval
		policy engine.RoundingPolicy
	}{
		{"Forward collapses to zero length", span(at(1, 9, 15), at(1, 9, 20)), engine.RoundForward},
		{"Backward collapses to zero length", span(at(1, 9, 15), at(1, 9, 20)), engine.RoundBackward},
		{"Reversed interval", span(at(1, 10, 0), at(1, 9, 15)), engine.RoundForward},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := engine.RoundInterval(tt.in, tt.policy, nil, 30)
			require.NoError(t, err, "collapse is a soft outcome")
			assert.False(t, ok)
		})
	}
}

func TestRoundInterval_NonDuplicateFallback(t *testing.T) {
	t.Run("Start falls back to rounding up", func(t *testing.T) {
		ctx := []engine.Interval{span(at(1, 8, 30), at(1, 9, 30))}
		got, ok, err := engine.RoundInterval(span(at(1, 9, 15), at(1, 11, 0)), engine.RoundNonDuplicate, ctx, 30)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, at(1, 9, 30), got.Start)
		assert.Equal(t, at(1, 11, 0), got.End)
	})

	t.Run("End falls back to rounding down", func(t *testing.T) {
		ctx := []engine.Interval{span(at(1, 10, 0), at(1, 11, 0))}
		got, ok, err := engine.RoundInterval(span(at(1, 9, 0), at(1, 10, 15)), engine.RoundNonDuplicate, ctx, 30)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, span(at(1, 9, 0), at(1, 10, 0)), got)
	})

	t.Run("Context on another day is ignored", func(t *testing.T) {
		ctx := []engine.Interval{span(at(2, 8, 30), at(2, 9, 30))}
		got, ok, err := engine.RoundInterval(span(at(1, 9, 15), at(1, 11, 0)), engine.RoundNonDuplicate, ctx, 30)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, at(1, 9, 0), got.Start)
	})
}

func TestRoundInterval_NearestThreshold(t *testing.T) {
	// With a 15-minute unit the threshold is 7.5 minutes.
	got, ok, err := engine.RoundInterval(span(at(1, 9, 7), at(1, 10, 8)), engine.RoundNearest, nil, 15)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, span(at(1, 9, 0), at(1, 10, 15)), got)
}

func TestRoundInterval_MissingEnd(t *testing.T) {
	_, _, err := engine.RoundInterval(engine.Interval{Start: at(1, 9, 15)}, engine.RoundStretch, nil, 30)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrMissingEnd)
}

func TestRoundInterval_UnknownPolicy(t *testing.T) {
	_, _, err := engine.RoundInterval(span(at(1, 9, 15), at(1, 11, 0)), "sideways", nil, 30)
	assert.Error(t, err)
}

func TestRoundEvent_ExcludesItself(t *testing.T) {
	ev := event("a", at(1, 9, 15), at(1, 11, 0))
	other := event("b", at(1, 11, 0), at(1, 12, 0))

	got, ok, err := engine.RoundEvent(ev, engine.RoundNonDuplicate, []engine.Event{ev, other}, 30)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", got.UID)
	assert.Equal(t, span(at(1, 9, 0), at(1, 11, 0)), got.Interval)
	assert.Equal(t, at(1, 9, 15), ev.Start, "input must not be mutated")
}

func TestRoundSchedule(t *testing.T) {
	s := schedule(at(1, 9, 10), at(1, 17, 50))
	got, ok, err := engine.RoundSchedule(s, engine.RoundStretch, 30)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, span(at(1, 9, 0), at(1, 18, 0)), got.Interval)
}

func TestParseRoundingPolicy(t *testing.T) {
	p, err := engine.ParseRoundingPolicy("backward")
	require.NoError(t, err)
	assert.Equal(t, engine.RoundBackward, p)

	_, err = engine.ParseRoundingPolicy("sideways")
	assert.Error(t, err)
}
