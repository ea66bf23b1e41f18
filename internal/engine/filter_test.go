package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-timetrack/internal/engine"
)

func TestFilterBySchedule_NoSchedules(t *testing.T) {
	events := []engine.Event{
		event("a", at(1, 7, 0), at(1, 9, 0)),
		event("b", at(2, 20, 0), at(2, 22, 0)),
	}

	res := engine.FilterBySchedule(events, nil, 30, nil)

	require.Len(t, res.Enabled, 2)
	assert.Same(t, &events[0], &res.Enabled[0], "events pass through without copying")
	assert.Empty(t, res.Adjusted)
	assert.Empty(t, res.Excluded)
}

func TestFilterBySchedule(t *testing.T) {
	schedules := []engine.Schedule{
		schedule(at(1, 9, 0), at(1, 18, 0)),
		schedule(at(1, 13, 0), at(1, 14, 0)), // same day, ignored
		{Interval: engine.Interval{Start: at(3, 9, 0)}},
	}

	tests := []struct {
		name    string
		ev      engine.Event
		outcome string
		reason  engine.ExclusionReason
		message string
		want    engine.Interval
	}{
		{
			name:    "Inside work hours",
			ev:      event("a", at(1, 10, 0), at(1, 11, 0)),
			outcome: "enabled",
			want:    span(at(1, 10, 0), at(1, 11, 0)),
		},
		{
			name:    "Starts before work",
			ev:      event("a", at(1, 8, 0), at(1, 10, 0)),
			outcome: "adjusted",
			want:    span(at(1, 9, 0), at(1, 10, 0)),
		},
		{
			name:    "Ends after work",
			ev:      event("a", at(1, 17, 0), at(1, 19, 0)),
			outcome: "adjusted",
			want:    span(at(1, 17, 0), at(1, 18, 0)),
		},
		{
			name:    "No schedule for the day",
			ev:      event("a", at(2, 10, 0), at(2, 11, 0)),
			outcome: "excluded",
			reason:  engine.ReasonOutOfSchedule,
			message: "not a work day",
		},
		{
			name:    "Event without end",
			ev:      engine.Event{UID: "a", Interval: engine.Interval{Start: at(1, 10, 0)}},
			outcome: "excluded",
			reason:  engine.ReasonInvalid,
			message: "missing end time",
		},
		{
			name:    "Schedule without end",
			ev:      event("a", at(3, 10, 0), at(3, 11, 0)),
			outcome: "excluded",
			reason:  engine.ReasonInvalid,
			message: "missing end time",
		},
		{
			name:    "Ends when work starts",
			ev:      event("a", at(1, 7, 0), at(1, 9, 0)),
			outcome: "excluded",
			reason:  engine.ReasonOutOfSchedule,
			message: "outside work hours",
		},
		{
			name:    "Starts when work ends",
			ev:      event("a", at(1, 18, 0), at(1, 19, 0)),
			outcome: "excluded",
			reason:  engine.ReasonOutOfSchedule,
			message: "outside work hours",
		},
		{
			name:    "Clipped below unit",
			ev:      event("a", at(1, 8, 0), at(1, 9, 15)),
			outcome: "excluded",
			reason:  engine.ReasonInvalid,
			message: "adjustment left interval below unit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := engine.FilterBySchedule([]engine.Event{tt.ev}, schedules, 30, nil)

			switch tt.outcome {
			case "enabled":
				require.Len(t, res.Enabled, 1)
				assert.Equal(t, tt.want, res.Enabled[0].Interval)
			case "adjusted":
				require.Len(t, res.Adjusted, 1)
				adj := res.Adjusted[0]
				assert.Equal(t, tt.want, adj.Event.Interval)
				assert.Equal(t, tt.ev.Interval, adj.Old)
				assert.Equal(t, tt.ev.UID, adj.Event.UID)
				assert.NotEmpty(t, adj.Message)
			case "excluded":
				require.Len(t, res.Excluded, 1)
				x := res.Excluded[0]
				assert.Equal(t, tt.ev, x.Target)
				require.Len(t, x.Details, 1)
				assert.Equal(t, tt.reason, x.Details[0].Reason)
				assert.Equal(t, tt.message, x.Details[0].Message)
			}
		})
	}
}
