package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-timetrack/internal/engine"
)

func marker(uid string, kind engine.WorkingEventType, iv engine.Interval) engine.Event {
	return engine.Event{UID: uid, Interval: iv, WorkingType: kind}
}

func TestMergeBoundaryEvents(t *testing.T) {
	boundary := []engine.Event{
		marker("end", engine.WorkingEnd, span(at(1, 17, 30), at(1, 18, 0))),
		marker("start", engine.WorkingStart, span(at(1, 9, 0), at(1, 9, 30))),
		marker("mid", engine.WorkingMiddle, span(at(1, 10, 0), at(1, 12, 0))),
	}
	calendar := []engine.Event{
		event("early", at(1, 9, 15), at(1, 10, 0)),
		event("lunch", at(1, 13, 0), at(1, 14, 0)),
		event("night", at(1, 19, 0), at(1, 20, 0)),
		event("other-day", at(2, 10, 0), at(2, 11, 0)),
	}

	res := engine.MergeBoundaryEvents(boundary, calendar)

	assert.Equal(t, []string{"early", "lunch"}, uids(res.Real))
	assert.Equal(t, span(at(1, 9, 0), at(1, 10, 0)), res.Real[0].Interval, "stretched back to the work start")
	assert.Equal(t, span(at(1, 13, 0), at(1, 14, 0)), res.Real[1].Interval)

	assert.Equal(t, []string{"mid", "end"}, uids(res.Boundary), "the absorbed start marker is gone")
	assert.ElementsMatch(t, []string{"night", "other-day"}, uids(res.Dropped))
}

func TestMergeBoundaryEvents_EndAbsorbed(t *testing.T) {
	boundary := []engine.Event{
		marker("start", engine.WorkingStart, span(at(1, 9, 0), at(1, 9, 30))),
		marker("end", engine.WorkingEnd, span(at(1, 17, 30), at(1, 18, 0))),
	}
	calendar := []engine.Event{event("late", at(1, 17, 0), at(1, 17, 45))}

	res := engine.MergeBoundaryEvents(boundary, calendar)

	require.Len(t, res.Real, 1)
	assert.Equal(t, span(at(1, 17, 0), at(1, 18, 0)), res.Real[0].Interval)
	assert.Equal(t, []string{"start"}, uids(res.Boundary))
	assert.Empty(t, res.Dropped)
}

func TestMergeBoundaryEvents_NoRealEvents(t *testing.T) {
	boundary := []engine.Event{
		marker("start", engine.WorkingStart, span(at(1, 9, 0), at(1, 9, 30))),
		marker("end", engine.WorkingEnd, span(at(1, 17, 30), at(1, 18, 0))),
	}

	res := engine.MergeBoundaryEvents(boundary, nil)
	assert.Empty(t, res.Real)
	assert.Equal(t, []string{"start", "end"}, uids(res.Boundary))
}

func TestMergeBoundaryEvents_SkipsDayWithOneMarker(t *testing.T) {
	boundary := []engine.Event{marker("start", engine.WorkingStart, span(at(1, 9, 0), at(1, 9, 30)))}
	calendar := []engine.Event{event("a", at(1, 10, 0), at(1, 11, 0))}

	res := engine.MergeBoundaryEvents(boundary, calendar)
	assert.Empty(t, res.Real)
	assert.Empty(t, res.Boundary)
	assert.Equal(t, []string{"a"}, uids(res.Dropped))
}
