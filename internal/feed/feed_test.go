package feed_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-timetrack/internal/config"
	"github.com/tartampluch/go-timetrack/internal/engine"
	"github.com/tartampluch/go-timetrack/internal/feed"
)

func at(h, m int) time.Time {
	return time.Date(2024, 2, 5, h, m, 0, 0, time.UTC)
}

func TestRender(t *testing.T) {
	days := []engine.DayTask{{
		Date: "2024-02-05",
		Events: []engine.Event{{
			UID:      "standup",
			Name:     "Standup",
			Location: "Room 1",
			Interval: engine.Interval{Start: at(9, 0), End: at(10, 0)},
		}},
		BoundaryEvents: []engine.Event{{
			UID:         "marker",
			Name:        config.NameWorkEnd,
			WorkingType: engine.WorkingEnd,
			Interval:    engine.Interval{Start: at(17, 30), End: at(18, 0)},
		}},
	}}

	data, err := feed.Render(days, at(20, 0))
	require.NoError(t, err)

	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)

	name, err := cal.Props.Text(config.PropXWRCalName)
	require.NoError(t, err)
	assert.Equal(t, config.ICalCalName, name)

	events := cal.Events()
	require.Len(t, events, 2)

	uid, err := events[0].Props.Text(ical.PropUID)
	require.NoError(t, err)
	assert.Equal(t, "standup@"+config.ICalDomain, uid)

	start, err := events[0].DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.True(t, start.Equal(at(9, 0)))
	end, err := events[0].DateTimeEnd(time.UTC)
	require.NoError(t, err)
	assert.True(t, end.Equal(at(10, 0)))
	assert.Nil(t, events[0].Props.Get(config.PropXWorking), "real events are not marked")

	working, err := events[1].Props.Text(config.PropXWorking)
	require.NoError(t, err)
	assert.Equal(t, string(engine.WorkingEnd), working)
}

func TestRender_Empty(t *testing.T) {
	data, err := feed.Render(nil, at(20, 0))
	require.NoError(t, err)
	assert.Equal(t, config.StubVCalendar, string(data))
}
