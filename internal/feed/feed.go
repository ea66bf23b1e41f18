// Package feed renders reconciled day tasks as an iCalendar feed.
package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-timetrack/internal/config"
	"github.com/tartampluch/go-timetrack/internal/engine"
)

// Render encodes every event of days, boundary events included, as VEVENTs.
// An empty timeline yields a minimal valid VCALENDAR.
func Render(days []engine.DayTask, now time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, config.ICalVersion)
	cal.Props.SetText(ical.PropProductID, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(ical.PropCalendarScale, config.ICalScale)
	cal.Props.SetText(ical.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(ical.PropDateTimeStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, day := range days {
		for _, ev := range day.Events {
			cal.Children = append(cal.Children, vevent(ev, dtStampProp).Component)
		}
		for _, ev := range day.BoundaryEvents {
			cal.Children = append(cal.Children, vevent(ev, dtStampProp).Component)
		}
	}

	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgFeedRendered,
		config.LogKeyComponent, config.CompFeed,
		config.LogKeyCount, len(cal.Children),
		config.LogKeySizeBytes, buf.Len(),
	)
	return buf.Bytes(), nil
}

func vevent(ev engine.Event, dtStamp *ical.Prop) *ical.Event {
	e := ical.NewEvent()
	e.Props.SetText(ical.PropUID, fmt.Sprintf(config.FormatUID, ev.UID, config.ICalDomain))
	e.Props.SetText(ical.PropSummary, ev.Name)
	e.Props.SetDateTime(ical.PropDateTimeStart, ev.Start.UTC())
	if ev.HasEnd() {
		e.Props.SetDateTime(ical.PropDateTimeEnd, ev.End.UTC())
	}
	if ev.Location != "" {
		e.Props.SetText(ical.PropLocation, ev.Location)
	}
	if ev.IsBoundary() {
		e.Props.SetText(config.PropXWorking, string(ev.WorkingType))
	}
	e.Props.Set(dtStamp)
	return e
}
