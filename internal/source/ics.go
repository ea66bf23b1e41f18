package source

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"github.com/tartampluch/go-timetrack/internal/config"
	"github.com/tartampluch/go-timetrack/internal/engine"
)

var (
	errNoSummary      = errors.New(config.ErrEventNoSummary)
	errNoTimes        = errors.New(config.ErrEventNoTimes)
	errEndBeforeStart = errors.New(config.ErrEventEndBeforeStart)
	errTooOld         = errors.New(config.ErrEventTooOld)
)

// ICSDecoder turns iCalendar data into engine events.
//
// Only VEVENTs with a DATE-TIME start and end are kept; all-day entries carry
// no working time. RRULE occurrences between now-Lookback and now are stored
// in Event.Recurrence for the engine to expand.
type ICSDecoder struct {
	Clock    engine.Clock
	Lookback time.Duration

	// Location is applied to floating times and to every decoded time, so
	// day keys follow the user's zone. Nil means time.Local.
	Location *time.Location
}

// NewICSDecoder creates a decoder bound to the settings' zone and lookback window.
func NewICSDecoder(clock engine.Clock, s *config.Settings) (*ICSDecoder, error) {
	loc, err := s.Location()
	if err != nil {
		return nil, err
	}
	return &ICSDecoder{Clock: clock, Lookback: s.Lookback(), Location: loc}, nil
}

// Decode reads every VCALENDAR object in r. Malformed events are logged and
// skipped; only a broken stream is an error.
func (d *ICSDecoder) Decode(r io.Reader) ([]engine.Event, error) {
	dec := ical.NewDecoder(r)

	var events []engine.Event
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrICalDecode, err)
		}
		events = append(events, d.Calendar(cal)...)
	}

	sortEvents(events)

	slog.Debug(config.MsgEventsDecoded,
		config.LogKeyComponent, config.CompSource,
		config.LogKeyCount, len(events),
	)
	return events, nil
}

// Calendar converts the VEVENTs of one decoded calendar object.
func (d *ICSDecoder) Calendar(cal *ical.Calendar) []engine.Event {
	now := d.now()
	from := now.Add(-d.Lookback)

	// Days replaced by a RECURRENCE-ID override, per master UID.
	overridden := make(map[string]map[string]bool)

	var out []engine.Event
	for i, ve := range cal.Events() {
		ev, ov, err := d.event(ve, from, now)
		if err != nil {
			uid, _ := ve.Props.Text(ical.PropUID)
			summary, _ := ve.Props.Text(ical.PropSummary)
			slog.Warn(config.MsgSkippedEvent,
				config.LogKeyComponent, config.CompSource,
				config.LogKeyIndex, i,
				config.LogKeyUID, uid,
				config.LogKeySummary, summary,
				config.LogKeyError, err,
			)
			continue
		}
		if ov.master != "" {
			if overridden[ov.master] == nil {
				overridden[ov.master] = make(map[string]bool)
			}
			overridden[ov.master][ov.day] = true
		}
		out = append(out, ev)
	}

	for i := range out {
		days := overridden[out[i].UID]
		if len(days) == 0 || len(out[i].Recurrence) == 0 {
			continue
		}
		out[i].Recurrence = slices.DeleteFunc(out[i].Recurrence, func(t time.Time) bool {
			return days[engine.DayKey(t)]
		})
	}
	return out
}

// override names the occurrence a RECURRENCE-ID VEVENT replaces.
type override struct {
	master string
	day    string
}

// event converts one VEVENT. The override is set when the VEVENT replaces a
// single occurrence of a recurring event.
func (d *ICSDecoder) event(ve ical.Event, from, now time.Time) (engine.Event, override, error) {
	loc := d.location()

	summary, _ := ve.Props.Text(ical.PropSummary)
	if summary == "" {
		return engine.Event{}, override{}, errNoSummary
	}

	startProp := ve.Props.Get(ical.PropDateTimeStart)
	endProp := ve.Props.Get(ical.PropDateTimeEnd)
	if startProp == nil || isDate(startProp) || (endProp == nil && ve.Props.Get(ical.PropDuration) == nil) || isDate(endProp) {
		return engine.Event{}, override{}, errNoTimes
	}

	start, err := startProp.DateTime(loc)
	if err != nil {
		return engine.Event{}, override{}, err
	}
	end, err := ve.DateTimeEnd(loc)
	if err != nil {
		return engine.Event{}, override{}, err
	}
	start, end = start.In(loc), end.In(loc)
	if start.After(end) {
		return engine.Event{}, override{}, errEndBeforeStart
	}

	ev := engine.Event{
		UID:         textProp(ve, ical.PropUID),
		Name:        summary,
		Organizer:   strings.TrimPrefix(textProp(ve, ical.PropOrganizer), config.MailtoPrefix),
		Location:    textProp(ve, ical.PropLocation),
		IsPrivate:   strings.EqualFold(textProp(ve, ical.PropClass), config.ICalClassPrivate),
		IsCancelled: isCancelled(ve, summary),
		Interval:    engine.Interval{Start: start, End: end},
	}
	if ev.UID == "" {
		ev.UID = uuid.NewString()
	}

	var ov override
	if rid := ve.Props.Get(ical.PropRecurrenceID); rid != nil {
		replaced, err := rid.DateTime(loc)
		if err != nil {
			return engine.Event{}, override{}, err
		}
		ov = override{master: ev.UID, day: engine.DayKey(replaced.In(loc))}
		ev.UID = fmt.Sprintf(config.FormatOverrideUID, ev.UID, rid.Value)
	}

	set, err := ve.RecurrenceSet(loc)
	if err != nil {
		return engine.Event{}, override{}, fmt.Errorf("%s: %w", config.ErrRecurrence, err)
	}
	if set != nil {
		ev.Recurrence = occurrences(set, from, now, loc)
	}

	if engine.DayKey(start) < engine.DayKey(from) && len(ev.Recurrence) == 0 {
		return engine.Event{}, override{}, errTooOld
	}
	return ev, ov, nil
}

func (d *ICSDecoder) now() time.Time {
	if d.Clock == nil {
		return time.Now()
	}
	return d.Clock.Now()
}

func (d *ICSDecoder) location() *time.Location {
	if d.Location == nil {
		return time.Local
	}
	return d.Location
}

// occurrences lists the recurrence instants in [from, now], capped.
func occurrences(set *rrule.Set, from, now time.Time, loc *time.Location) []time.Time {
	all := set.Between(from, now, true)
	if len(all) > config.MaxRecurrenceInstances {
		all = all[:config.MaxRecurrenceInstances]
	}
	out := make([]time.Time, 0, len(all))
	for _, t := range all {
		out = append(out, t.In(loc))
	}
	return out
}

func isDate(prop *ical.Prop) bool {
	return prop != nil && prop.Params.Get(ical.ParamValue) == string(ical.ValueDate)
}

func isCancelled(ve ical.Event, summary string) bool {
	if strings.EqualFold(textProp(ve, ical.PropTransparency), config.ICalTranspTransp) ||
		strings.EqualFold(textProp(ve, ical.PropStatus), config.ICalStatusCancelled) {
		return true
	}
	for _, prefix := range config.CancelledPrefixes {
		if strings.HasPrefix(summary, prefix) {
			return true
		}
	}
	return false
}

func textProp(ve ical.Event, name string) string {
	prop := ve.Props.Get(name)
	if prop == nil {
		return ""
	}
	if v, err := prop.Text(); err == nil {
		return v
	}
	return prop.Value
}

// sortEvents orders by start, then by duration.
func sortEvents(events []engine.Event) {
	slices.SortStableFunc(events, func(a, b engine.Event) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Duration(), b.Duration())
	})
}
