package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tartampluch/go-timetrack/internal/config"
)

// Interval is a start time and an optional end time.
// A zero End means the end is absent (an incomplete record).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end,omitzero"`
}

// Schedule is the work-day interval of one person on one day.
// Holiday or errored schedules never produce boundary events.
type Schedule struct {
	Interval
	IsHoliday    bool   `json:"is_holiday,omitempty"`
	IsPaidLeave  bool   `json:"is_paid_leave,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// WorkingEventType marks a synthetic boundary event. The zero value is a real event.
type WorkingEventType string

const (
	WorkingNone   WorkingEventType = ""
	WorkingStart  WorkingEventType = "start"
	WorkingMiddle WorkingEventType = "middle"
	WorkingEnd    WorkingEventType = "end"
)

// Origin records how an event came to exist.
type Origin int

const (
	// OriginSource is an event supplied by a calendar source, or the first
	// fragment of a day split, which keeps the source identity.
	OriginSource Origin = iota
	// OriginRecurrence is an instance produced from Event.Recurrence.
	OriginRecurrence
	// OriginFragment is a later fragment of a multi-day event.
	OriginFragment
)

func (o Origin) String() string {
	switch o {
	case OriginRecurrence:
		return "recurrence"
	case OriginFragment:
		return "fragment"
	default:
		return "source"
	}
}

// MarshalText makes Origin readable in JSON reports.
func (o Origin) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Event is a calendar event, real or synthetic.
type Event struct {
	UID         string `json:"uid"`
	Name        string `json:"name"`
	Organizer   string `json:"organizer,omitempty"`
	Location    string `json:"location,omitempty"`
	IsPrivate   bool   `json:"is_private,omitempty"`
	IsCancelled bool   `json:"is_cancelled,omitempty"`
	Interval

	// Recurrence lists the calendar dates of a recurring event. Time of day is ignored.
	Recurrence []time.Time `json:"recurrence,omitempty"`

	WorkingType WorkingEventType `json:"working_type,omitempty"`
	Origin      Origin           `json:"origin"`

	// ParentUID is the identity of the event this one was derived from.
	ParentUID string `json:"parent_uid,omitempty"`
}

// IsBoundary reports whether the event was synthesized from a schedule.
func (e Event) IsBoundary() bool {
	return e.WorkingType != WorkingNone
}

// WithInterval returns a copy of e over iv, keeping its identity.
func (e Event) WithInterval(iv Interval) Event {
	e.Interval = iv
	return e
}

// derive returns a copy of e over iv with a fresh identity and no recurrence.
func (e Event) derive(iv Interval, origin Origin) Event {
	parent := e.UID
	if e.ParentUID != "" {
		parent = e.ParentUID
	}
	e.Interval = iv
	e.UID = uuid.NewString()
	e.Recurrence = nil
	e.Origin = origin
	e.ParentUID = parent
	return e
}

// String renders the event for logs.
func (e Event) String() string {
	var b strings.Builder
	if e.IsPrivate {
		b.WriteString("[private] ")
	}
	if e.IsCancelled {
		b.WriteString("[cancelled] ")
	}
	b.WriteString(e.Name)
	if e.Organizer != "" {
		fmt.Fprintf(&b, " (%s)", e.Organizer)
	}
	b.WriteString(" ")
	b.WriteString(e.Interval.String())
	return b.String()
}

// RoundingPolicy selects how interval endpoints snap to the rounding grid.
type RoundingPolicy string

// Rounding policies. Note the direction of the first two: RoundBackward moves
// a time LATER (rounds up), RoundForward moves it EARLIER (rounds down).
const (
	RoundBackward     RoundingPolicy = config.PolicyBackward
	RoundForward      RoundingPolicy = config.PolicyForward
	RoundNearest      RoundingPolicy = config.PolicyRound
	RoundHalf         RoundingPolicy = config.PolicyHalf
	RoundStretch      RoundingPolicy = config.PolicyStretch
	RoundNonDuplicate RoundingPolicy = config.PolicyNonDuplicate
)

// ParseRoundingPolicy converts a settings value into a RoundingPolicy.
func ParseRoundingPolicy(s string) (RoundingPolicy, error) {
	switch p := RoundingPolicy(s); p {
	case RoundBackward, RoundForward, RoundNearest, RoundHalf, RoundStretch, RoundNonDuplicate:
		return p, nil
	}
	return "", fmt.Errorf("%s: %q", config.ErrUnknownPolicy, s)
}

// TimeCompare is the tie-break bias of the duplicate resolver.
type TimeCompare string

const (
	CompareSmall TimeCompare = config.CompareSmall
	CompareLarge TimeCompare = config.CompareLarge
)

// ParseTimeCompare converts a settings value into a TimeCompare.
func ParseTimeCompare(s string) (TimeCompare, error) {
	switch c := TimeCompare(s); c {
	case CompareSmall, CompareLarge:
		return c, nil
	}
	return "", fmt.Errorf("%s: %q", config.ErrUnknownCompare, s)
}

// StartEndType selects which boundary events a schedule produces.
type StartEndType string

const (
	StartEndBoth  StartEndType = config.StartEndBoth
	StartEndStart StartEndType = config.StartEndStart
	StartEndEnd   StartEndType = config.StartEndEnd
	StartEndFill  StartEndType = config.StartEndFill
)

// ParseStartEndType converts a settings value into a StartEndType.
func ParseStartEndType(s string) (StartEndType, error) {
	switch t := StartEndType(s); t {
	case StartEndBoth, StartEndStart, StartEndEnd, StartEndFill:
		return t, nil
	}
	return "", fmt.Errorf("%s: %q", config.ErrUnknownStartEndType, s)
}

// ExclusionReason classifies why an item left the pipeline.
type ExclusionReason string

const (
	ReasonInvalid       ExclusionReason = "invalid"
	ReasonOutOfSchedule ExclusionReason = "outOfSchedule"
)

// ExclusionDetail is one reason with its human-readable message.
type ExclusionDetail struct {
	Reason  ExclusionReason `json:"reason"`
	Message string          `json:"message"`
}

// Exclusion annotates a dropped item. The target itself is kept intact.
type Exclusion[T any] struct {
	Target  T                 `json:"target"`
	Details []ExclusionDetail `json:"details"`
}

// Has reports whether any detail carries reason r.
func (x Exclusion[T]) Has(r ExclusionReason) bool {
	for _, d := range x.Details {
		if d.Reason == r {
			return true
		}
	}
	return false
}

// Adjustment records an event whose interval was changed to fit.
type Adjustment struct {
	Event   Event    `json:"event"`
	Old     Interval `json:"old"`
	Message string   `json:"message"`
}
