package engine

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/tartampluch/go-timetrack/internal/config"
)

// DayTask is the reconciled timeline of one calendar day.
type DayTask struct {
	Date           string  `json:"date"`
	Events         []Event `json:"events"`
	BoundaryEvents []Event `json:"boundary_events"`
}

// Result is the full outcome of a reconciliation run.
type Result struct {
	Days              []DayTask             `json:"days"`
	Schedules         []Schedule            `json:"schedules"`
	Adjustments       []Adjustment          `json:"adjustments"`
	ExcludedEvents    []Exclusion[Event]    `json:"excluded_events"`
	ExcludedSchedules []Exclusion[Schedule] `json:"excluded_schedules"`
}

// Reconciler runs the whole pipeline: check, expand, split, round, filter,
// generate boundary markers, merge, resolve duplicates and check again.
// It holds no state between runs and is safe for concurrent use.
type Reconciler struct {
	Checker       Checker
	Unit          int
	EventRounding RoundingPolicy
	Compare       TimeCompare
	Boundary      BoundaryConfig
	Messages      Messages
}

// NewReconciler builds a Reconciler from validated settings.
func NewReconciler(s *config.Settings, clock Clock, msgs Messages) (*Reconciler, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	eventPolicy, err := ParseRoundingPolicy(s.Event.Rounding)
	if err != nil {
		return nil, err
	}
	schedulePolicy, err := ParseRoundingPolicy(s.Schedule.Rounding)
	if err != nil {
		return nil, err
	}
	compare, err := ParseTimeCompare(s.Event.DuplicatePriority)
	if err != nil {
		return nil, err
	}
	startEnd, err := ParseStartEndType(s.Schedule.StartEndType)
	if err != nil {
		return nil, err
	}

	return &Reconciler{
		Checker: Checker{
			Clock:       clock,
			MaxDuration: s.MaxDuration,
			MaxAge:      s.MaxAge(),
			Unit:        s.RoundingUnit,
			Messages:    msgs,
		},
		Unit:          s.RoundingUnit,
		EventRounding: eventPolicy,
		Compare:       compare,
		Boundary: BoundaryConfig{
			Type:     startEnd,
			Length:   time.Duration(s.Schedule.StartEndMinutes) * time.Minute,
			Rounding: schedulePolicy,
		},
		Messages: msgs,
	}, nil
}

// Reconcile turns raw events and schedules into per-day tasks.
// Inputs are never modified. An error means a contract violation inside the
// pipeline; every data problem is reported as an exclusion instead.
func (r *Reconciler) Reconcile(events []Event, schedules []Schedule) (*Result, error) {
	res := &Result{}

	// 1. Schedules
	raw, filterBy := r.usableSchedules(schedules, res)
	res.Schedules = raw
	r.logStage(config.StageSchedules, len(schedules), len(raw))

	// 2-3. Validity check, recurrence fan-out
	var valid []Event
	for _, ev := range events {
		instances := ExpandRecurrence(ev)
		ev.Recurrence = nil
		for _, e := range append([]Event{ev}, instances...) {
			if x, bad := r.Checker.CheckEvent(e); bad {
				res.ExcludedEvents = append(res.ExcludedEvents, x)
				continue
			}
			valid = append(valid, e)
		}
	}
	r.logStage(config.StageChecked, len(events), len(valid))

	// 4. Day split
	split := flatten(SplitAcrossDays(GroupByDay(valid), r.Unit))
	r.logStage(config.StageSplit, len(valid), len(split))

	// 5. Rounding, with every split event as collision context
	var rounded []Event
	for _, ev := range split {
		out, ok, err := RoundEvent(ev, r.EventRounding, split, r.Unit)
		if err != nil {
			return nil, err
		}
		if !ok {
			res.exclude(ev, detail(r.Messages, ReasonInvalid, config.MKeyCollapsed, nil))
			continue
		}
		rounded = append(rounded, out)
	}
	r.logStage(config.StageRounded, len(split), len(rounded))

	// 6-8. Schedule filter, boundary markers, merge
	calendar := rounded
	var boundary []Event
	switch {
	case len(schedules) == 0:
		slog.Info(config.MsgCalendarOnly, config.LogKeyComponent, config.CompEngine)
	case len(raw) == 0:
		// Schedules were given but none is a work day.
		for _, ev := range rounded {
			res.exclude(ev, detail(r.Messages, ReasonOutOfSchedule, config.MKeyNotWorkDay, nil))
		}
		calendar = nil
	default:
		var err error
		calendar, boundary, err = r.fitToSchedules(rounded, raw, filterBy, res)
		if err != nil {
			return nil, err
		}
	}

	// 9. Duplicate resolution over real and boundary events together
	combined := append(slices.Clone(calendar), boundary...)
	before := intervalsByUID(combined)
	chain, superseded := ResolveDuplicatesByDay(GroupByDay(combined), r.Compare)
	for _, ev := range superseded {
		res.exclude(ev, detail(r.Messages, ReasonOutOfSchedule, config.MKeySuperseded, nil))
	}
	for _, ev := range chain {
		if old, ok := before[ev.UID]; ok && !old.Equal(ev.Interval) {
			res.Adjustments = append(res.Adjustments, Adjustment{
				Event:   ev,
				Old:     old,
				Message: message(r.Messages, config.MKeyShortenedOverlap, nil),
			})
		}
	}

	// 10. Final check
	var final []Event
	for _, ev := range chain {
		if x, bad := r.Checker.CheckEvent(ev); bad {
			res.ExcludedEvents = append(res.ExcludedEvents, x)
			continue
		}
		final = append(final, ev)
	}
	r.logStage(config.StageFinal, len(chain), len(final))

	// 11. Day tasks
	res.Days = buildDayTasks(final)
	return res, nil
}

// usableSchedules drops holidays, errored and invalid schedules, splits
// multi-day ones and returns them raw (for boundary markers) and rounded with
// the schedule policy (for the range filter).
func (r *Reconciler) usableSchedules(schedules []Schedule, res *Result) (raw, rounded []Schedule) {
	for _, s := range schedules {
		switch {
		case s.IsHoliday || s.IsPaidLeave:
			res.excludeSchedule(s, detail(r.Messages, ReasonOutOfSchedule, config.MKeyHoliday, nil))
			continue
		case s.ErrorMessage != "":
			res.excludeSchedule(s, detail(r.Messages, ReasonInvalid, config.MKeyScheduleError,
				map[string]any{config.MDataError: s.ErrorMessage}))
			continue
		}
		if x, bad := r.Checker.CheckSchedule(s); bad {
			res.ExcludedSchedules = append(res.ExcludedSchedules, x)
			slog.Debug(config.MsgScheduleSkipped,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyInterval, s.Interval.String())
			continue
		}

		for _, part := range SplitSchedule(s, r.Unit) {
			raw = append(raw, part)
			norm, ok, err := RoundSchedule(part, r.Boundary.Rounding, r.Unit)
			if err != nil || !ok {
				norm = part
			}
			rounded = append(rounded, norm)
		}
	}
	return raw, rounded
}

// fitToSchedules runs the range filter, generates boundary markers and merges them.
func (r *Reconciler) fitToSchedules(events []Event, raw, filterBy []Schedule, res *Result) ([]Event, []Event, error) {
	fr := FilterBySchedule(events, filterBy, r.Unit, r.Messages)
	res.ExcludedEvents = append(res.ExcludedEvents, fr.Excluded...)
	res.Adjustments = append(res.Adjustments, fr.Adjusted...)
	kept := slices.Clone(fr.Enabled)
	for _, adj := range fr.Adjusted {
		kept = append(kept, adj.Event)
	}
	slices.SortStableFunc(kept, byStart)
	r.logStage(config.StageFiltered, len(events), len(kept))

	var boundary []Event
	for _, s := range raw {
		markers, err := BoundaryEvents(s, r.Boundary, kept, r.Unit)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", s.DayKey(), err)
		}
		boundary = append(boundary, markers...)
	}
	r.logStage(config.StageBoundary, len(raw), len(boundary))

	before := intervalsByUID(kept)
	mr := MergeBoundaryEvents(boundary, kept)
	for _, ev := range mr.Dropped {
		res.exclude(ev, detail(r.Messages, ReasonOutOfSchedule, config.MKeyOutsideWindow, nil))
	}
	for _, ev := range mr.Real {
		if old, ok := before[ev.UID]; ok && !old.Equal(ev.Interval) {
			res.Adjustments = append(res.Adjustments, Adjustment{
				Event:   ev,
				Old:     old,
				Message: message(r.Messages, config.MKeyAdjustedToHours, nil),
			})
		}
	}
	r.logStage(config.StageMerged, len(kept), len(mr.Real))

	return mr.Real, mr.Boundary, nil
}

func (r *Reconciler) logStage(stage string, in, out int) {
	slog.Debug(config.MsgStageDone,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyStage, stage,
		config.LogKeyIn, in,
		config.LogKeyOut, out)
}

func (res *Result) exclude(ev Event, d ExclusionDetail) {
	res.ExcludedEvents = append(res.ExcludedEvents, Exclusion[Event]{Target: ev, Details: []ExclusionDetail{d}})
}

func (res *Result) excludeSchedule(s Schedule, d ExclusionDetail) {
	res.ExcludedSchedules = append(res.ExcludedSchedules, Exclusion[Schedule]{Target: s, Details: []ExclusionDetail{d}})
}

// flatten concatenates day buckets in day order.
func flatten(byDay map[string][]Event) []Event {
	var out []Event
	for _, key := range slices.Sorted(maps.Keys(byDay)) {
		out = append(out, byDay[key]...)
	}
	return out
}

// intervalsByUID remembers the first interval seen for each identity.
func intervalsByUID(events []Event) map[string]Interval {
	out := make(map[string]Interval, len(events))
	for _, e := range events {
		if _, ok := out[e.UID]; !ok {
			out[e.UID] = e.Interval
		}
	}
	return out
}

func buildDayTasks(events []Event) []DayTask {
	byDay := GroupByDay(events)
	days := make([]DayTask, 0, len(byDay))
	for _, key := range slices.Sorted(maps.Keys(byDay)) {
		task := DayTask{Date: key}
		for _, e := range byDay[key] {
			if e.IsBoundary() {
				task.BoundaryEvents = append(task.BoundaryEvents, e)
			} else {
				task.Events = append(task.Events, e)
			}
		}
		slices.SortStableFunc(task.Events, byStart)
		slices.SortStableFunc(task.BoundaryEvents, byStart)
		days = append(days, task)
	}
	return days
}
