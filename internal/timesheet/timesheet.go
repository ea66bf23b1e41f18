// Package timesheet turns calendar events and work schedules into a
// reconciled, per-day timesheet report.
package timesheet

import (
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/tartampluch/go-timetrack/internal/config"
	"github.com/tartampluch/go-timetrack/internal/engine"
)

// Report is the outcome of one timesheet run.
type Report struct {
	GeneratedAt       time.Time                           `json:"generated_at"`
	Days              []engine.DayTask                    `json:"days"`
	Schedules         []engine.Schedule                   `json:"schedules"`
	Adjustments       []engine.Adjustment                 `json:"adjustments"`
	ExcludedEvents    []engine.Exclusion[engine.Event]    `json:"excluded_events"`
	ExcludedSchedules []engine.Exclusion[engine.Schedule] `json:"excluded_schedules"`
	Stats             Statistics                          `json:"stats"`
}

// Statistics summarizes a report.
type Statistics struct {
	From          string         `json:"from,omitempty"`
	To            string         `json:"to,omitempty"`
	NormalDays    int            `json:"normal_days"`
	PaidLeaveDays int            `json:"paid_leave_days"`
	Excluded      ExcludedCounts `json:"excluded"`
}

// ExcludedCounts counts excluded events by the reason of their first detail.
type ExcludedCounts struct {
	Ignored       int `json:"ignored"`
	OutOfSchedule int `json:"out_of_schedule"`
	Invalid       int `json:"invalid"`
}

// Builder runs the reconciliation for already loaded inputs.
type Builder struct {
	Settings *config.Settings
	Clock    engine.Clock
	Messages engine.Messages
}

// Build prefilters events, reconciles them against schedules and adds the
// paid-leave days. Every stage sees the same "now".
func (b *Builder) Build(events []engine.Event, schedules []engine.Schedule) (*Report, error) {
	clock := b.Clock
	if clock == nil {
		clock = engine.RealClock{}
	}
	now := clock.Now()

	rec, err := engine.NewReconciler(b.Settings, engine.FixedClock(now), b.Messages)
	if err != nil {
		return nil, err
	}

	// 1. Private, cancelled and ignored events
	enabled, prefiltered := Prefilter(events, b.Settings.Ignore, b.Messages)
	slog.Debug(config.MsgEventsPrefilter,
		config.LogKeyComponent, config.CompTimesheet,
		config.LogKeyIn, len(events),
		config.LogKeyOut, len(enabled),
	)

	// 2. Reconciliation
	res, err := rec.Reconcile(enabled, schedules)
	if err != nil {
		return nil, err
	}

	// 3. Paid leave
	paid, err := PaidLeaveDays(schedules, b.Settings.PaidLeave)
	if err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt:       now,
		Days:              mergeDays(res.Days, paid),
		Schedules:         res.Schedules,
		Adjustments:       res.Adjustments,
		ExcludedEvents:    append(prefiltered, res.ExcludedEvents...),
		ExcludedSchedules: res.ExcludedSchedules,
	}
	report.Stats = computeStats(report, len(paid))
	return report, nil
}

// PaidLeaveDays emits one day task per paid-leave schedule, holding a single
// synthetic event over the configured window. Without a window nothing is emitted.
func PaidLeaveDays(schedules []engine.Schedule, window *config.PaidLeaveSettings) ([]engine.DayTask, error) {
	var leave []engine.Schedule
	for _, s := range schedules {
		if s.IsPaidLeave {
			leave = append(leave, s)
		}
	}
	if len(leave) == 0 {
		return nil, nil
	}
	if window == nil {
		slog.Info(config.MsgPaidLeaveNoConf,
			config.LogKeyComponent, config.CompTimesheet,
			config.LogKeyCount, len(leave),
		)
		return nil, nil
	}

	from, to, err := window.Window()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(leave))
	days := make([]engine.DayTask, 0, len(leave))
	for _, s := range leave {
		key := s.DayKey()
		if seen[key] {
			continue
		}
		seen[key] = true

		days = append(days, engine.DayTask{
			Date: key,
			Events: []engine.Event{{
				UID:       config.PaidLeaveUIDPrefix + key,
				Name:      config.NamePaidLeave,
				Organizer: config.OrganizerAutomatic,
				Interval:  engine.Interval{Start: clockOn(s.Start, from), End: clockOn(s.Start, to)},
			}},
		})
	}
	return days, nil
}

// clockOn places a time-of-day offset on t's calendar day.
func clockOn(t time.Time, offset time.Duration) time.Time {
	y, m, d := t.Date()
	h := int(offset / time.Hour)
	mins := int(offset % time.Hour / time.Minute)
	return time.Date(y, m, d, h, mins, 0, 0, t.Location())
}

// mergeDays folds paid-leave tasks into the reconciled days, keeping date order.
func mergeDays(days, paid []engine.DayTask) []engine.DayTask {
	out := slices.Clone(days)
	for _, p := range paid {
		i := slices.IndexFunc(out, func(d engine.DayTask) bool { return d.Date == p.Date })
		if i < 0 {
			out = append(out, p)
			continue
		}
		out[i].Events = append(slices.Clone(out[i].Events), p.Events...)
	}
	slices.SortStableFunc(out, func(a, b engine.DayTask) int {
		return strings.Compare(a.Date, b.Date)
	})
	return out
}

func computeStats(r *Report, paidLeaveDays int) Statistics {
	st := Statistics{
		NormalDays:    len(r.Days) - paidLeaveDaysOnly(r.Days),
		PaidLeaveDays: paidLeaveDays,
	}
	if len(r.Days) > 0 {
		st.From = r.Days[0].Date
		st.To = r.Days[len(r.Days)-1].Date
	}

	for _, x := range r.ExcludedEvents {
		if len(x.Details) == 0 {
			continue
		}
		switch x.Details[0].Reason {
		case ReasonIgnored:
			st.Excluded.Ignored++
		case engine.ReasonOutOfSchedule:
			st.Excluded.OutOfSchedule++
		case engine.ReasonInvalid:
			st.Excluded.Invalid++
		}
	}
	return st
}

// paidLeaveDaysOnly counts days whose only content is a paid-leave event.
func paidLeaveDaysOnly(days []engine.DayTask) int {
	n := 0
	for _, d := range days {
		if len(d.BoundaryEvents) > 0 {
			continue
		}
		if !slices.ContainsFunc(d.Events, isWorkEvent) {
			n++
		}
	}
	return n
}

func isWorkEvent(ev engine.Event) bool {
	return !strings.HasPrefix(ev.UID, config.PaidLeaveUIDPrefix)
}
