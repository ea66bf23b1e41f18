package engine

import (
	"fmt"
	"time"

	"github.com/tartampluch/go-timetrack/internal/config"
)

// Checker flags intervals that violate duration, age or future-date rules.
// Zero-valued limits fall back to the config defaults.
type Checker struct {
	Clock       Clock
	MaxDuration time.Duration
	MaxAge      time.Duration
	Unit        int
	Messages    Messages
}

// CheckEvent evaluates every rule against ev. The bool is true when at least
// one rule fired; all fired rules are reported together.
func (c Checker) CheckEvent(ev Event) (Exclusion[Event], bool) {
	details := c.details(ev.Interval, true)
	return Exclusion[Event]{Target: ev, Details: details}, len(details) > 0
}

// CheckSchedule is CheckEvent for schedules. Schedules are exempt from the
// maximum-duration rule.
func (c Checker) CheckSchedule(s Schedule) (Exclusion[Schedule], bool) {
	details := c.details(s.Interval, false)
	return Exclusion[Schedule]{Target: s, Details: details}, len(details) > 0
}

// Check accepts an Event or a Schedule (value or pointer) and returns the
// fired rules. Any other value is a hard failure.
func (c Checker) Check(item any) ([]ExclusionDetail, error) {
	switch v := item.(type) {
	case Event:
		return c.details(v.Interval, true), nil
	case *Event:
		if v != nil {
			return c.details(v.Interval, true), nil
		}
	case Schedule:
		return c.details(v.Interval, false), nil
	case *Schedule:
		if v != nil {
			return c.details(v.Interval, false), nil
		}
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedItem, item)
}

func (c Checker) details(iv Interval, isEvent bool) []ExclusionDetail {
	var out []ExclusionDetail
	now := c.now()
	unit := c.unit()

	if !iv.HasEnd() {
		out = append(out, detail(c.Messages, ReasonInvalid, config.MKeyNoEnd, nil))
	} else if !iv.Start.Before(iv.End) || iv.Duration() < unitDuration(unit) {
		out = append(out, detail(c.Messages, ReasonInvalid, config.MKeyBelowUnit, nil))
	}

	if iv.Start.After(now) {
		out = append(out, detail(c.Messages, ReasonOutOfSchedule, config.MKeyFuture, nil))
	}

	maxAge := c.maxAge()
	if iv.HasEnd() && iv.End.Before(now.Add(-maxAge)) {
		days := int(maxAge / (config.HoursPerDay * time.Hour))
		out = append(out, detail(c.Messages, ReasonOutOfSchedule, config.MKeyTooOld,
			map[string]any{config.MDataDays: days}))
	}

	maxDuration := c.maxDuration()
	if isEvent && iv.Duration() > maxDuration {
		out = append(out, detail(c.Messages, ReasonOutOfSchedule, config.MKeyTooLong,
			map[string]any{config.MDataDuration: maxDuration.String()}))
	}

	return out
}

func (c Checker) now() time.Time {
	if c.Clock == nil {
		return RealClock{}.Now()
	}
	return c.Clock.Now()
}

func (c Checker) unit() int {
	if c.Unit <= 0 {
		return config.DefaultRoundingUnit
	}
	return c.Unit
}

func (c Checker) maxAge() time.Duration {
	if c.MaxAge <= 0 {
		return time.Duration(config.DefaultMaxAgeDays) * config.HoursPerDay * time.Hour
	}
	return c.MaxAge
}

func (c Checker) maxDuration() time.Duration {
	if c.MaxDuration <= 0 {
		return config.DefaultMaxDuration
	}
	return c.MaxDuration
}
