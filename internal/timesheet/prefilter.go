package timesheet

import (
	"strings"

	"github.com/tartampluch/go-timetrack/internal/config"
	"github.com/tartampluch/go-timetrack/internal/engine"
)

// ReasonIgnored marks events dropped by a user ignore pattern.
const ReasonIgnored engine.ExclusionReason = "ignored"

// Matches reports whether name matches the pattern in its match mode.
func Matches(p config.IgnorePattern, name string) bool {
	switch p.Match {
	case config.MatchPartial:
		return strings.Contains(name, p.Pattern)
	case config.MatchPrefix:
		return strings.HasPrefix(name, p.Pattern)
	case config.MatchSuffix:
		return strings.HasSuffix(name, p.Pattern)
	default:
		return false
	}
}

// Prefilter drops private, cancelled and ignored events before reconciliation.
// Private and cancelled events are invalid; pattern matches are ignored.
func Prefilter(events []engine.Event, patterns []config.IgnorePattern, msgs engine.Messages) ([]engine.Event, []engine.Exclusion[engine.Event]) {
	if msgs == nil {
		msgs = engine.EnglishMessages{}
	}

	enabled := make([]engine.Event, 0, len(events))
	var excluded []engine.Exclusion[engine.Event]

	exclude := func(ev engine.Event, reason engine.ExclusionReason, key string, data map[string]any) {
		excluded = append(excluded, engine.Exclusion[engine.Event]{
			Target:  ev,
			Details: []engine.ExclusionDetail{{Reason: reason, Message: msgs.Message(key, data)}},
		})
	}

	for _, ev := range events {
		switch {
		case ev.IsPrivate:
			exclude(ev, engine.ReasonInvalid, config.MKeyPrivate, nil)
		case ev.IsCancelled:
			exclude(ev, engine.ReasonInvalid, config.MKeyCancelled, nil)
		default:
			if p, ok := matchAny(patterns, ev.Name); ok {
				exclude(ev, ReasonIgnored, config.MKeyIgnored, map[string]any{config.MDataPattern: p.Pattern})
				continue
			}
			enabled = append(enabled, ev)
		}
	}
	return enabled, excluded
}

func matchAny(patterns []config.IgnorePattern, name string) (config.IgnorePattern, bool) {
	for _, p := range patterns {
		if Matches(p, name) {
			return p, true
		}
	}
	return config.IgnorePattern{}, false
}
