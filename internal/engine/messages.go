package engine

import (
	"fmt"

	"github.com/tartampluch/go-timetrack/internal/config"
)

// Messages renders the human-readable text of an exclusion or adjustment.
// key is one of the config.MKey* constants; data carries template fields
// (config.MData*).
type Messages interface {
	Message(key string, data map[string]any) string
}

// EnglishMessages is the built-in catalog used when no localizer is injected.
type EnglishMessages struct{}

var englishTexts = map[string]string{
	config.MKeyNoEnd:            "no end time",
	config.MKeyBelowUnit:        "start/end identical or below rounding unit",
	config.MKeyFuture:           "future-dated",
	config.MKeyTooOld:           "older than %v days",
	config.MKeyTooLong:          "exceeds %v",
	config.MKeyNotWorkDay:       "not a work day",
	config.MKeyMissingEnd:       "missing end time",
	config.MKeyOutsideHours:     "outside work hours",
	config.MKeyClippedBelowUnit: "adjustment left interval below unit",
	config.MKeyCollapsed:        "interval collapsed after rounding",
	config.MKeyOutsideWindow:    "outside the work-day window",
	config.MKeySuperseded:       "superseded by an overlapping event",
	config.MKeyPrivate:          "private event",
	config.MKeyCancelled:        "cancelled event",
	config.MKeyIgnored:          "matches ignore pattern %v",
	config.MKeyHoliday:          "holiday",
	config.MKeyScheduleError:    "schedule error: %v",
	config.MKeyAdjustedToHours:  "adjusted to work hours",
	config.MKeyShortenedOverlap: "shortened to avoid an overlapping event",
}

// templateField names the single data field a parameterized text consumes.
var templateField = map[string]string{
	config.MKeyTooOld:        config.MDataDays,
	config.MKeyTooLong:       config.MDataDuration,
	config.MKeyIgnored:       config.MDataPattern,
	config.MKeyScheduleError: config.MDataError,
}

// Message implements Messages.
func (EnglishMessages) Message(key string, data map[string]any) string {
	text, ok := englishTexts[key]
	if !ok {
		return key
	}
	if field, ok := templateField[key]; ok {
		return fmt.Sprintf(text, data[field])
	}
	return text
}

func message(msgs Messages, key string, data map[string]any) string {
	if msgs == nil {
		msgs = EnglishMessages{}
	}
	return msgs.Message(key, data)
}

func detail(msgs Messages, reason ExclusionReason, key string, data map[string]any) ExclusionDetail {
	return ExclusionDetail{Reason: reason, Message: message(msgs, key, data)}
}
