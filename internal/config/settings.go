package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the user configuration of a reconciliation run, loaded from YAML.
type Settings struct {
	// Timezone is the IANA zone used for day keys and schedule files ("Local" for the host zone).
	Timezone string `yaml:"timezone" json:"timezone"`

	// Language selects the message catalog for exclusion texts.
	Language string `yaml:"language" json:"language"`

	// RoundingUnit is the grid in minutes. It must divide an hour evenly.
	RoundingUnit int `yaml:"rounding_unit" json:"rounding_unit"`

	// MaxDuration rejects real events longer than this.
	MaxDuration time.Duration `yaml:"max_duration" json:"max_duration"`

	// MaxAgeDays rejects items that ended more than this many days ago.
	MaxAgeDays int `yaml:"max_age_days" json:"max_age_days"`

	// LookbackDays bounds recurrence expansion of ICS events.
	LookbackDays int `yaml:"lookback_days" json:"lookback_days"`

	Event     EventSettings      `yaml:"event" json:"event"`
	Schedule  ScheduleSettings   `yaml:"schedule" json:"schedule"`
	PaidLeave *PaidLeaveSettings `yaml:"paid_leave,omitempty" json:"paid_leave,omitempty"`
	Ignore    []IgnorePattern    `yaml:"ignore" json:"ignore"`
	Sources   SourceSettings     `yaml:"sources" json:"sources"`
	Server    ServerSettings     `yaml:"server" json:"server"`
}

// EventSettings controls how real calendar events are normalized.
type EventSettings struct {
	Rounding          string `yaml:"rounding" json:"rounding"`
	DuplicatePriority string `yaml:"duplicate_priority" json:"duplicate_priority"`
}

// ScheduleSettings controls generation of work start/middle/end events.
type ScheduleSettings struct {
	Rounding        string `yaml:"rounding" json:"rounding"`
	StartEndType    string `yaml:"start_end_type" json:"start_end_type"`
	StartEndMinutes int    `yaml:"start_end_minutes" json:"start_end_minutes"`
}

// PaidLeaveSettings is the clock window booked on paid-leave days.
type PaidLeaveSettings struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// IgnorePattern excludes events whose name matches Pattern.
type IgnorePattern struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Match   string `yaml:"match" json:"match"`
}

// SourceSettings lists where events and schedules come from.
type SourceSettings struct {
	ICSFiles      []string        `yaml:"ics_files" json:"ics_files"`
	ICSURLs       []RemoteSource  `yaml:"ics_urls" json:"ics_urls"`
	CalDAV        *CalDAVSettings `yaml:"caldav,omitempty" json:"caldav,omitempty"`
	SchedulesFile string          `yaml:"schedules_file" json:"schedules_file"`
}

// RemoteSource is an ICS subscription. The password, if any, lives in the OS keyring.
type RemoteSource struct {
	URL  string `yaml:"url" json:"url"`
	User string `yaml:"user" json:"user"`
}

// CalDAVSettings points at one calendar collection on a CalDAV server.
type CalDAVSettings struct {
	URL      string `yaml:"url" json:"url"`
	User     string `yaml:"user" json:"user"`
	Calendar string `yaml:"calendar" json:"calendar"`
}

// ServerSettings configures the feed server used with -serve.
type ServerSettings struct {
	Port    string `yaml:"port" json:"port"`
	Refresh string `yaml:"refresh" json:"refresh"`
}

// DefaultSettings returns an in-memory default configuration.
func DefaultSettings() *Settings {
	return &Settings{
		Timezone:     DefaultTimezone,
		Language:     DefaultLanguage,
		RoundingUnit: DefaultRoundingUnit,
		MaxDuration:  DefaultMaxDuration,
		MaxAgeDays:   DefaultMaxAgeDays,
		LookbackDays: DefaultLookbackDays,
		Event: EventSettings{
			Rounding:          DefaultEventRounding,
			DuplicatePriority: DefaultTimeCompare,
		},
		Schedule: ScheduleSettings{
			Rounding:        DefaultScheduleRounding,
			StartEndType:    DefaultStartEndType,
			StartEndMinutes: DefaultStartEndMinutes,
		},
		Server: ServerSettings{
			Port:    DefaultPort,
			Refresh: DefaultRefreshCron,
		},
	}
}

// LoadSettings reads a YAML file on top of DefaultSettings and validates the result.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSettingsRead, err)
	}
	return ParseSettings(data)
}

// ParseSettings decodes YAML bytes on top of DefaultSettings and validates the result.
func ParseSettings(data []byte) (*Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSettingsParse, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks cross-field rules. All violations are joined into one error.
func (s *Settings) Validate() error {
	var errs []error

	if s.RoundingUnit <= 0 || MinutesPerHour%s.RoundingUnit != 0 {
		errs = append(errs, fmt.Errorf("%s: %d", ErrInvalidUnit, s.RoundingUnit))
	} else if s.Schedule.StartEndMinutes <= 0 || s.Schedule.StartEndMinutes%s.RoundingUnit != 0 {
		errs = append(errs, fmt.Errorf("%s: %d", ErrStartEndMultiple, s.Schedule.StartEndMinutes))
	}

	policies := []string{PolicyBackward, PolicyForward, PolicyRound, PolicyHalf, PolicyStretch, PolicyNonDuplicate}
	if !slices.Contains(policies, s.Event.Rounding) {
		errs = append(errs, fmt.Errorf("%s: %q", ErrUnknownPolicy, s.Event.Rounding))
	}
	switch {
	case s.Schedule.Rounding == PolicyNonDuplicate:
		errs = append(errs, errors.New(ErrScheduleNonDup))
	case !slices.Contains(policies, s.Schedule.Rounding):
		errs = append(errs, fmt.Errorf("%s: %q", ErrUnknownPolicy, s.Schedule.Rounding))
	}

	if s.Event.DuplicatePriority != CompareSmall && s.Event.DuplicatePriority != CompareLarge {
		errs = append(errs, fmt.Errorf("%s: %q", ErrUnknownCompare, s.Event.DuplicatePriority))
	}

	startEnd := []string{StartEndBoth, StartEndStart, StartEndEnd, StartEndFill}
	if !slices.Contains(startEnd, s.Schedule.StartEndType) {
		errs = append(errs, fmt.Errorf("%s: %q", ErrUnknownStartEndType, s.Schedule.StartEndType))
	}

	for _, p := range s.Ignore {
		if p.Match != MatchPartial && p.Match != MatchPrefix && p.Match != MatchSuffix {
			errs = append(errs, fmt.Errorf("%s: %q", ErrUnknownMatchMode, p.Match))
		}
	}

	if s.PaidLeave != nil {
		if _, _, err := s.PaidLeave.Window(); err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := s.Location(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Location resolves Timezone. An empty value or "Local" means the host zone.
func (s *Settings) Location() (*time.Location, error) {
	if s.Timezone == "" || s.Timezone == DefaultTimezone {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrTimezone, err)
	}
	return loc, nil
}

// MaxAge converts MaxAgeDays to a duration.
func (s *Settings) MaxAge() time.Duration {
	return time.Duration(s.MaxAgeDays) * HoursPerDay * time.Hour
}

// Lookback converts LookbackDays to a duration.
func (s *Settings) Lookback() time.Duration {
	return time.Duration(s.LookbackDays) * HoursPerDay * time.Hour
}

// Window parses the paid-leave clock times as offsets from midnight.
func (p *PaidLeaveSettings) Window() (time.Duration, time.Duration, error) {
	start, errStart := time.Parse(ClockLayout, p.Start)
	end, errEnd := time.Parse(ClockLayout, p.End)
	if errStart != nil || errEnd != nil || !start.Before(end) {
		return 0, 0, fmt.Errorf("%s: %q-%q", ErrPaidLeaveWindow, p.Start, p.End)
	}
	return clockOffset(start), clockOffset(end), nil
}

func clockOffset(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
}
