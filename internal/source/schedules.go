package source

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tartampluch/go-timetrack/internal/config"
	"github.com/tartampluch/go-timetrack/internal/engine"
	"gopkg.in/yaml.v3"
)

// ScheduleEntry is one row of a schedules file:
//
//   - date: 2024-02-05
//     start: "09:00"
//     end: "18:00"
//   - date: 2024-02-06
//     holiday: true
type ScheduleEntry struct {
	Date      string `yaml:"date"`
	Start     string `yaml:"start"`
	End       string `yaml:"end"`
	Holiday   bool   `yaml:"holiday"`
	PaidLeave bool   `yaml:"paid_leave"`
	Error     string `yaml:"error"`
}

// LoadSchedules reads a YAML schedules file.
func LoadSchedules(path string, loc *time.Location) ([]engine.Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSchedulesRead, err)
	}
	schedules, err := ParseSchedules(data, loc)
	if err != nil {
		return nil, err
	}

	slog.Info(config.MsgSchedulesLoaded,
		config.LogKeyComponent, config.CompSource,
		config.LogKeyFile, path,
		config.LogKeyCount, len(schedules),
	)
	return schedules, nil
}

// ParseSchedules decodes YAML schedule entries in loc.
//
// An unreadable date is fatal because the entry cannot be placed on a day.
// Unreadable clock times are kept as an errored schedule for that date so
// the run reports them instead of failing.
func ParseSchedules(data []byte, loc *time.Location) ([]engine.Schedule, error) {
	var entries []ScheduleEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSchedulesParse, err)
	}

	out := make([]engine.Schedule, 0, len(entries))
	for i, e := range entries {
		s, err := e.Schedule(loc)
		if err != nil {
			return nil, fmt.Errorf("%s #%d: %w", config.ErrScheduleEntry, i+1, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// Schedule converts the entry. An end at or before the start means the work
// day runs past midnight.
func (e ScheduleEntry) Schedule(loc *time.Location) (engine.Schedule, error) {
	day, err := time.ParseInLocation(config.DayKeyLayout, e.Date, loc)
	if err != nil {
		return engine.Schedule{}, fmt.Errorf("%s: %q", config.ErrScheduleDate, e.Date)
	}

	s := engine.Schedule{
		Interval:     engine.Interval{Start: day},
		IsHoliday:    e.Holiday,
		IsPaidLeave:  e.PaidLeave,
		ErrorMessage: e.Error,
	}
	if e.Start == "" {
		return s, nil
	}

	start, err := clockOn(day, e.Start)
	if err != nil {
		s.ErrorMessage = err.Error()
		return s, nil
	}
	s.Start = start

	if e.End == "" {
		return s, nil
	}
	end, err := clockOn(day, e.End)
	if err != nil {
		s.ErrorMessage = err.Error()
		return s, nil
	}
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	s.End = end
	return s, nil
}

// clockOn places an HH:MM clock time on day.
func clockOn(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse(config.ClockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %q", config.ErrScheduleClock, clock)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}
