package timesheet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-timetrack/internal/config"
	"github.com/tartampluch/go-timetrack/internal/engine"
	"github.com/tartampluch/go-timetrack/internal/source"
)

// Runner loads the configured inputs and builds a report from them.
type Runner struct {
	Settings *config.Settings
	Clock    engine.Clock
	Sources  []source.EventSource
	Messages engine.Messages

	// LoadSchedules reads the schedules file. Nil means source.LoadSchedules.
	LoadSchedules func(path string, loc *time.Location) ([]engine.Schedule, error)
}

// Run executes the acquire, reconcile and summarize pipeline.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompTimesheet,
		config.LogKeyCount, len(r.Sources),
	)
	log.InfoContext(ctx, config.MsgRunStarted)

	// 1. Events
	events, err := source.ReadAll(ctx, r.Sources)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	// 2. Schedules
	schedules, err := r.schedules()
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Reconciliation
	b := &Builder{Settings: r.Settings, Clock: r.Clock, Messages: r.Messages}
	report, err := b.Build(events, schedules)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrReconcile, err)
	}

	log.Info(config.MsgRunFinished,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyDays, len(report.Days)),
			slog.Int(config.LogKeyNormal, report.Stats.NormalDays),
			slog.Int(config.LogKeyPaidLeave, report.Stats.PaidLeaveDays),
			slog.Int(config.LogKeyAdjusted, len(report.Adjustments)),
			slog.Int(config.LogKeyIgnored, report.Stats.Excluded.Ignored),
			slog.Int(config.LogKeyInvalid, report.Stats.Excluded.Invalid),
			slog.Int(config.LogKeyOutside, report.Stats.Excluded.OutOfSchedule),
		),
	)
	log.Debug(config.MsgRunFinished, config.LogKeyDuration, time.Since(start).Milliseconds())
	return report, nil
}

func (r *Runner) schedules() ([]engine.Schedule, error) {
	path := r.Settings.Sources.SchedulesFile
	if path == "" {
		return nil, nil
	}
	loc, err := r.Settings.Location()
	if err != nil {
		return nil, err
	}
	load := r.LoadSchedules
	if load == nil {
		load = source.LoadSchedules
	}
	return load(path, loc)
}
