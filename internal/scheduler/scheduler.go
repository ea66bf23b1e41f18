// Package scheduler re-runs the timesheet on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tartampluch/go-timetrack/internal/config"
)

// Job is one refresh. Errors are logged and the schedule keeps going.
type Job func(ctx context.Context) error

// Refresher triggers Job on every tick of a standard five-field cron spec.
// Overlapping ticks are skipped while a run is still in progress.
type Refresher struct {
	Spec string
	Job  Job

	cron *cron.Cron
}

// NewRefresher validates spec and binds the cron clock to loc.
func NewRefresher(spec string, loc *time.Location, job Job) (*Refresher, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("%s %q: %w", config.ErrCronSpec, spec, err)
	}
	if loc == nil {
		loc = time.Local
	}

	return &Refresher{
		Spec: spec,
		Job:  job,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}, nil
}

// Run registers the job and blocks until ctx is cancelled, then waits for a
// running job to finish.
func (r *Refresher) Run(ctx context.Context) error {
	if _, err := r.cron.AddFunc(r.Spec, func() { r.fire(ctx) }); err != nil {
		return fmt.Errorf("%s %q: %w", config.ErrCronSpec, r.Spec, err)
	}

	r.cron.Start()
	slog.Info(config.MsgRefreshAdded,
		config.LogKeyComponent, config.CompScheduler,
		config.LogKeySpec, r.Spec,
	)

	<-ctx.Done()

	<-r.cron.Stop().Done()
	slog.Info(config.MsgRefreshStop, config.LogKeyComponent, config.CompScheduler)
	return nil
}

func (r *Refresher) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := r.Job(ctx); err != nil {
		slog.Error(config.MsgRunFailed,
			config.LogKeyComponent, config.CompScheduler,
			config.LogKeyError, err,
		)
	}
}
