package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-timetrack/internal/config"
	"github.com/tartampluch/go-timetrack/internal/scheduler"
)

func TestNewRefresher_Spec(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{name: "Default", spec: config.DefaultRefreshCron},
		{name: "Descriptor", spec: "@hourly"},
		{name: "Seconds field rejected", spec: "0 */5 * * * *", wantErr: true},
		{name: "Garbage", spec: "often", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scheduler.NewRefresher(tt.spec, time.UTC, func(context.Context) error { return nil })
			if tt.wantErr {
				assert.ErrorContains(t, err, config.ErrCronSpec)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRefresher_Run(t *testing.T) {
	var calls atomic.Int32
	r, err := scheduler.NewRefresher("@every 1s", time.UTC, func(context.Context) error {
		// A failing job does not stop later ticks.
		if calls.Add(1) == 1 {
			return errors.New("source offline")
		}
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("refresher did not stop")
	}
}
