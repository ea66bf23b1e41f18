// Package source reads the inputs of a reconciliation run: calendar events
// from ICS files, ICS subscriptions and CalDAV, and work schedules from YAML.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/tartampluch/go-timetrack/internal/config"
	"github.com/tartampluch/go-timetrack/internal/engine"
)

// EventSource yields the calendar events of one configured input.
type EventSource interface {
	Name() string
	Events(ctx context.Context) ([]engine.Event, error)
}

// FileSource decodes a local .ics file.
type FileSource struct {
	Path    string
	Decoder *ICSDecoder
}

// Name identifies the source in logs.
func (s *FileSource) Name() string { return s.Path }

// Events decodes the file on every call so edits are picked up on refresh.
func (s *FileSource) Events(ctx context.Context) ([]engine.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSourceOpen, err)
	}
	defer func() { _ = f.Close() }()

	return s.Decoder.Decode(f)
}

// URLSource downloads and decodes an ICS subscription.
type URLSource struct {
	URL      string
	User     string
	Password string
	Fetcher  Fetcher
	Decoder  *ICSDecoder
}

// Name identifies the source in logs without leaking query tokens.
func (s *URLSource) Name() string {
	u, err := url.Parse(s.URL)
	if err != nil {
		return config.CompFetcher
	}
	return safeURL(u)
}

// Events fetches the subscription and decodes it.
func (s *URLSource) Events(ctx context.Context) ([]engine.Event, error) {
	if s.Fetcher == nil {
		return nil, errors.New(config.ErrFetcherMissing)
	}
	rc, err := s.Fetcher.Fetch(ctx, s.URL, s.User, s.Password)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return s.Decoder.Decode(rc)
}

// Open builds every event source named in the settings. Passwords of
// authenticated sources come from the OS keyring.
func Open(s *config.Settings, clock engine.Clock, fetcher Fetcher) ([]EventSource, error) {
	dec, err := NewICSDecoder(clock, s)
	if err != nil {
		return nil, err
	}

	var sources []EventSource
	for _, path := range s.Sources.ICSFiles {
		sources = append(sources, &FileSource{Path: path, Decoder: dec})
	}

	for _, remote := range s.Sources.ICSURLs {
		pass, err := LookupPassword(remote.User)
		if err != nil {
			return nil, err
		}
		sources = append(sources, &URLSource{
			URL:      remote.URL,
			User:     remote.User,
			Password: pass,
			Fetcher:  fetcher,
			Decoder:  dec,
		})
	}

	if cfg := s.Sources.CalDAV; cfg != nil {
		pass, err := LookupPassword(cfg.User)
		if err != nil {
			return nil, err
		}
		cal, err := NewCalDAVSource(cfg, pass, dec)
		if err != nil {
			return nil, err
		}
		sources = append(sources, cal)
	}

	if len(sources) == 0 {
		return nil, errors.New(config.ErrNoSource)
	}
	return sources, nil
}

// ReadAll collects the events of every source. Any failing source fails the run.
func ReadAll(ctx context.Context, sources []EventSource) ([]engine.Event, error) {
	var events []engine.Event
	for _, src := range sources {
		evs, err := src.Events(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", config.ErrSourceOpen, src.Name(), err)
		}
		slog.Debug(config.MsgSourceRead,
			config.LogKeyComponent, config.CompSource,
			config.LogKeySource, src.Name(),
			config.LogKeyCount, len(evs),
		)
		events = append(events, evs...)
	}
	sortEvents(events)
	return events, nil
}
