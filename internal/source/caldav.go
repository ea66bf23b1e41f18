package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/tartampluch/go-timetrack/internal/config"
	"github.com/tartampluch/go-timetrack/internal/engine"
)

// CalDAVSource reads events from one calendar collection with a
// calendar-query REPORT bounded to the lookback window.
type CalDAVSource struct {
	Client *caldav.Client

	// Calendar is the collection path. When empty, the first calendar of
	// the current user's home set is used.
	Calendar string

	Decoder *ICSDecoder
}

// NewCalDAVSource connects to the server with basic auth.
func NewCalDAVSource(cfg *config.CalDAVSettings, pass string, dec *ICSDecoder) (*CalDAVSource, error) {
	httpClient := webdav.HTTPClientWithBasicAuth(&http.Client{Timeout: config.HTTPTimeout}, cfg.User, pass)

	client, err := caldav.NewClient(httpClient, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrCalDAVConnect, err)
	}
	return &CalDAVSource{Client: client, Calendar: cfg.Calendar, Decoder: dec}, nil
}

// Name identifies the source in logs.
func (s *CalDAVSource) Name() string {
	return config.CompCalDAV + ":" + s.Calendar
}

// Events queries VEVENTs overlapping [now-lookback, now].
func (s *CalDAVSource) Events(ctx context.Context) ([]engine.Event, error) {
	if s.Client == nil || s.Decoder == nil {
		return nil, errors.New(config.ErrCalDAVMissing)
	}

	path, err := s.calendarPath(ctx)
	if err != nil {
		return nil, err
	}

	now := s.Decoder.now()
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:     config.ICalCompCalendar,
			AllProps: true,
			AllComps: true,
		},
		CompFilter: caldav.CompFilter{
			Name: config.ICalCompCalendar,
			Comps: []caldav.CompFilter{{
				Name:  config.ICalCompEvent,
				Start: now.Add(-s.Decoder.Lookback),
				End:   now,
			}},
		},
	}

	slog.Debug(config.MsgCalDAVQuery,
		config.LogKeyComponent, config.CompCalDAV,
		config.LogKeyCalendar, path,
	)

	objects, err := s.Client.QueryCalendar(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrCalDAVQuery, err)
	}

	var events []engine.Event
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		events = append(events, s.Decoder.Calendar(obj.Data)...)
	}
	sortEvents(events)

	slog.Debug(config.MsgEventsDecoded,
		config.LogKeyComponent, config.CompCalDAV,
		config.LogKeyCount, len(events),
	)
	return events, nil
}

// calendarPath resolves the configured collection, discovering it when unset.
func (s *CalDAVSource) calendarPath(ctx context.Context) (string, error) {
	if s.Calendar != "" {
		return s.Calendar, nil
	}

	principal, err := s.Client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCalDAVConnect, err)
	}
	homeSet, err := s.Client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCalDAVConnect, err)
	}
	cals, err := s.Client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCalDAVConnect, err)
	}
	if len(cals) == 0 {
		return "", fmt.Errorf("%s: %s", config.ErrCalDAVConnect, config.ErrNoCalendar)
	}

	s.Calendar = cals[0].Path
	return s.Calendar, nil
}
