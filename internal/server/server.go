// Package server publishes the latest timesheet over HTTP: the reconciled
// timeline as an iCalendar feed and the full report as JSON.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-timetrack/internal/config"
)

// document is one rendered representation with its HTTP cache metadata.
type document struct {
	data         []byte
	mime         string
	etag         string
	lastModified string // RFC1123
}

// snapshot pairs the feed and the report of one run.
type snapshot struct {
	feed   *document
	report *document
}

// TimesheetServer serves the most recent snapshot. Reads are lock-free;
// Update swaps the whole snapshot at once.
type TimesheetServer struct {
	cache atomic.Pointer[snapshot]
	Port  string
}

// NewTimesheetServer creates a server bound to localhost on port.
func NewTimesheetServer(port string) *TimesheetServer {
	return &TimesheetServer{
		Port: port,
	}
}

// Handler returns the route table.
func (s *TimesheetServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.handleFeed)
	mux.HandleFunc(config.RouteReport, s.handleReport)
	return mux
}

// Start runs the HTTP server and blocks until ctx is cancelled.
func (s *TimesheetServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update replaces the served feed and report together.
func (s *TimesheetServer) Update(feed, report []byte) {
	now := time.Now()
	snap := &snapshot{
		feed:   newDocument(feed, config.MimeTextCalendar, now),
		report: newDocument(report, config.MimeJSON, now),
	}
	s.cache.Store(snap)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(feed)+len(report),
		config.LogKeyETag, snap.feed.etag,
	)
}

func newDocument(data []byte, mime string, modified time.Time) *document {
	hash := sha256.Sum256(data)
	return &document{
		data:         data,
		mime:         mime,
		etag:         fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:])),
		lastModified: modified.UTC().Format(http.TimeFormat),
	}
}

func (s *TimesheetServer) handleFeed(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != config.RouteRoot {
		http.NotFound(w, r)
		return
	}
	s.serve(w, r, func(snap *snapshot) *document { return snap.feed })
}

func (s *TimesheetServer) handleReport(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, func(snap *snapshot) *document { return snap.report })
}

// serve writes one document of the current snapshot with conditional GET support.
func (s *TimesheetServer) serve(w http.ResponseWriter, r *http.Request, pick func(*snapshot) *document) {
	// 1. Method
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	// 2. Readiness
	snap := s.cache.Load()
	if snap == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}
	doc := pick(snap)

	// 3. Headers
	w.Header().Set(config.HeaderContentType, doc.mime)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, doc.etag)
	w.Header().Set(config.HeaderLastModified, doc.lastModified)

	// 4. Conditional requests
	if notModified(r, doc) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	// 5. Body
	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(doc.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

func notModified(r *http.Request, doc *document) bool {
	if match := r.Header.Get(config.HeaderIfNoneMatch); match != "" {
		return match == doc.etag
	}
	since := r.Header.Get(config.HeaderIfModifiedSince)
	if since == "" {
		return false
	}
	clientTime, err := time.Parse(http.TimeFormat, since)
	if err != nil {
		return false
	}
	serverTime, err := time.Parse(http.TimeFormat, doc.lastModified)
	if err != nil {
		return false
	}
	return !serverTime.After(clientTime)
}
