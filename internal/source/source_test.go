package source_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-timetrack/internal/config"
	"github.com/tartampluch/go-timetrack/internal/engine"
	"github.com/tartampluch/go-timetrack/internal/source"
	"github.com/zalando/go-keyring"
)

// MockFetcher replaces network access in source tests.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if rc := args.Get(0); rc != nil {
		return rc.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSource is an in-memory EventSource.
type MockSource struct {
	name   string
	events []engine.Event
	err    error
}

func (m MockSource) Name() string { return m.name }

func (m MockSource) Events(context.Context) ([]engine.Event, error) { return m.events, m.err }

func TestURLSource_Events(t *testing.T) {
	body := vcalendar(vevent("UID:a", "SUMMARY:A", "DTSTART:20240205T090000Z", "DTEND:20240205T100000Z"))

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, "https://example.com/cal.ics", "alice", "pw").
		Return(io.NopCloser(strings.NewReader(body)), nil)

	src := &source.URLSource{
		URL:      "https://example.com/cal.ics",
		User:     "alice",
		Password: "pw",
		Fetcher:  fetcher,
		Decoder:  newDecoder(),
	}

	events, err := src.Events(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, uidsOf(events))
	fetcher.AssertExpectations(t)
}

func TestURLSource_Errors(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("boom"))

	src := &source.URLSource{URL: "https://example.com/cal.ics", Fetcher: fetcher, Decoder: newDecoder()}
	_, err := src.Events(context.Background())
	assert.ErrorContains(t, err, "boom")

	src.Fetcher = nil
	_, err = src.Events(context.Background())
	assert.ErrorContains(t, err, config.ErrFetcherMissing)
}

func TestURLSource_NameHidesQuery(t *testing.T) {
	src := &source.URLSource{URL: "https://example.com/cal.ics?token=secret"}
	assert.Equal(t, "https://example.com/cal.ics", src.Name())
}

func TestFileSource_Events(t *testing.T) {
	path := filepath.Join(t.TempDir(), "work.ics")
	body := vcalendar(vevent("UID:f", "SUMMARY:F", "DTSTART:20240205T090000Z", "DTEND:20240205T100000Z"))
	require.NoError(t, os.WriteFile(path, []byte(body), config.FilePermUserRW))

	src := &source.FileSource{Path: path, Decoder: newDecoder()}
	events, err := src.Events(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"f"}, uidsOf(events))

	src.Path = filepath.Join(t.TempDir(), "missing.ics")
	_, err = src.Events(context.Background())
	assert.ErrorContains(t, err, config.ErrSourceOpen)
}

func TestReadAll(t *testing.T) {
	a := engine.Event{UID: "late", Interval: engine.Interval{Start: testNow}}
	b := engine.Event{UID: "early", Interval: engine.Interval{Start: testNow.Add(-time.Hour)}}

	events, err := source.ReadAll(context.Background(), []source.EventSource{
		MockSource{name: "one", events: []engine.Event{a}},
		MockSource{name: "two", events: []engine.Event{b}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "late"}, uidsOf(events), "merged and sorted")

	_, err = source.ReadAll(context.Background(), []source.EventSource{
		MockSource{name: "broken", err: errors.New("down")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestOpen(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(config.KeyringService, "alice", "pw"))

	s := config.DefaultSettings()
	s.Timezone = "UTC"
	s.Sources.ICSFiles = []string{"a.ics"}
	s.Sources.ICSURLs = []config.RemoteSource{{URL: "https://example.com/cal.ics", User: "alice"}}
	s.Sources.CalDAV = &config.CalDAVSettings{URL: "https://dav.example.com/", User: "alice", Calendar: "/cal/work/"}

	sources, err := source.Open(s, engine.FixedClock(testNow), source.NewHTTPFetcher())
	require.NoError(t, err)
	require.Len(t, sources, 3)

	assert.IsType(t, &source.FileSource{}, sources[0])
	remote, ok := sources[1].(*source.URLSource)
	require.True(t, ok)
	assert.Equal(t, "pw", remote.Password, "password comes from the keyring")
	assert.IsType(t, &source.CalDAVSource{}, sources[2])
}

func TestOpen_NoSource(t *testing.T) {
	_, err := source.Open(config.DefaultSettings(), engine.FixedClock(testNow), nil)
	assert.ErrorContains(t, err, config.ErrNoSource)
}
