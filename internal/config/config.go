package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Timetrack/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Timetrack"
	AppID             = "com.github.tartampluch.go-timetrack"
	KeyringService    = "com.github.tartampluch.go-timetrack"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	DefaultConfigFile = "timetrack.yaml"
	ReportIndent      = "  "
	ModeOnce          = "once"
	ModeServe         = "serve"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeUsage   = 2
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and written reports.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagConfig       = "config"
	FlagOut          = "out"
	FlagServe        = "serve"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescConfig   = "Path to the YAML settings file"
	FlagDescOut      = "Write the JSON report to this file instead of stdout"
	FlagDescServe    = "Serve the reconciled timeline over HTTP and refresh it on the configured schedule"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Reconciliation Defaults
// -----------------------------------------------------------------------------

const (
	// DefaultRoundingUnit is the rounding grid in minutes.
	DefaultRoundingUnit = 30

	// DefaultMaxDuration is the longest real event accepted by the validity checker.
	DefaultMaxDuration = 6 * time.Hour

	// DefaultMaxAgeDays is how far back an event may end before it is rejected.
	DefaultMaxAgeDays = 30

	// DefaultStartEndMinutes is the length of generated "work start"/"work end" markers.
	DefaultStartEndMinutes = 30

	DefaultEventRounding    = PolicyNonDuplicate
	DefaultScheduleRounding = PolicyStretch
	DefaultTimeCompare      = CompareSmall
	DefaultStartEndType     = StartEndBoth
	DefaultLanguage         = "en"
	DefaultTimezone         = "Local"
	DefaultPort             = "18080"
	DefaultRefreshCron      = "*/30 * * * *"
	DefaultLookbackDays     = 30

	// MinutesPerHour bounds the rounding unit: it must divide an hour evenly.
	MinutesPerHour = 60
	HoursPerDay    = 24

	// LastHourOfDay is the hour of the synthetic day end (23:{unit}).
	LastHourOfDay = 23

	// DayKeyLayout formats calendar-day bucket keys.
	DayKeyLayout = "2006-01-02"

	// ClockLayout is the HH:MM layout used in settings and schedule files.
	ClockLayout = "15:04"

	// DisplayLayout is used in log and debug text renderings of intervals.
	DisplayLayout = "2006-01-02 15:04"
)

// Rounding policy names. "backward" moves a time later and "forward" moves it
// earlier; the names are kept from the settings format users already have.
const (
	PolicyBackward     = "backward"
	PolicyForward      = "forward"
	PolicyRound        = "round"
	PolicyHalf         = "half"
	PolicyStretch      = "stretch"
	PolicyNonDuplicate = "nonduplicate"

	CompareSmall = "small"
	CompareLarge = "large"

	StartEndBoth  = "both"
	StartEndStart = "start"
	StartEndEnd   = "end"
	StartEndFill  = "fill"

	MatchPartial = "partial"
	MatchPrefix  = "prefix"
	MatchSuffix  = "suffix"
)

// Boundary event names and organizer.
const (
	NameWorkStart      = "work start"
	NameWorkMiddle     = "work middle"
	NameWorkEnd        = "work end"
	NamePaidLeave      = "paid leave"
	OrganizerAutomatic = "Automatic"
	PaidLeaveUIDPrefix = "paid-leave-"
)

// Name prefixes that mark an event as cancelled in exported calendars.
var CancelledPrefixes = []string{"Canceled:", "Cancelled:", "キャンセル済み:"}

// SupportedLanguages defines the list of available message languages (ISO 639-1).
var SupportedLanguages = []string{"en", "ja"}

// -----------------------------------------------------------------------------
// Message Keys (I18n)
// -----------------------------------------------------------------------------

// Message keys for exclusion and adjustment texts. Every key must exist in
// each locale file under internal/i18n/locales.
const (
	MKeyNoEnd            = "exclude_no_end"
	MKeyBelowUnit        = "exclude_below_unit"
	MKeyFuture           = "exclude_future"
	MKeyTooOld           = "exclude_too_old"
	MKeyTooLong          = "exclude_too_long"
	MKeyNotWorkDay       = "exclude_not_work_day"
	MKeyMissingEnd       = "exclude_missing_end"
	MKeyOutsideHours     = "exclude_outside_hours"
	MKeyClippedBelowUnit = "exclude_clipped_below_unit"
	MKeyCollapsed        = "exclude_collapsed"
	MKeyOutsideWindow    = "exclude_outside_window"
	MKeySuperseded       = "exclude_superseded"
	MKeyPrivate          = "exclude_private"
	MKeyCancelled        = "exclude_cancelled"
	MKeyIgnored          = "exclude_ignored"
	MKeyHoliday          = "exclude_holiday"
	MKeyScheduleError    = "exclude_schedule_error"
	MKeyAdjustedToHours  = "adjust_to_work_hours"
	MKeyShortenedOverlap = "adjust_shortened_overlap"

	// Template data fields.
	MDataDays     = "Days"
	MDataDuration = "Duration"
	MDataPattern  = "Pattern"
	MDataError    = "Error"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Timetrack//Feed//EN"
	ICalCalName = "Timesheet"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "gotimetrack"

	PropXWRCalName = "X-WR-CALNAME"
	PropRefresh    = "REFRESH-INTERVAL"
	PropXWorking   = "X-TIMETRACK-WORKING"

	ICalClassPrivate    = "PRIVATE"
	ICalTranspTransp    = "TRANSPARENT"
	ICalStatusCancelled = "CANCELLED"
	ICalCompCalendar    = "VCALENDAR"
	ICalCompEvent       = "VEVENT"

	FormatUID = "%s@%s"

	// FormatOverrideUID keys a RECURRENCE-ID override apart from its master event.
	FormatOverrideUID = "%s#%s"

	// MailtoPrefix is stripped from ORGANIZER values.
	MailtoPrefix = "mailto:"

	// MaxRecurrenceInstances caps RRULE expansion per event.
	MaxRecurrenceInstances = 1000

	DefaultICalRefresh = 1 * time.Hour

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	SchemeWebcal        = "webcal"
	SchemeWebcals       = "webcals"
	RouteRoot           = "/"
	RouteReport         = "/report"
	AddrSeparator       = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderAccept          = "Accept"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeAcceptCalendar  = "text/calendar, */*;q=0.5"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrMissingEnd          = "interval has no end time"
	ErrScheduleNotConvert  = "schedule is a holiday, has an error or no end time"
	ErrUnsupportedItem     = "item is neither an event nor a schedule"
	ErrUnknownPolicy       = "unknown rounding policy"
	ErrUnknownCompare      = "unknown time compare policy"
	ErrUnknownStartEndType = "unknown start/end type"
	ErrUnknownMatchMode    = "unknown ignore match mode"
	ErrInvalidUnit         = "rounding unit must be positive and divide 60"
	ErrStartEndMultiple    = "start/end minutes must be a positive multiple of the rounding unit"
	ErrScheduleNonDup      = "schedule rounding cannot use nonduplicate"
	ErrPaidLeaveWindow     = "paid leave window must be HH:MM with start before end"
	ErrTimezone            = "unknown timezone"
	ErrSettingsRead        = "failed to read settings file"
	ErrSettingsParse       = "failed to parse settings file"
	ErrSchedulesRead       = "failed to read schedules file"
	ErrSchedulesParse      = "failed to parse schedules file"
	ErrScheduleEntry       = "invalid schedule entry"
	ErrScheduleDate        = "schedule date must be YYYY-MM-DD"
	ErrScheduleClock       = "schedule time must be HH:MM"
	ErrSourceOpen          = "failed to open event source"
	ErrNoSource            = "configuration error: no event source configured"
	ErrFetcherMissing      = "internal error: network fetcher is not initialized"
	ErrCalDAVMissing       = "internal error: caldav source is not initialized"
	ErrICalDecode          = "failed to decode iCalendar stream"
	ErrICalEncode          = "failed to encode iCalendar data"
	ErrRecurrence          = "failed to expand recurrence rule"
	ErrReconcile           = "reconciliation failed"
	ErrEventNoSummary      = "event has no summary"
	ErrEventNoTimes        = "event needs a DATE-TIME start and end"
	ErrEventEndBeforeStart = "event ends before it starts"
	ErrEventTooOld         = "non-recurring event is older than the lookback window"
	ErrRequestCreate       = "failed to create request"
	ErrNetwork             = "network error during fetch"
	ErrUnexpectedStatus    = "server returned unexpected status"
	ErrCalDAVConnect       = "failed to connect to caldav server"
	ErrCalDAVQuery         = "failed to query caldav calendar"
	ErrNoCalendar          = "no calendar found in the user's home set"
	ErrPassword            = "failed to read password from keyring"
	ErrServerStartup       = "server startup failed"
	ErrServerShutdown      = "server shutdown failed"
	ErrPortRequired        = "server port is required"
	ErrInvalidURL          = "invalid URL structure"
	ErrProtocol            = "unsupported protocol scheme (http, https or webcal only)"
	ErrCronSpec            = "invalid refresh schedule"
	ErrLogFile             = "failed to open log file"
	ErrCacheDir            = "could not determine user cache dir"
	ErrCreateDir           = "could not create app cache dir"
	ErrAppFailed           = "application failed unexpectedly"
	ErrWriteResp           = "failed to write response body"
	ErrWriteReport         = "failed to write report"
	ErrEncodeReport        = "failed to encode report"
	ErrLocalesAccess       = "failed to access embedded locales"
	ErrLocaleLoad          = "failed to load locale file"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Timesheet initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgRunStarted       = "Timesheet run started"
	MsgRunFinished      = "Timesheet run finished"
	MsgRunFailed        = "Timesheet run failed"
	MsgStageDone        = "Reconciliation stage done"
	MsgScheduleSkipped  = "Skipping schedule for boundary events"
	MsgScheduleDupKey   = "Duplicate schedule for day, keeping the first"
	MsgDaySkipped       = "Fewer than two boundary events, skipping day"
	MsgIntervalDropped  = "Interval dropped after rounding"
	MsgCalendarOnly     = "No schedules supplied, processing calendar events only"
	MsgSkippedEvent     = "Skipping malformed VEVENT"
	MsgEventsDecoded    = "iCalendar events decoded"
	MsgFetchStarted     = "Initiating iCalendar download"
	MsgFetchStatus      = "Server returned error status"
	MsgFetchDownloading = "iCalendar downloading"
	MsgCalDAVQuery      = "Querying caldav calendar"
	MsgSchedulesLoaded  = "Schedules loaded"
	MsgFeedRendered     = "iCalendar feed rendered"
	MsgEventsPrefilter  = "Events prefiltered"
	MsgPaidLeaveNoConf  = "Paid-leave schedule found but no paid-leave window configured"
	MsgSourceRead       = "Event source read"
	MsgAppStarting      = "Starting application"
	MsgAppStop          = "Application stopped gracefully"
	MsgSettingsLoaded   = "Settings loaded"
	MsgReportWritten    = "Report written"
	MsgServerListen     = "HTTP server listening"
	MsgServerStop       = "Shutting down HTTP server..."
	MsgCacheUpdated     = "Timesheet cache updated"
	MsgRefreshAdded     = "Refresh schedule registered"
	MsgRefreshStop      = "Refresh scheduler stopped"
	MsgLocaleSkip       = "Skipping non-locale file"
	MsgLocaleBadName    = "Locale file has no language code"
	MsgLocaleLoaded     = "Locale loaded successfully"
	MsgTransMissing     = "Missing translation key"
	MsgPassFail         = "Password retrieval failed (might be empty)"
	MsgLogWarning       = "Warning: %s at %s: %v\n"
)

// Reconciliation stage names used in debug logs.
const (
	StageSchedules  = "schedules"
	StageChecked    = "checked"
	StageSplit      = "split"
	StageRounded    = "rounded"
	StageFiltered   = "filtered"
	StageBoundary   = "boundary"
	StageMerged     = "merged"
	StageDuplicates = "duplicates"
	StageFinal      = "final"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeySource    = "source"
	LogKeyStage     = "stage"
	LogKeyDay       = "day"
	LogKeyCount     = "count"
	LogKeyIn        = "in"
	LogKeyOut       = "out"
	LogKeyExcluded  = "excluded"
	LogKeyAdjusted  = "adjusted"
	LogKeyDays      = "days"
	LogKeyInterval  = "interval"
	LogKeyPolicy    = "policy"
	LogKeySpec      = "spec"
	LogKeyUser      = "user"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyStats     = "stats"
	LogKeyDuration  = "duration_ms"
	LogKeyLength    = "content_length"
	LogKeyCalendar  = "calendar"
	LogKeyMode      = "mode"
	LogKeyUID       = "uid"
	LogKeySummary   = "summary"
	LogKeyIndex     = "index"
	LogKeyNormal    = "normal_days"
	LogKeyPaidLeave = "paid_leave_days"
	LogKeyIgnored   = "ignored"
	LogKeyInvalid   = "invalid"
	LogKeyOutside   = "out_of_schedule"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine    = "engine"
	CompTimesheet = "timesheet"
	CompSource    = "source"
	CompFetcher   = "fetcher"
	CompCalDAV    = "caldav"
	CompServer    = "server"
	CompScheduler = "scheduler"
	CompMain      = "main"
	CompI18n      = "i18n"
	CompFeed      = "feed"
)
