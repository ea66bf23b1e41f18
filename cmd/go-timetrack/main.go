package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/tartampluch/go-timetrack/internal/config"
	"github.com/tartampluch/go-timetrack/internal/engine"
	"github.com/tartampluch/go-timetrack/internal/feed"
	"github.com/tartampluch/go-timetrack/internal/i18n"
	"github.com/tartampluch/go-timetrack/internal/scheduler"
	"github.com/tartampluch/go-timetrack/internal/server"
	"github.com/tartampluch/go-timetrack/internal/source"
	"github.com/tartampluch/go-timetrack/internal/timesheet"
)

// options holds the parsed command line.
type options struct {
	configPath  string
	outPath     string
	serve       bool
	debug       bool
	showVersion bool
}

// main delegates to runMain so deferred calls run before os.Exit.
func main() {
	os.Exit(runMain(os.Args[1:]))
}

// parseFlags reads the command line into options.
func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.StringVar(&opts.configPath, config.FlagConfig, config.DefaultConfigFile, config.FlagDescConfig)
	fs.StringVar(&opts.outPath, config.FlagOut, "", config.FlagDescOut)
	fs.BoolVar(&opts.serve, config.FlagServe, false, config.FlagDescServe)
	fs.BoolVar(&opts.debug, config.FlagDebug, false, config.FlagDescDebug)
	fs.BoolVar(&opts.showVersion, config.FlagVersion, false, config.FlagDescVersion)
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// runMain sets up logging and signals, runs once or serves, and maps the
// outcome to an exit code.
func runMain(args []string) int {
	opts, err := parseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		return config.ExitCodeSuccess
	}
	if err != nil {
		return config.ExitCodeUsage
	}
	if opts.showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	if logCloser := setupLogging(opts.debug); logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	if err := run(ctx, opts); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run loads settings, wires the sources and either writes one report or serves.
func run(ctx context.Context, opts options) error {
	settings, err := config.LoadSettings(opts.configPath)
	if err != nil {
		return err
	}

	mode := config.ModeOnce
	if opts.serve {
		mode = config.ModeServe
	}
	slog.Info(config.MsgSettingsLoaded,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyFile, opts.configPath,
		config.LogKeyLang, settings.Language,
		config.LogKeyMode, mode,
	)

	clock := engine.RealClock{}
	sources, err := source.Open(settings, clock, source.NewHTTPFetcher())
	if err != nil {
		return err
	}

	runner := &timesheet.Runner{
		Settings: settings,
		Clock:    clock,
		Sources:  sources,
		Messages: i18n.NewCatalog(settings.Language),
	}

	if opts.serve {
		return serve(ctx, runner)
	}

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	return writeReport(opts.outPath, report)
}

// serve publishes the report over HTTP and refreshes it on the cron schedule
// until ctx is cancelled.
func serve(ctx context.Context, runner *timesheet.Runner) error {
	settings := runner.Settings
	loc, err := settings.Location()
	if err != nil {
		return err
	}

	srv := server.NewTimesheetServer(settings.Server.Port)
	refresh := func(ctx context.Context) error {
		report, err := runner.Run(ctx)
		if err != nil {
			return err
		}
		ics, err := feed.Render(report.Days, report.GeneratedAt)
		if err != nil {
			return err
		}
		data, err := encodeReport(report)
		if err != nil {
			return err
		}
		srv.Update(ics, data)
		return nil
	}

	refresher, err := scheduler.NewRefresher(settings.Server.Refresh, loc, refresh)
	if err != nil {
		return err
	}

	// The server answers 503 until the first refresh succeeds.
	go func() {
		if err := refresh(ctx); err != nil {
			slog.Error(config.MsgRunFailed,
				config.LogKeyComponent, config.CompMain,
				config.LogKeyError, err,
			)
		}
	}()

	refreshDone := make(chan error, config.ChannelBufferSize)
	go func() {
		refreshDone <- refresher.Run(ctx)
	}()

	serveErr := srv.Start(ctx)
	if serveErr != nil {
		return serveErr
	}
	return <-refreshDone
}

func encodeReport(report *timesheet.Report) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", config.ReportIndent)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrEncodeReport, err)
	}
	return append(data, '\n'), nil
}

// writeReport writes the JSON report to path, or to stdout when path is empty.
func writeReport(path string, report *timesheet.Report) error {
	data, err := encodeReport(report)
	if err != nil {
		return err
	}

	if path == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("%s: %w", config.ErrWriteReport, err)
		}
		return nil
	}

	if err := os.WriteFile(path, data, config.FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteReport, err)
	}
	slog.Info(config.MsgReportWritten,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyFile, path,
		config.LogKeySizeBytes, len(data),
	)
	return nil
}

// printVersion outputs the build information to stdout.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger. Logs go to stderr so that
// stdout stays free for the report, and to a truncated file in the user cache dir.
func setupLogging(debugMode bool) io.Closer {
	writers := []io.Writer{os.Stderr}
	var logFile *os.File

	if logPath, err := logFilePath(); err == nil {
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// logFilePath returns the log location in the platform cache directory.
func logFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
