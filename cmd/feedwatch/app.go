package main

import (
	"context"
	"fmt"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/aleister1102/feedwatch/internal/detector"
	"github.com/aleister1102/feedwatch/internal/fetcher"
	"github.com/aleister1102/feedwatch/internal/logger"
	"github.com/aleister1102/feedwatch/internal/metrics"
	"github.com/aleister1102/feedwatch/internal/notifier"
	"github.com/aleister1102/feedwatch/internal/scanner"
	"github.com/aleister1102/feedwatch/internal/scheduler"
	"github.com/rs/zerolog"
)

// loadConfig reads, overrides and validates the configuration, then builds
// the process logger from it.
func loadConfig(flags *AppFlags) (*config.GlobalConfig, zerolog.Logger, error) {
	bootLogger, err := logger.New(config.NewDefaultLogConfig())
	if err != nil {
		return nil, zerolog.Nop(), common.WrapError(err, "could not initialize bootstrap logger")
	}

	cfg, err := config.LoadGlobalConfig(flags.ConfigFile, bootLogger)
	if err != nil {
		return nil, zerolog.Nop(), common.WrapErrorf(err, "could not load config using path '%s'", flags.ConfigFile)
	}

	if flags.Mode != "" {
		cfg.Mode = flags.Mode
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, zerolog.Nop(), err
	}

	zLogger, err := logger.New(cfg.LogConfig)
	if err != nil {
		return nil, zerolog.Nop(), common.WrapError(err, "could not initialize logger")
	}
	if flags.Mode != "" {
		zLogger.Info().Str("mode", cfg.Mode).Msg("Mode overridden by command line flag")
	}
	return cfg, zLogger, nil
}

// application owns the long lived collaborators for one process run.
type application struct {
	cfg     *config.GlobalConfig
	logger  zerolog.Logger
	runner  *scheduler.Runner
	browser *fetcher.BrowserFetcher
}

func newApplication(cfg *config.GlobalConfig, subjectNames []string, zLogger zerolog.Logger) (*application, error) {
	subjects, err := cfg.SubjectsByName(subjectNames)
	if err != nil {
		return nil, err
	}
	if len(subjects) == 0 {
		return nil, common.NewValidationError("subjects", len(subjects), "no subjects configured")
	}

	n, err := notifier.NewNotifier(cfg.NotificationConfig, zLogger)
	if err != nil {
		return nil, common.WrapError(err, "failed to initialize notifier")
	}

	httpFetcher := fetcher.NewHTTPFetcher(cfg.HTTPClientConfig, zLogger)
	deps := detector.Deps{
		TextFetcher:   httpFetcher,
		StatusFetcher: httpFetcher,
		Notifier:      n,
		Storage:       cfg.StorageConfig,
	}

	app := &application{
		cfg:    cfg,
		logger: zLogger,
	}

	if hasKind(subjects, config.SubjectKindRenderedPage) {
		app.browser = fetcher.NewBrowserFetcher(cfg.BrowserConfig, zLogger)
		deps.RenderedFetcher = app.browser
	}
	if hasKind(subjects, config.SubjectKindHostAvailability) {
		deps.HostScanner = scanner.NewNmapScanner(cfg.ScannerConfig, zLogger)
	}

	detectors, err := detector.NewDetectors(subjects, deps, zLogger)
	if err != nil {
		app.Close()
		return nil, common.WrapError(err, "failed to build detectors")
	}

	recorder := metrics.NewRecorder(cfg.MetricsConfig, zLogger)
	app.runner = scheduler.NewRunner(detectors, recorder, zLogger)
	return app, nil
}

func hasKind(subjects []config.SubjectConfig, kind config.SubjectKind) bool {
	for _, s := range subjects {
		if s.Kind == kind {
			return true
		}
	}
	return false
}

// run executes the configured mode until it finishes or ctx is cancelled.
func (a *application) run(ctx context.Context) error {
	switch a.cfg.Mode {
	case config.ModeAutomated:
		sched, err := scheduler.NewScheduler(a.cfg.SchedulerConfig, a.runner, a.logger)
		if err != nil {
			return common.WrapError(err, "failed to initialize scheduler")
		}
		return sched.Start(ctx)
	default:
		summary := a.runner.RunCycle(ctx)
		if summary.Failed > 0 {
			return &exitError{
				code: 1,
				msg:  fmt.Sprintf("%d of %d subject checks failed", summary.Failed, summary.Checked),
			}
		}
		return nil
	}
}

// Close releases the browser if one was started.
func (a *application) Close() {
	if a.browser == nil {
		return
	}
	if err := a.browser.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to close browser")
	}
}
