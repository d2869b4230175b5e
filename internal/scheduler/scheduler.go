package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// errorBackoff is the wait before retrying a failed next-run calculation.
const errorBackoff = 5 * time.Minute

// Scheduler runs cycles in automated mode and records them in SQLite.
type Scheduler struct {
	cfg       config.SchedulerConfig
	db        *DB
	runner    *Runner
	schedule  cron.Schedule
	now       func() time.Time
	logger    zerolog.Logger
	mu        sync.Mutex
	isRunning bool
	// lastCycleStart covers cycles whose history row could not be written.
	lastCycleStart *time.Time
}

// NewScheduler opens the history database and parses the cron expression.
func NewScheduler(cfg config.SchedulerConfig, runner *Runner, logger zerolog.Logger) (*Scheduler, error) {
	logger = logger.With().Str("component", "Scheduler").Logger()

	var schedule cron.Schedule
	if cfg.Cron != "" {
		parsed, err := cron.ParseStandard(cfg.Cron)
		if err != nil {
			return nil, common.WrapErrorf(err, "invalid cron expression %q", cfg.Cron)
		}
		schedule = parsed
	} else if cfg.CycleMinutes <= 0 {
		return nil, common.NewValidationError("cycle_minutes", cfg.CycleMinutes, "must be positive when cron is not set")
	}

	db, err := NewDB(cfg.SQLiteDBPath, logger)
	if err != nil {
		return nil, common.WrapError(err, "failed to initialize database")
	}

	return &Scheduler{
		cfg:      cfg,
		db:       db,
		runner:   runner,
		schedule: schedule,
		now:      time.Now,
		logger:   logger,
	}, nil
}

// Start runs a cycle immediately, then keeps running cycles until ctx is
// cancelled. The database is closed when Start returns.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.isRunning = true
	s.mu.Unlock()

	defer func() {
		if err := s.db.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to close scheduler database")
		}
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		s.logger.Info().Msg("Scheduler stopped")
	}()

	s.logger.Info().Msg("Running initial cycle")
	s.runCycle(ctx)

	for {
		if ctx.Err() != nil {
			return nil
		}

		next, err := s.calculateNextRunTime()
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to calculate next run time")
			next = s.now().Add(errorBackoff)
		}
		s.logger.Info().Time("next_run_time", next).Msg("Next cycle scheduled")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
			s.runCycle(ctx)
		}
	}
}

// RunOnce runs and records a single cycle.
func (s *Scheduler) RunOnce(ctx context.Context) CycleSummary {
	return s.runCycle(ctx)
}

func (s *Scheduler) runCycle(ctx context.Context) CycleSummary {
	cycleID := newCycleID()
	start := s.now()
	s.lastCycleStart = &start
	dbID, err := s.db.RecordCycleStart(cycleID, s.runner.Subjects(), start)
	if err != nil {
		s.logger.Error().Err(err).Str("cycle_id", cycleID).Msg("Failed to record cycle start")
	}

	summary := s.runner.run(ctx, cycleID)

	if dbID > 0 {
		if err := s.db.UpdateCycleCompletion(dbID, summary.Finished, summary.Status(), summary.Checked, summary.Failed, summary.LogSummary()); err != nil {
			s.logger.Error().Err(err).Str("cycle_id", cycleID).Msg("Failed to record cycle completion")
		}
	}
	return summary
}

// calculateNextRunTime uses the cron schedule when configured, otherwise
// the later of the last completed cycle in history and the last cycle
// started by this process, plus CycleMinutes. Overdue runs start now; only a
// process with no cycle anywhere starts immediately.
func (s *Scheduler) calculateNextRunTime() (time.Time, error) {
	now := s.now()
	if s.schedule != nil {
		return s.schedule.Next(now), nil
	}

	last, err := s.db.GetLastCompletedCycleTime()
	if err != nil {
		if s.lastCycleStart == nil {
			return time.Time{}, err
		}
		s.logger.Warn().Err(err).Msg("Cycle history unavailable, scheduling from the last cycle in memory")
		last = nil
	}
	if s.lastCycleStart != nil && (last == nil || s.lastCycleStart.After(*last)) {
		last = s.lastCycleStart
	}
	if last == nil {
		return now, nil
	}

	next := last.Add(time.Duration(s.cfg.CycleMinutes) * time.Minute)
	if next.Before(now) {
		return now, nil
	}
	return next, nil
}
