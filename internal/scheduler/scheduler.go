// Package scheduler runs the periodic cache warming job.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/race-dynamics/internal/service"
)

// Warmer precomputes predictions of races in a time window
type Warmer interface {
	WarmUpcoming(ctx context.Context, from, to time.Time) (*service.WarmReport, error)
}

// Scheduler manages the scheduled warm job
type Scheduler struct {
	cron       *cron.Cron
	warmer     Warmer
	logger     *logrus.Logger
	mu         sync.RWMutex
	isRunning  bool
	jobIDs     []cron.EntryID
	lookahead  int
	jobTimeout time.Duration
	now        func() time.Time
	runMu      sync.Mutex
}

// NewScheduler creates a new scheduler. Cron specs carry a seconds field.
func NewScheduler(warmer Warmer, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		warmer:     warmer,
		logger:     logger,
		jobIDs:     make([]cron.EntryID, 0),
		lookahead:  1,
		jobTimeout: 10 * time.Minute,
		now:        time.Now,
	}
}

// ScheduleWarm schedules warming of races from today through lookaheadDays
func (s *Scheduler) ScheduleWarm(cronExpression string, lookaheadDays int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if lookaheadDays > 0 {
		s.lookahead = lookaheadDays
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		if _, err := s.RunWarm(ctx); err != nil {
			s.logger.WithError(err).Error("Scheduled warm run failed")
		}
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"schedule":       cronExpression,
		"lookahead_days": s.lookahead,
	}).Info("Scheduled cache warm job")

	return nil
}

// Window returns the [from, to) range a warm run covers
func (s *Scheduler) Window() (time.Time, time.Time) {
	s.mu.RLock()
	days := s.lookahead
	s.mu.RUnlock()

	now := s.now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, days)
}

// RunWarm performs one warm run immediately. Overlapping runs are skipped.
func (s *Scheduler) RunWarm(ctx context.Context) (*service.WarmReport, error) {
	if !s.runMu.TryLock() {
		s.logger.Warn("Previous warm run still in progress, skipping")
		return nil, nil
	}
	defer s.runMu.Unlock()

	from, to := s.Window()
	s.logger.WithFields(logrus.Fields{
		"from": from.Format("2006-01-02"),
		"to":   to.Format("2006-01-02"),
	}).Info("Starting cache warm run")

	report, err := s.warmer.WarmUpcoming(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("warm run: %w", err)
	}

	for key, raceErr := range report.Errors {
		s.logger.WithError(raceErr).WithField("race_key", key).Warn("Failed to warm race")
	}
	return report, nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() && (nextRun.IsZero() || entry.Next.Before(nextRun)) {
			nextRun = entry.Next
		}
	}

	return nextRun
}
