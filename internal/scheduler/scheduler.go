// Package scheduler runs the daemon's recurring engine jobs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yourusername/courtside/internal/engine"
)

// UpdateRunner executes one state update run.
type UpdateRunner interface {
	Run(ctx context.Context, cfg engine.UpdateConfig) (*engine.UpdateReport, error)
}

// AvailabilityRefresher refreshes the cached injury report.
type AvailabilityRefresher interface {
	RefreshAvailability(ctx context.Context) (int, error)
}

// Scheduler manages the recurring update and availability refresh jobs
type Scheduler struct {
	cron            *cron.Cron
	update          UpdateRunner
	availability    AvailabilityRefresher
	logger          *log.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(update UpdateRunner, availability AvailabilityRefresher, logger *log.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		update:          update,
		availability:    availability,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleUpdate schedules the nightly state update. The job folds every
// pending date through yesterday into the engine state.
func (s *Scheduler) ScheduleUpdate(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		s.logger.Printf("Starting scheduled state update")

		report, err := s.update.Run(ctx, engine.UpdateConfig{})
		if err != nil {
			s.logger.Printf("Error during scheduled state update: %v", err)
			return
		}
		if report.UpToDate {
			s.logger.Printf("Scheduled state update: already up to date")
			return
		}
		s.logger.Printf("Scheduled state update completed: %d dates, %d games processed, %d skipped",
			report.DatesProcessed, report.GamesProcessed, report.GamesSkipped)
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.Printf("Scheduled state update job with cron expression: %s", cronExpression)

	return nil
}

// ScheduleAvailabilityRefresh schedules the injury report refresh so
// slate predictions start from a warm cache.
func (s *Scheduler) ScheduleAvailabilityRefresh(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		teams, err := s.availability.RefreshAvailability(ctx)
		if err != nil {
			s.logger.Printf("Error during scheduled availability refresh: %v", err)
			return
		}
		s.logger.Printf("Scheduled availability refresh completed: %d teams", teams)
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.Printf("Scheduled availability refresh job with cron expression: %s", cronExpression)

	return nil
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
	s.logger.Printf("Scheduler started with %d jobs", len(s.jobIDs))

	return nil
}

// Stop gracefully stops the scheduler, waiting up to the graceful
// timeout for running jobs to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		s.logger.Printf("Scheduler stopped")
	case <-time.After(s.gracefulTimeout):
		s.logger.Printf("Scheduler stop timed out after %s with jobs still running", s.gracefulTimeout)
	}
	s.isRunning = false

	return nil
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
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
