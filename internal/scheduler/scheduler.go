// Package scheduler runs recurring market data synchronization jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stocklab/internal/service"
)

// Scheduler manages scheduled data ingestion jobs
type Scheduler struct {
	cron         *cron.Cron
	ingestionSvc *service.IngestionService
	logger       *logrus.Logger
	mu           sync.RWMutex
	isRunning    bool
	jobIDs       []cron.EntryID
}

// NewScheduler creates a new scheduler. All jobs run in UTC.
func NewScheduler(ingestionSvc *service.IngestionService, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:         cron.New(cron.WithLocation(time.UTC)),
		ingestionSvc: ingestionSvc,
		logger:       logger,
		jobIDs:       make([]cron.EntryID, 0),
	}
}

// ScheduleDailySync schedules an incremental sync of the given symbols.
// The cron expression should fire after the market's end-of-day settlement.
func (s *Scheduler) ScheduleDailySync(cronExpression, sourceName string, symbols []string, lookbackDays int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()

		s.logger.WithFields(logrus.Fields{
			"source":  sourceName,
			"symbols": len(symbols),
		}).Info("Starting scheduled daily sync")

		stored, err := s.ingestionSvc.SyncIncremental(ctx, sourceName, symbols, lookbackDays)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled daily sync finished with errors")
		}
		s.logger.WithField("bars_stored", stored).Info("Scheduled daily sync complete")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled daily sync job")

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
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled job run
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}
