// Package scheduler runs the prediction pipeline on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/maschh/sports-edge/internal/service"
)

// DefaultTimeout bounds one scheduled run
const DefaultTimeout = 2 * time.Hour

// ErrNoRunYet is reported by Check before the first run finishes
var ErrNoRunYet = errors.New("no prediction run has completed yet")

// Runner executes one prediction run
type Runner interface {
	Run(ctx context.Context) (*service.RunResult, error)
}

// Status describes the most recent scheduled run
type Status struct {
	Runs        int
	Failures    int
	Running     bool
	LastStart   time.Time
	LastFinish  time.Time
	LastRunID   string
	LastRecords int
	LastError   string
}

// Scheduler manages the daily prediction job
type Scheduler struct {
	cron      *cron.Cron
	runner    Runner
	logger    logrus.FieldLogger
	timeout   time.Duration
	mu        sync.RWMutex
	isRunning bool
	jobID     cron.EntryID
	scheduled bool
	status    Status
	runMu     sync.Mutex
}

// NewScheduler creates a new scheduler. Overlapping runs are skipped and a
// panicking run is recovered and logged.
func NewScheduler(runner Runner, timeout time.Duration, logger logrus.FieldLogger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cronLogger := cron.PrintfLogger(logger)
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		runner:  runner,
		logger:  logger.WithField("component", "scheduler"),
		timeout: timeout,
	}
}

// Schedule registers the prediction job with a standard five-field cron expression
func (s *Scheduler) Schedule(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if s.scheduled {
		s.cron.Remove(s.jobID)
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.RunNow(ctx); err != nil {
			s.logger.WithError(err).Error("Scheduled prediction run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobID = entryID
	s.scheduled = true
	s.logger.WithField("cron", cronExpression).Info("Scheduled prediction job")
	return nil
}

// RunNow executes one prediction run and records its outcome. Concurrent
// calls wait for each other.
func (s *Scheduler) RunNow(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.mu.Lock()
	s.status.Running = true
	s.status.LastStart = time.Now()
	s.mu.Unlock()

	s.logger.Info("Starting prediction run")
	result, err := s.runGuarded(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Running = false
	s.status.Runs++
	s.status.LastFinish = time.Now()
	if err != nil {
		s.status.Failures++
		s.status.LastError = err.Error()
		return err
	}
	s.status.LastError = ""
	s.status.LastRunID = result.RunID.String()
	s.status.LastRecords = len(result.Records)
	s.logger.WithFields(logrus.Fields{
		"run_id":  s.status.LastRunID,
		"records": s.status.LastRecords,
		"elapsed": s.status.LastFinish.Sub(s.status.LastStart).String(),
	}).Info("Prediction run completed")
	return nil
}

// runGuarded turns a panicking run into a failed one so the status is
// always settled
func (s *Scheduler) runGuarded(ctx context.Context) (result *service.RunResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("prediction run panicked: %v", r)
		}
	}()
	return s.runner.Run(ctx)
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if !s.scheduled {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running job until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for running job: %w", ctx.Err())
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled run, zero when stopped
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || !s.scheduled {
		return time.Time{}
	}
	return s.cron.Entry(s.jobID).Next
}

// Status returns a copy of the latest run status
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Check reports an error when the latest run failed or none has finished
func (s *Scheduler) Check(context.Context) error {
	st := s.Status()
	if st.Runs == 0 {
		return ErrNoRunYet
	}
	if st.LastError != "" {
		return fmt.Errorf("last run failed: %s", st.LastError)
	}
	return nil
}
