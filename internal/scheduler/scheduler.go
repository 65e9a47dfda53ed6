// Package scheduler runs the portal's periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NextRun returns the first activation of schedule after from.
func NextRun(schedule string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// job runs one function on a cron schedule. Runs never overlap.
type job struct {
	name     string
	schedule string
	run      func(ctx context.Context)
	logger   *slog.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
	runMu      sync.Mutex
}

func newJob(name, schedule string, logger *slog.Logger, run func(ctx context.Context)) *job {
	return &job{
		name:     name,
		schedule: schedule,
		run:      run,
		logger:   logger.With("component", "scheduler", "job", name),
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start schedules the job. An empty schedule disables it.
func (j *job) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.isRunning {
		return nil
	}
	if j.schedule == "" {
		j.logger.Info("scheduler disabled")
		return nil
	}
	if err := ValidateSchedule(j.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", j.schedule, err)
	}

	var runCtx context.Context
	runCtx, j.cancelFunc = context.WithCancel(ctx)

	entryID, err := j.cron.AddFunc(j.schedule, func() {
		j.runOnce(runCtx)
	})
	if err != nil {
		j.cancelFunc()
		return fmt.Errorf("failed to schedule %s job: %w", j.name, err)
	}
	j.entryID = entryID

	j.cron.Start()
	j.isRunning = true

	next, _ := NextRun(j.schedule, time.Now())
	j.logger.Info("scheduler started", "schedule", j.schedule, "next_run", next)

	go func() {
		<-runCtx.Done()
		j.Stop()
	}()

	return nil
}

// Stop waits for a run in progress and stops the schedule.
func (j *job) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.isRunning {
		return
	}

	ctx := j.cron.Stop()
	<-ctx.Done()
	j.cron.Remove(j.entryID)

	j.cancelFunc()
	j.isRunning = false
	j.cancelFunc = nil

	j.logger.Info("scheduler stopped")
}

func (j *job) IsRunning() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.isRunning
}

// GetNextRunTime returns when the job fires next, or nil when stopped.
func (j *job) GetNextRunTime() *time.Time {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if !j.isRunning {
		return nil
	}
	for _, entry := range j.cron.Entries() {
		if entry.ID == j.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (j *job) runOnce(ctx context.Context) {
	if !j.runMu.TryLock() {
		j.logger.Warn("skipped, previous run still in progress")
		return
	}
	defer j.runMu.Unlock()
	j.run(ctx)
}
