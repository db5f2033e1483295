// Package scheduler provides scheduled job management using gocron v2 plus
// the in-process escalation deadline scheduler.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"flowdesk/internal/shared/biztime"
	"flowdesk/internal/shared/logger"
)

// BatchJob is a scheduled batch processing job. Execute processes one batch
// and returns the number of items handled.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// SchedulerManager owns the single gocron instance all periodic jobs run
// on.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager initializes gocron with the business timezone.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterEscalationJob arms the periodic escalation tick. Singleton mode
// keeps a slow tick from overlapping the next one.
func (m *SchedulerManager) RegisterEscalationJob(tick BatchJob, interval time.Duration) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			m.runEscalationTick(ctx, tick)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("sla", "escalation"),
		gocron.WithName("sla-escalation-tick"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered escalation job", "interval", interval)
	return nil
}

func (m *SchedulerManager) runEscalationTick(ctx context.Context, tick BatchJob) {
	startTime := biztime.NowUTC()

	processed, err := tick.Execute(ctx)
	if err != nil {
		m.logger.Errorw("escalation tick failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}
	if processed > 0 {
		m.logger.Infow("escalation deadlines processed",
			"count", processed,
			"duration", time.Since(startTime),
		)
	}
}

// RegisterMaintenanceJob runs a housekeeping batch on a cron expression in
// the business timezone.
func (m *SchedulerManager) RegisterMaintenanceJob(name string, cronExpr string, job BatchJob) error {
	_, err := m.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			count, err := job.Execute(ctx)
			if err != nil {
				m.logger.Errorw("maintenance job failed", "job", name, "error", err)
				return
			}
			m.logger.Debugw("maintenance job completed", "job", name, "count", count)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("maintenance"),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered maintenance job", "job", name, "cron", cronExpr)
	return nil
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
