package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/braincoral/reefplan/internal/config"
	"github.com/braincoral/reefplan/internal/service/planning"
)

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron        *cron.Cron
	planningSvc *planning.Service
	cfg         config.PlanningConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.PlanningConfig, planningSvc *planning.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:        cron.New(),
		planningSvc: planningSvc,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Start registers the nightly plan snapshot and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.SnapshotCron))

	_, err := s.cron.AddFunc(s.cfg.SnapshotCron, s.savePlanSnapshot)
	if err != nil {
		s.logger.Error("failed to schedule plan snapshot", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

// savePlanSnapshot runs the pipeline with the configured defaults and
// persists the result under a date-stamped name, giving compliance review
// a daily baseline even when nobody saves a plan by hand.
func (s *Scheduler) savePlanSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	name := fmt.Sprintf("auto-%s-%s", s.cfg.Tenant, s.now().UTC().Format("2006-01-02"))
	s.logger.Info("saving scheduled plan snapshot", zap.String("plan", name))

	_, err := s.planningSvc.RunAndSave(ctx, name, planning.RunRequest{
		Tenant: s.cfg.Tenant,
		Days:   s.cfg.ForecastDays,
		Seed:   s.cfg.Seed,
	})
	if err != nil {
		s.logger.Error("scheduled plan snapshot failed", zap.Error(err))
		return
	}

	s.logger.Info("scheduled plan snapshot saved", zap.String("plan", name))
}
