// Package reconcile repairs drift between the denormalized participant
// counter on game rows and the participation set itself. The write path
// keeps the two consistent transactionally; this job is the safety net
// for rows touched outside the service (imports, manual fixes).
package reconcile

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"matchday-service/internal/observability"
	"matchday-service/internal/repositories"
)

const runTimeout = 30 * time.Second

// Reconciler periodically recomputes participant counters.
type Reconciler struct {
	participationRepo repositories.ParticipationRepository
	logger            *zap.Logger
	cron              *cron.Cron
}

// New constructs a Reconciler.
func New(participationRepo repositories.ParticipationRepository, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		participationRepo: participationRepo,
		logger:            logger,
		cron:              cron.New(),
	}
}

// Start schedules the job with the given cron spec and runs it until
// Stop is called.
func (r *Reconciler) Start(spec string) error {
	if _, err := r.cron.AddFunc(spec, r.runOnce); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop halts the schedule; a running job finishes.
func (r *Reconciler) Stop() {
	r.cron.Stop()
}

func (r *Reconciler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	repaired, err := r.participationRepo.ReconcileCounters(ctx)
	if err != nil {
		r.logger.Error("participant counter reconciliation failed", zap.Error(err))
		return
	}
	if repaired > 0 {
		r.logger.Warn("participant counters repaired", zap.Int64("repaired", repaired))
		observability.AddCounterRepairs(float64(repaired))
		return
	}
	r.logger.Debug("participant counters consistent")
}
