package scheduler

import (
	"context"
	"time"

	"fieldservice_backend/internal/maintenance/repository"
	"fieldservice_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultSweepInterval = 5 * time.Minute

// ConfirmationSweep periodically enqueues deadline checks for records whose
// confirmation window already closed. It backstops the per-record tasks:
// if redis lost a scheduled task, the sweep picks the record up on the next
// tick.
type ConfirmationSweep struct {
	repo      *repository.Repository
	scheduler DeadlineScheduler
	log       *logger.Logger
	interval  time.Duration
}

func NewConfirmationSweep(pool *pgxpool.Pool, scheduler DeadlineScheduler, log *logger.Logger, interval time.Duration) *ConfirmationSweep {
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	return &ConfirmationSweep{
		repo:      repository.New(pool),
		scheduler: scheduler,
		log:       log,
		interval:  interval,
	}
}

func (s *ConfirmationSweep) Run(ctx context.Context) {
	if s == nil || s.repo == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ConfirmationSweep) sweep(ctx context.Context) {
	ids, err := s.repo.ListOverdueConfirmations(ctx, time.Now())
	if err != nil {
		s.log.Warn("confirmation sweep failed", "error", err)
		return
	}

	for _, id := range ids {
		err := s.scheduler.ScheduleConfirmationDeadline(ctx, ConfirmationDeadlinePayload{RecordID: id.String()}, time.Now())
		if err != nil {
			s.log.Warn("failed to enqueue deadline check", "record_id", id, "error", err)
		}
	}

	if len(ids) > 0 {
		s.log.Info("confirmation sweep enqueued deadline checks", "count", len(ids))
	}
}
