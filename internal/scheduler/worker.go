package scheduler

import (
	"context"
	"fmt"
	"time"

	"fieldservice_backend/internal/events"
	"fieldservice_backend/internal/maintenance/domain"
	"fieldservice_backend/internal/maintenance/repository"
	"fieldservice_backend/platform/config"
	"fieldservice_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// errSkipNotification aborts the marking transaction without failing the task.
var errSkipNotification = fmt.Errorf("confirmation check no longer applies")

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *repository.Repository
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   repository.New(pool),
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskConfirmationDeadline, w.handleConfirmationDeadline)

	return w, nil
}

// handleConfirmationDeadline re-checks database truth when a deadline task
// fires: the client may have confirmed, the visit may have been rescheduled
// with a later deadline, or the record may have left the lifecycle entirely.
// Only a genuinely missed deadline marks the coordinator as notified.
func (w *Worker) handleConfirmationDeadline(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseConfirmationDeadlinePayload(task)
	if err != nil {
		return err
	}

	recordID, err := uuid.Parse(payload.RecordID)
	if err != nil {
		return err
	}

	var missed *domain.Record
	_, err = w.repo.WithRecord(ctx, recordID, func(_ context.Context, _ pgx.Tx, rec *domain.Record) error {
		if !deadlineStillMissed(rec, time.Now()) {
			return errSkipNotification
		}
		rec.MarkCoordinatorNotified(time.Now())
		missed = rec
		return nil
	})
	if err != nil {
		if err == errSkipNotification {
			return nil
		}
		return err
	}

	w.log.Info("confirmation deadline missed", "record_id", recordID)
	w.bus.Publish(ctx, events.ConfirmationDeadlineMissed{
		BaseEvent:  events.NewBaseEvent(),
		RecordID:   missed.ID,
		ClientName: missed.ClientName,
		Deadline:   *missed.Confirmation.Deadline,
	})
	return nil
}

func deadlineStillMissed(rec *domain.Record, now time.Time) bool {
	c := rec.Confirmation
	switch {
	case !c.Required:
		return false
	case c.ConfirmedAt != nil:
		return false
	case c.CoordinatorNotified:
		return false
	case c.Deadline == nil || c.Deadline.After(now):
		return false
	case rec.Status.Terminal():
		return false
	}
	return true
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
