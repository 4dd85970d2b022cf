// Package service orchestrates the maintenance lifecycle: transitions run
// inside per-record transactions, collaborator facts (availability, stored
// documents) are gathered where the domain needs them, and domain events
// are published after a successful commit.
package service

import (
	"context"
	"errors"

	"fieldservice_backend/internal/adapters/storage"
	"fieldservice_backend/internal/events"
	"fieldservice_backend/internal/maintenance/domain"
	"fieldservice_backend/internal/maintenance/repository"
	"fieldservice_backend/internal/scheduler"
	"fieldservice_backend/platform/apperr"
	"fieldservice_backend/platform/config"
	"fieldservice_backend/platform/logger"
	"fieldservice_backend/platform/phone"

	"github.com/google/uuid"
)

// TechnicianDirectory answers roster questions for assignment validation.
// Implemented by the technicians module.
type TechnicianDirectory interface {
	IsActive(ctx context.Context, id uuid.UUID) (bool, error)
}

// Config combines the configuration interfaces the service needs.
type Config interface {
	config.MinIOConfig
	config.ConfirmationConfig
}

// Service provides maintenance lifecycle operations.
type Service struct {
	repo      *repository.Repository
	directory TechnicianDirectory
	store     storage.Service
	deadlines scheduler.DeadlineScheduler
	bus       events.Bus
	cfg       Config
	logger    *logger.Logger
}

// New creates a maintenance service. store and deadlines may be nil when the
// corresponding infrastructure is disabled; document presence checks and
// deadline tasks are then skipped.
func New(repo *repository.Repository, directory TechnicianDirectory, store storage.Service, deadlines scheduler.DeadlineScheduler, bus events.Bus, cfg Config, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		store:     store,
		deadlines: deadlines,
		bus:       bus,
		cfg:       cfg,
		logger:    log,
	}
}

// CreateInput carries the fields for registering a maintenance request.
type CreateInput struct {
	Type        domain.MaintenanceType
	ClientName  string
	ClientPhone string
	Address     string
	Description *string
	DeviceRefs  []string
}

// Create registers a new maintenance request in pending status.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Record, error) {
	normalized, err := phone.NormalizeE164(input.ClientPhone)
	if err != nil {
		return nil, apperr.BadRequest("invalid client phone number")
	}

	rec := domain.NewRecord(input.Type, input.ClientName, normalized, input.Address, input.Description, input.DeviceRefs)
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).Info("maintenance request created", "record_id", rec.ID, "type", rec.Type)
	return rec, nil
}

// Get loads one record with devices and action log.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Record, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a filtered page of records.
func (s *Service) List(ctx context.Context, params repository.ListParams) ([]*domain.Record, int, error) {
	return s.repo.List(ctx, params)
}

// mutate runs fn in a per-record transaction, retrying once when the save
// loses an optimistic-concurrency race. Guard violations and illegal
// transitions are mapped to API errors; the transaction has already rolled
// back, so the record is untouched.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, event string, fn repository.TransitionFunc) (*domain.Record, error) {
	rec, err := s.repo.WithRecord(ctx, id, fn)
	if errors.Is(err, repository.ErrVersionConflict) {
		rec, err = s.repo.WithRecord(ctx, id, fn)
	}
	if err != nil {
		return nil, s.mapTransitionErr(ctx, id, event, err)
	}
	return rec, nil
}

func (s *Service) mapTransitionErr(ctx context.Context, id uuid.UUID, event string, err error) error {
	switch {
	case errors.Is(err, repository.ErrVersionConflict):
		return apperr.Conflict("maintenance record was modified concurrently")
	case errors.Is(err, repository.ErrSlotTaken):
		s.logger.GuardRejected(id.String(), event, string(domain.GuardTechnicianUnavailable))
		return apperr.Unprocessable("technician is no longer available for that slot").
			WithDetails(map[string]string{"guard": string(domain.GuardTechnicianUnavailable)})
	}

	var gv *domain.GuardViolation
	if errors.As(err, &gv) {
		s.logger.GuardRejected(id.String(), event, string(gv.Guard))
		return apperr.Unprocessable(gv.Message).
			WithDetails(map[string]string{"guard": string(gv.Guard)})
	}

	var it *domain.IllegalTransition
	if errors.As(err, &it) {
		return apperr.Conflict(it.Error()).
			WithDetails(map[string]string{"currentStatus": string(it.Current), "event": it.Event})
	}

	return err
}

// requireStoredObject verifies that a document reference points at an object
// that was actually uploaded. Skipped when storage is disabled.
func (s *Service) requireStoredObject(ctx context.Context, bucket, fileKey string, guard domain.Guard, message string) error {
	if s.store == nil {
		return nil
	}

	exists, err := s.store.ObjectExists(ctx, bucket, fileKey)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "document storage is unreachable", err)
	}
	if !exists {
		return apperr.Unprocessable(message).
			WithDetails(map[string]string{"guard": string(guard)})
	}
	return nil
}

// discardReplacedObject removes a superseded document once its replacement is
// committed. Best effort: a leftover object only costs storage space.
func (s *Service) discardReplacedObject(ctx context.Context, bucket string, prev *string, current string) {
	if s.store == nil || prev == nil || *prev == "" || *prev == current {
		return
	}

	if err := s.store.DeleteObject(ctx, bucket, *prev); err != nil {
		s.logger.Warn("failed to delete superseded document", "bucket", bucket, "file_key", *prev, "error", err)
	}
}

func (s *Service) logTransition(rec *domain.Record, event string, from domain.Status) {
	s.logger.Transition(rec.ID.String(), event, string(from), string(rec.Status))
}
