// Package service implements the technician directory operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fieldservice_backend/internal/technicians/domain"
	"fieldservice_backend/internal/technicians/repository"
	"fieldservice_backend/platform/apperr"
	"fieldservice_backend/platform/logger"
	"fieldservice_backend/platform/phone"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const rosterCacheKey = "roster:active"

// Service provides technician directory operations. Roster identity data is
// cached briefly; availability verdicts are always computed fresh.
type Service struct {
	repo   *repository.Repository
	cache  *gocache.Cache
	logger *logger.Logger
}

// New creates a technician service.
func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  gocache.New(5*time.Minute, 10*time.Minute),
		logger: log,
	}
}

// CreateInput carries the fields for registering a technician.
type CreateInput struct {
	FullName     string
	Phone        string
	Email        *string
	Specialty    *string
	ContractType *string
}

// Create registers a new technician with a normalized phone number.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Technician, error) {
	normalized, err := phone.NormalizeE164(input.Phone)
	if err != nil {
		return nil, apperr.BadRequest("invalid phone number")
	}

	t := domain.NewTechnician(input.FullName, normalized)
	t.Email = input.Email
	t.Specialty = input.Specialty
	t.ContractType = input.ContractType

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.cache.Delete(rosterCacheKey)

	s.logger.WithContext(ctx).Info("technician registered", "technician_id", t.ID)
	return t, nil
}

// UpdateInput carries the mutable technician fields. Nil fields are left
// unchanged.
type UpdateInput struct {
	FullName     *string
	Phone        *string
	Email        *string
	Specialty    *string
	ContractType *string
	Active       *bool
}

// Update applies partial changes to a technician.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*domain.Technician, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		t.FullName = *input.FullName
	}
	if input.Phone != nil {
		normalized, err := phone.NormalizeE164(*input.Phone)
		if err != nil {
			return nil, apperr.BadRequest("invalid phone number")
		}
		t.Phone = normalized
	}
	if input.Email != nil {
		t.Email = input.Email
	}
	if input.Specialty != nil {
		t.Specialty = input.Specialty
	}
	if input.ContractType != nil {
		t.ContractType = input.ContractType
	}
	if input.Active != nil {
		t.Active = *input.Active
	}
	t.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.cache.Delete(rosterCacheKey)

	return t, nil
}

// Get loads one technician.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Technician, error) {
	return s.repo.GetByID(ctx, id)
}

// ListActive returns the active roster, served from a short-lived cache.
func (s *Service) ListActive(ctx context.Context) ([]*domain.Technician, error) {
	if cached, found := s.cache.Get(rosterCacheKey); found {
		return cached.([]*domain.Technician), nil
	}

	ts, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	s.cache.Set(rosterCacheKey, ts, gocache.DefaultExpiration)
	return ts, nil
}

// ListAll returns every technician including inactive ones.
func (s *Service) ListAll(ctx context.Context) ([]*domain.Technician, error) {
	return s.repo.List(ctx, false)
}

// Candidate pairs a technician with their verdict for one slot.
type Candidate struct {
	Technician   *domain.Technician
	Availability domain.Availability
}

// CandidatesForSlot returns the active roster with a fresh availability
// verdict per technician for the requested date and shift, optionally
// restricted to one specialty. The roster may be cached; the verdicts
// never are.
func (s *Service) CandidatesForSlot(ctx context.Context, date time.Time, shift string, specialty *string) ([]Candidate, error) {
	roster, err := s.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	roster = filterBySpecialty(roster, specialty)

	verdicts, err := s.repo.SlotVerdicts(ctx, date, shift)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(roster))
	for _, t := range roster {
		verdict, ok := verdicts[t.ID]
		if !ok {
			// Technician added after the verdict query ran; treat as
			// available since nothing is assigned yet.
			verdict = domain.Available
		}
		candidates = append(candidates, Candidate{Technician: t, Availability: verdict})
	}
	return candidates, nil
}

func filterBySpecialty(roster []*domain.Technician, specialty *string) []*domain.Technician {
	if specialty == nil || *specialty == "" {
		return roster
	}

	filtered := make([]*domain.Technician, 0, len(roster))
	for _, t := range roster {
		if t.Specialty != nil && strings.EqualFold(*t.Specialty, *specialty) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// IsActive reports whether the technician exists and is on the active
// roster. Used by the maintenance module before binding assignments.
func (s *Service) IsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind == apperr.KindNotFound {
			return false, nil
		}
		return false, err
	}
	return t.Active, nil
}

// AddAbsence registers an absence, rejecting dates in the past.
func (s *Service) AddAbsence(ctx context.Context, technicianID uuid.UUID, date time.Time, shift, reason *string) (*domain.Absence, error) {
	if _, err := s.repo.GetByID(ctx, technicianID); err != nil {
		return nil, err
	}
	today := time.Now().Truncate(24 * time.Hour)
	if date.Before(today) {
		return nil, apperr.BadRequest("absence date cannot be in the past")
	}

	a := &domain.Absence{
		ID:           uuid.New(),
		TechnicianID: technicianID,
		Date:         date,
		Shift:        shift,
		Reason:       reason,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.AddAbsence(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to register absence: %w", err)
	}
	return a, nil
}

// RemoveAbsence deletes an absence entry.
func (s *Service) RemoveAbsence(ctx context.Context, id uuid.UUID) error {
	return s.repo.RemoveAbsence(ctx, id)
}

// ListAbsences returns upcoming absences for a technician.
func (s *Service) ListAbsences(ctx context.Context, technicianID uuid.UUID) ([]*domain.Absence, error) {
	return s.repo.ListAbsences(ctx, technicianID, time.Now().Truncate(24*time.Hour))
}
