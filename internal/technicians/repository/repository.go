// Package repository provides pgx persistence for the technician directory.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldservice_backend/internal/technicians/domain"
	"fieldservice_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides database operations for technicians and absences.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new technician repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const technicianColumns = `id, full_name, phone, email, specialty, contract_type, active, created_at, updated_at`

// Create inserts a new technician.
func (r *Repository) Create(ctx context.Context, t *domain.Technician) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO technicians (`+technicianColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.FullName, t.Phone, t.Email, t.Specialty, t.ContractType, t.Active, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create technician: %w", err)
	}
	return nil
}

// Update persists mutable technician fields.
func (r *Repository) Update(ctx context.Context, t *domain.Technician) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE technicians
		SET full_name = $2, phone = $3, email = $4, specialty = $5, contract_type = $6, active = $7, updated_at = $8
		WHERE id = $1`,
		t.ID, t.FullName, t.Phone, t.Email, t.Specialty, t.ContractType, t.Active, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update technician: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("technician not found")
	}
	return nil
}

// GetByID loads a single technician.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Technician, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+technicianColumns+` FROM technicians WHERE id = $1`, id)
	t, err := scanTechnician(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("technician not found")
		}
		return nil, fmt.Errorf("failed to get technician: %w", err)
	}
	return t, nil
}

// List returns all technicians, optionally restricted to active ones.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]*domain.Technician, error) {
	query := `SELECT ` + technicianColumns + ` FROM technicians`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY full_name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list technicians: %w", err)
	}
	defer rows.Close()

	var ts []*domain.Technician
	for rows.Next() {
		t, err := scanTechnician(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan technician: %w", err)
		}
		ts = append(ts, t)
	}
	return ts, rows.Err()
}

func scanTechnician(row pgx.Row) (*domain.Technician, error) {
	var t domain.Technician
	err := row.Scan(&t.ID, &t.FullName, &t.Phone, &t.Email, &t.Specialty, &t.ContractType, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// AddAbsence registers an absence for a technician. A nil shift blocks the
// whole day.
func (r *Repository) AddAbsence(ctx context.Context, a *domain.Absence) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO technician_absences (id, technician_id, date, shift, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.TechnicianID, a.Date, a.Shift, a.Reason, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add absence: %w", err)
	}
	return nil
}

// RemoveAbsence deletes an absence entry.
func (r *Repository) RemoveAbsence(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM technician_absences WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to remove absence: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("absence not found")
	}
	return nil
}

// ListAbsences returns absences for one technician from a given date onward.
func (r *Repository) ListAbsences(ctx context.Context, technicianID uuid.UUID, from time.Time) ([]*domain.Absence, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, technician_id, date, shift, reason, created_at
		FROM technician_absences
		WHERE technician_id = $1 AND date >= $2
		ORDER BY date`, technicianID, from)
	if err != nil {
		return nil, fmt.Errorf("failed to list absences: %w", err)
	}
	defer rows.Close()

	var as []*domain.Absence
	for rows.Next() {
		var a domain.Absence
		if err := rows.Scan(&a.ID, &a.TechnicianID, &a.Date, &a.Shift, &a.Reason, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan absence: %w", err)
		}
		as = append(as, &a)
	}
	return as, rows.Err()
}

// SlotVerdicts computes the derived availability of every active technician
// for one (date, shift) slot. Absences win over assignments.
func (r *Repository) SlotVerdicts(ctx context.Context, date time.Time, shift string) (map[uuid.UUID]domain.Availability, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id,
			EXISTS (
				SELECT 1 FROM technician_absences a
				WHERE a.technician_id = t.id AND a.date = $1 AND (a.shift IS NULL OR a.shift = $2)
			) AS absent,
			EXISTS (
				SELECT 1 FROM maintenance_records m
				WHERE m.technician_id = t.id AND m.date_maintenance = $1 AND m.shift = $2
				  AND m.status IN ('assigned', 'in_progress')
			) AS busy
		FROM technicians t
		WHERE t.active = TRUE`, date, shift)
	if err != nil {
		return nil, fmt.Errorf("failed to compute slot verdicts: %w", err)
	}
	defer rows.Close()

	verdicts := make(map[uuid.UUID]domain.Availability)
	for rows.Next() {
		var id uuid.UUID
		var absent, busy bool
		if err := rows.Scan(&id, &absent, &busy); err != nil {
			return nil, fmt.Errorf("failed to scan slot verdict: %w", err)
		}
		switch {
		case absent:
			verdicts[id] = domain.Absent
		case busy:
			verdicts[id] = domain.Busy
		default:
			verdicts[id] = domain.Available
		}
	}
	return verdicts, rows.Err()
}
