package repository

import (
	"context"
	"fmt"
	"time"

	"fieldservice_backend/internal/maintenance/domain"

	"github.com/google/uuid"
)

// ListParams filters and paginates record listings.
type ListParams struct {
	Status       *domain.Status
	Type         *domain.MaintenanceType
	TechnicianID *uuid.UUID
	DateFrom     *time.Time
	DateTo       *time.Time
	Page         int
	PageSize     int
}

// List returns a page of records matching params plus the total match count.
// Listed records carry devices but not the action log; the log is loaded on
// single-record reads only.
func (r *Repository) List(ctx context.Context, params ListParams) ([]*domain.Record, int, error) {
	where := "WHERE 1=1"
	args := []any{}

	if params.Status != nil {
		args = append(args, *params.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if params.Type != nil {
		args = append(args, *params.Type)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if params.TechnicianID != nil {
		args = append(args, *params.TechnicianID)
		where += fmt.Sprintf(" AND technician_id = $%d", len(args))
	}
	if params.DateFrom != nil {
		args = append(args, *params.DateFrom)
		where += fmt.Sprintf(" AND date_maintenance >= $%d", len(args))
	}
	if params.DateTo != nil {
		args = append(args, *params.DateTo)
		where += fmt.Sprintf(" AND date_maintenance <= $%d", len(args))
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM maintenance_records " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count maintenance records: %w", err)
	}

	if params.PageSize <= 0 {
		params.PageSize = 20
	}
	if params.Page <= 0 {
		params.Page = 1
	}
	offset := (params.Page - 1) * params.PageSize

	args = append(args, params.PageSize, offset)
	query := fmt.Sprintf(`SELECT `+recordColumns+` FROM maintenance_records %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list maintenance records: %w", err)
	}
	defer rows.Close()

	var records []*domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan maintenance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, rec := range records {
		if rec.Devices, err = loadDevices(ctx, r.pool, rec.ID); err != nil {
			return nil, 0, err
		}
	}

	return records, total, nil
}

// ListOverdueConfirmations returns the IDs of records whose confirmation
// deadline elapsed without a client response and without the coordinator
// being notified yet. The scheduler worker uses this as a sweep alongside
// the per-record deadline tasks.
func (r *Repository) ListOverdueConfirmations(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM maintenance_records
		WHERE confirmation_required = TRUE
		  AND confirmed_at IS NULL
		  AND confirmation_deadline IS NOT NULL
		  AND confirmation_deadline <= $1
		  AND coordinator_notified = FALSE
		  AND status NOT IN ('completed', 'cancelled', 'rejected')
		ORDER BY confirmation_deadline`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue confirmations: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan record id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
