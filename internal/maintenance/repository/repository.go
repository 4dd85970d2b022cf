// Package repository provides pgx persistence for maintenance records.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldservice_backend/internal/maintenance/domain"
	"fieldservice_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recordNotFoundMsg = "maintenance record not found"

// technicianSlotIdx is the partial unique index backing the double-booking
// guard at the database level.
const technicianSlotIdx = "maintenance_technician_slot_idx"

// ErrVersionConflict is returned when a save loses an optimistic-concurrency
// race. Callers re-load and retry once before surfacing the conflict.
var ErrVersionConflict = errors.New("maintenance record was modified concurrently")

// ErrSlotTaken is returned when the unique slot index rejects a bind: another
// transaction assigned the same technician to the same date and shift.
var ErrSlotTaken = errors.New("technician slot already taken")

// Repository provides database operations for maintenance records.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new maintenance repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordColumns = `id, type, status, client_name, client_phone, address, description,
	date_maintenance, shift, technician_id,
	is_paid, value_cents, price_support_ref, payment_support_ref,
	confirmation_required, confirmed_at, confirmation_deadline,
	coordinator_notified, coordinator_notified_at, coordinator_called, coordinator_called_at,
	version, created_at, updated_at`

// Create inserts a new record together with its linked devices.
func (r *Repository) Create(ctx context.Context, rec *domain.Record) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO maintenance_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`

	_, err = tx.Exec(ctx, query,
		rec.ID, rec.Type, rec.Status, rec.ClientName, rec.ClientPhone, rec.Address, rec.Description,
		rec.DateMaintenance, rec.Shift, rec.TechnicianID,
		rec.Payment.IsPaid, rec.Payment.ValueCents, rec.Payment.PriceSupportRef, rec.Payment.PaymentSupportRef,
		rec.Confirmation.Required, rec.Confirmation.ConfirmedAt, rec.Confirmation.Deadline,
		rec.Confirmation.CoordinatorNotified, rec.Confirmation.CoordinatorNotifiedAt,
		rec.Confirmation.CoordinatorCalled, rec.Confirmation.CoordinatorCalledAt,
		rec.Version, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create maintenance record: %w", err)
	}

	for _, device := range rec.Devices {
		if err := insertDevice(ctx, tx, rec.ID, device); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByID loads a record with its devices and action log.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Record, error) {
	return loadRecord(ctx, r.pool, id, false)
}

// queryer covers both pool and transaction handles.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func loadRecord(ctx context.Context, q queryer, id uuid.UUID, forUpdate bool) (*domain.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM maintenance_records WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	rec, err := scanRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(recordNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get maintenance record: %w", err)
	}

	if rec.Devices, err = loadDevices(ctx, q, id); err != nil {
		return nil, err
	}
	if rec.Actions, err = loadActions(ctx, q, id); err != nil {
		return nil, err
	}

	return rec, nil
}

func scanRecord(row pgx.Row) (*domain.Record, error) {
	var rec domain.Record
	err := row.Scan(
		&rec.ID, &rec.Type, &rec.Status, &rec.ClientName, &rec.ClientPhone, &rec.Address, &rec.Description,
		&rec.DateMaintenance, &rec.Shift, &rec.TechnicianID,
		&rec.Payment.IsPaid, &rec.Payment.ValueCents, &rec.Payment.PriceSupportRef, &rec.Payment.PaymentSupportRef,
		&rec.Confirmation.Required, &rec.Confirmation.ConfirmedAt, &rec.Confirmation.Deadline,
		&rec.Confirmation.CoordinatorNotified, &rec.Confirmation.CoordinatorNotifiedAt,
		&rec.Confirmation.CoordinatorCalled, &rec.Confirmation.CoordinatorCalledAt,
		&rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// TransitionFunc mutates a locked record. Returning an error rolls the
// transaction back; the record is then left untouched in the database.
type TransitionFunc func(ctx context.Context, tx pgx.Tx, rec *domain.Record) error

// WithRecord applies fn to the record identified by id inside a single
// transaction: the row is locked FOR UPDATE, fn runs its guards and
// mutations, and the save carries an optimistic version check as a second
// line of defense against writers bypassing the row lock.
func (r *Repository) WithRecord(ctx context.Context, id uuid.UUID, fn TransitionFunc) (*domain.Record, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rec, err := loadRecord(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}

	loadedVersion := rec.Version
	actionsBefore := len(rec.Actions)

	if err := fn(ctx, tx, rec); err != nil {
		return nil, err
	}

	rec.Version = loadedVersion + 1
	if err := saveRecord(ctx, tx, rec, loadedVersion); err != nil {
		return nil, err
	}

	for _, entry := range rec.Actions[actionsBefore:] {
		if err := insertAction(ctx, tx, rec.ID, entry); err != nil {
			return nil, err
		}
	}
	if err := saveDevices(ctx, tx, rec.ID, rec.Devices); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transition: %w", err)
	}

	return rec, nil
}

func saveRecord(ctx context.Context, tx pgx.Tx, rec *domain.Record, expectedVersion int64) error {
	query := `
		UPDATE maintenance_records SET
			status = $2,
			date_maintenance = $3,
			shift = $4,
			technician_id = $5,
			is_paid = $6,
			value_cents = $7,
			price_support_ref = $8,
			payment_support_ref = $9,
			confirmation_required = $10,
			confirmed_at = $11,
			confirmation_deadline = $12,
			coordinator_notified = $13,
			coordinator_notified_at = $14,
			coordinator_called = $15,
			coordinator_called_at = $16,
			version = $17,
			updated_at = $18
		WHERE id = $1 AND version = $19`

	result, err := tx.Exec(ctx, query,
		rec.ID, rec.Status, rec.DateMaintenance, rec.Shift, rec.TechnicianID,
		rec.Payment.IsPaid, rec.Payment.ValueCents, rec.Payment.PriceSupportRef, rec.Payment.PaymentSupportRef,
		rec.Confirmation.Required, rec.Confirmation.ConfirmedAt, rec.Confirmation.Deadline,
		rec.Confirmation.CoordinatorNotified, rec.Confirmation.CoordinatorNotifiedAt,
		rec.Confirmation.CoordinatorCalled, rec.Confirmation.CoordinatorCalledAt,
		rec.Version, rec.UpdatedAt, expectedVersion,
	)
	if err != nil {
		if isSlotConflict(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to save maintenance record: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrVersionConflict
	}

	return nil
}

func isSlotConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == technicianSlotIdx
}

// SlotAvailability is the directory verdict for one (technician, date, shift).
type SlotAvailability string

const (
	SlotAvailable SlotAvailability = "available"
	SlotBusy      SlotAvailability = "busy"
	SlotAbsent    SlotAvailability = "absent"
)

// CheckSlot computes the availability of a technician for a slot inside the
// caller's transaction, so the verdict and the bind commit atomically.
// Availability is always derived from current assignments and absences,
// never stored.
func CheckSlot(ctx context.Context, q queryer, technicianID uuid.UUID, date time.Time, shift domain.Shift, excludeRecordID uuid.UUID) (SlotAvailability, error) {
	var absent bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM technician_absences
			WHERE technician_id = $1 AND date = $2 AND (shift IS NULL OR shift = $3)
		)`, technicianID, date, shift).Scan(&absent)
	if err != nil {
		return "", fmt.Errorf("failed to check technician absence: %w", err)
	}
	if absent {
		return SlotAbsent, nil
	}

	var busy bool
	err = q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM maintenance_records
			WHERE technician_id = $1
			  AND date_maintenance = $2
			  AND shift = $3
			  AND status IN ('assigned', 'in_progress')
			  AND id != $4
		)`, technicianID, date, shift, excludeRecordID).Scan(&busy)
	if err != nil {
		return "", fmt.Errorf("failed to check technician assignments: %w", err)
	}
	if busy {
		return SlotBusy, nil
	}

	return SlotAvailable, nil
}
