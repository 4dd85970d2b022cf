package repository

import (
	"context"
	"fmt"

	"fieldservice_backend/internal/maintenance/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func loadActions(ctx context.Context, q queryer, recordID uuid.UUID) ([]domain.ActionEntry, error) {
	rows, err := q.Query(ctx, `
		SELECT action, occurred_at, reason, latitude, longitude
		FROM maintenance_actions
		WHERE maintenance_id = $1
		ORDER BY id`, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to load action log: %w", err)
	}
	defer rows.Close()

	var actions []domain.ActionEntry
	for rows.Next() {
		var a domain.ActionEntry
		if err := rows.Scan(&a.Action, &a.Timestamp, &a.Reason, &a.Latitude, &a.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan action entry: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// insertAction appends one entry to the action log. The log is append-only:
// entries are never updated or removed.
func insertAction(ctx context.Context, tx pgx.Tx, recordID uuid.UUID, a domain.ActionEntry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO maintenance_actions (maintenance_id, action, occurred_at, reason, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		recordID, a.Action, a.Timestamp, a.Reason, a.Latitude, a.Longitude)
	if err != nil {
		return fmt.Errorf("failed to append action entry: %w", err)
	}
	return nil
}
