package repository

import (
	"context"
	"fmt"

	"fieldservice_backend/internal/maintenance/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func loadDevices(ctx context.Context, q queryer, recordID uuid.UUID) ([]domain.DeviceProgress, error) {
	rows, err := q.Query(ctx, `
		SELECT device_ref, progress_status, progress_pct
		FROM maintenance_devices
		WHERE maintenance_id = $1
		ORDER BY device_ref`, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to load devices: %w", err)
	}
	defer rows.Close()

	var devices []domain.DeviceProgress
	for rows.Next() {
		var d domain.DeviceProgress
		if err := rows.Scan(&d.DeviceRef, &d.ProgressStatus, &d.ProgressPct); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func insertDevice(ctx context.Context, tx pgx.Tx, recordID uuid.UUID, d domain.DeviceProgress) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO maintenance_devices (maintenance_id, device_ref, progress_status, progress_pct)
		VALUES ($1, $2, $3, $4)`, recordID, d.DeviceRef, d.ProgressStatus, d.ProgressPct)
	if err != nil {
		return fmt.Errorf("failed to insert device: %w", err)
	}
	return nil
}

// saveDevices upserts every device row. The set is small per record, so a
// per-row upsert keeps the code simple.
func saveDevices(ctx context.Context, tx pgx.Tx, recordID uuid.UUID, devices []domain.DeviceProgress) error {
	for _, d := range devices {
		_, err := tx.Exec(ctx, `
			INSERT INTO maintenance_devices (maintenance_id, device_ref, progress_status, progress_pct)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (maintenance_id, device_ref)
			DO UPDATE SET progress_status = EXCLUDED.progress_status, progress_pct = EXCLUDED.progress_pct`,
			recordID, d.DeviceRef, d.ProgressStatus, d.ProgressPct)
		if err != nil {
			return fmt.Errorf("failed to save device progress: %w", err)
		}
	}
	return nil
}
