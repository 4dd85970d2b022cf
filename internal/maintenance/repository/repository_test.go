package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

// The double-booking guard rests on the partial unique index: when two
// transactions bind the same technician to the same date and shift, the loser
// gets a 23505 on maintenance_technician_slot_idx and must surface ErrSlotTaken
// rather than a generic persistence failure.
func TestIsSlotConflict(t *testing.T) {
	slotViolation := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: technicianSlotIdx,
	}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "unique violation on the slot index",
			err:  slotViolation,
			want: true,
		},
		{
			name: "wrapped unique violation on the slot index",
			err:  fmt.Errorf("failed to save maintenance record: %w", slotViolation),
			want: true,
		},
		{
			name: "unique violation on another constraint",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "maintenance_pkey"},
			want: false,
		},
		{
			name: "different pg error class",
			err:  &pgconn.PgError{Code: "23503", ConstraintName: technicianSlotIdx},
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("connection reset"),
			want: false,
		},
		{
			name: "nil",
			err:  nil,
			want: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := isSlotConflict(tc.err); got != tc.want {
				t.Fatalf("isSlotConflict(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
