package scheduler

import (
	"testing"
	"time"

	"fieldservice_backend/internal/maintenance/domain"
)

func armedRecord(deadline time.Time) *domain.Record {
	rec := domain.NewRecord(domain.TypePreventive, "Ana Torres", "+573001112233", "Cra 10 # 5-55", nil, nil)
	rec.Status = domain.StatusAssigned
	rec.Confirmation.Required = true
	rec.Confirmation.Deadline = &deadline
	return rec
}

func TestDeadlineStillMissed(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	t.Run("overdue and unconfirmed", func(t *testing.T) {
		if !deadlineStillMissed(armedRecord(past), now) {
			t.Fatal("expected overdue unconfirmed record to be missed")
		}
	})

	t.Run("client confirmed in the meantime", func(t *testing.T) {
		rec := armedRecord(past)
		confirmedAt := now.Add(-30 * time.Minute)
		rec.Confirmation.ConfirmedAt = &confirmedAt
		if deadlineStillMissed(rec, now) {
			t.Fatal("confirmed record must not trigger notification")
		}
	})

	t.Run("deadline moved by reschedule", func(t *testing.T) {
		if deadlineStillMissed(armedRecord(future), now) {
			t.Fatal("future deadline must not trigger notification")
		}
	})

	t.Run("already notified", func(t *testing.T) {
		rec := armedRecord(past)
		rec.MarkCoordinatorNotified(now)
		if deadlineStillMissed(rec, now) {
			t.Fatal("notification must fire at most once")
		}
	})

	t.Run("confirmation never armed", func(t *testing.T) {
		rec := armedRecord(past)
		rec.Confirmation.Required = false
		if deadlineStillMissed(rec, now) {
			t.Fatal("unarmed record must not trigger notification")
		}
	})

	t.Run("record cancelled", func(t *testing.T) {
		rec := armedRecord(past)
		if err := rec.Cancel(); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if deadlineStillMissed(rec, now) {
			t.Fatal("terminal record must not trigger notification")
		}
	})
}
