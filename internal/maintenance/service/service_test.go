package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"fieldservice_backend/internal/adapters/storage"
	"fieldservice_backend/internal/maintenance/domain"
	"fieldservice_backend/internal/maintenance/repository"
	"fieldservice_backend/platform/apperr"
	"fieldservice_backend/platform/logger"
)

func testService() *Service {
	return &Service{logger: logger.New("test")}
}

type fakeStore struct {
	deleteCalls  int
	deleteBucket string
	deleteKey    string
	deleteErr    error
}

func (f *fakeStore) GenerateUploadURL(context.Context, string, string, string, string, int64) (*storage.PresignedURL, error) {
	return nil, nil
}

func (f *fakeStore) GenerateDownloadURL(context.Context, string, string) (*storage.PresignedURL, error) {
	return nil, nil
}

func (f *fakeStore) ObjectExists(context.Context, string, string) (bool, error) {
	return true, nil
}

func (f *fakeStore) DeleteObject(_ context.Context, bucket, fileKey string) error {
	f.deleteCalls++
	f.deleteBucket = bucket
	f.deleteKey = fileKey
	return f.deleteErr
}

func (f *fakeStore) EnsureBucketExists(context.Context, string) error { return nil }

var _ storage.Service = (*fakeStore)(nil)

func TestMapTransitionErrGuardViolation(t *testing.T) {
	s := testService()

	src := &domain.GuardViolation{
		Guard:   domain.GuardPaymentNotVerified,
		Message: "payment must be verified or waived before assignment",
	}
	err := s.mapTransitionErr(context.Background(), uuid.New(), domain.EventAssignTechnician, src)

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	if appErr.Kind != apperr.KindUnprocessable {
		t.Fatalf("kind = %v, want KindUnprocessable", appErr.Kind)
	}
	details, ok := appErr.Details.(map[string]string)
	if !ok {
		t.Fatalf("details type %T", appErr.Details)
	}
	if details["guard"] != string(domain.GuardPaymentNotVerified) {
		t.Errorf("guard detail = %q", details["guard"])
	}
}

func TestMapTransitionErrIllegalTransition(t *testing.T) {
	s := testService()

	src := &domain.IllegalTransition{Current: domain.StatusCompleted, Event: domain.EventCancel}
	err := s.mapTransitionErr(context.Background(), uuid.New(), domain.EventCancel, src)

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	if appErr.Kind != apperr.KindConflict {
		t.Fatalf("kind = %v, want KindConflict", appErr.Kind)
	}
	details := appErr.Details.(map[string]string)
	if details["currentStatus"] != string(domain.StatusCompleted) {
		t.Errorf("currentStatus detail = %q", details["currentStatus"])
	}
	if details["event"] != domain.EventCancel {
		t.Errorf("event detail = %q", details["event"])
	}
}

func TestMapTransitionErrSlotTaken(t *testing.T) {
	s := testService()

	err := s.mapTransitionErr(context.Background(), uuid.New(), domain.EventAssignTechnician, repository.ErrSlotTaken)

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	if appErr.Kind != apperr.KindUnprocessable {
		t.Fatalf("kind = %v, want KindUnprocessable", appErr.Kind)
	}
	details := appErr.Details.(map[string]string)
	if details["guard"] != string(domain.GuardTechnicianUnavailable) {
		t.Errorf("guard detail = %q", details["guard"])
	}
}

func TestMapTransitionErrVersionConflict(t *testing.T) {
	s := testService()

	err := s.mapTransitionErr(context.Background(), uuid.New(), domain.EventStartWork, repository.ErrVersionConflict)

	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDiscardReplacedObject(t *testing.T) {
	ctx := context.Background()
	oldRef := "rec/proof_old.pdf"

	t.Run("deletes the superseded object", func(t *testing.T) {
		store := &fakeStore{}
		s := &Service{store: store, logger: logger.New("test")}

		s.discardReplacedObject(ctx, "payment-proofs", &oldRef, "rec/proof_new.pdf")
		if store.deleteCalls != 1 {
			t.Fatalf("expected 1 delete, got %d", store.deleteCalls)
		}
		if store.deleteBucket != "payment-proofs" || store.deleteKey != oldRef {
			t.Fatalf("deleted %s/%s", store.deleteBucket, store.deleteKey)
		}
	})

	t.Run("no previous document", func(t *testing.T) {
		store := &fakeStore{}
		s := &Service{store: store, logger: logger.New("test")}

		s.discardReplacedObject(ctx, "payment-proofs", nil, "rec/proof_new.pdf")
		if store.deleteCalls != 0 {
			t.Fatalf("unexpected delete")
		}
	})

	t.Run("same reference kept", func(t *testing.T) {
		store := &fakeStore{}
		s := &Service{store: store, logger: logger.New("test")}

		s.discardReplacedObject(ctx, "payment-proofs", &oldRef, oldRef)
		if store.deleteCalls != 0 {
			t.Fatalf("unexpected delete")
		}
	})

	t.Run("storage disabled", func(t *testing.T) {
		s := testService()
		s.discardReplacedObject(ctx, "payment-proofs", &oldRef, "rec/proof_new.pdf")
	})

	t.Run("delete failure is swallowed", func(t *testing.T) {
		store := &fakeStore{deleteErr: errors.New("storage down")}
		s := &Service{store: store, logger: logger.New("test")}

		s.discardReplacedObject(ctx, "payment-proofs", &oldRef, "rec/proof_new.pdf")
		if store.deleteCalls != 1 {
			t.Fatalf("expected delete attempt")
		}
	})
}

func TestConfirmOnce(t *testing.T) {
	rec := &domain.Record{Confirmation: domain.Confirmation{Required: true}}
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	if err := confirmOnce(rec, now); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if rec.Confirmation.ConfirmedAt == nil || !rec.Confirmation.ConfirmedAt.Equal(now) {
		t.Fatalf("confirmedAt not set by first confirm")
	}

	stamp := rec.UpdatedAt
	if err := confirmOnce(rec, now.Add(time.Hour)); !errors.Is(err, errAlreadyConfirmed) {
		t.Fatalf("expected errAlreadyConfirmed, got %v", err)
	}
	if !rec.Confirmation.ConfirmedAt.Equal(now) {
		t.Fatalf("confirmedAt changed by repeated confirmation")
	}
	if !rec.UpdatedAt.Equal(stamp) {
		t.Fatalf("record touched by repeated confirmation")
	}
}

func TestMapTransitionErrPassthrough(t *testing.T) {
	s := testService()

	src := errors.New("connection reset")
	err := s.mapTransitionErr(context.Background(), uuid.New(), domain.EventStartWork, src)
	if !errors.Is(err, src) {
		t.Fatalf("unexpected mapping of infrastructure error: %v", err)
	}
}
