package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newPendingRecord() *Record {
	return NewRecord(TypeCorrective, "Ana Torres", "+573001112233", "Cra 7 # 12-34", nil, []string{"dev-1", "dev-2"})
}

func mustQuotedPaid(t *testing.T) *Record {
	t.Helper()
	rec := newPendingRecord()
	if err := rec.SubmitQuotation(150000, "doc://abc"); err != nil {
		t.Fatalf("submit quotation: %v", err)
	}
	if err := rec.UploadPaymentProof("doc://proof"); err != nil {
		t.Fatalf("upload proof: %v", err)
	}
	if err := rec.VerifyPayment(true); err != nil {
		t.Fatalf("verify payment: %v", err)
	}
	return rec
}

func mustAssigned(t *testing.T) *Record {
	t.Helper()
	rec := mustQuotedPaid(t)
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := rec.AssignTechnician(uuid.New(), date, ShiftAM, true); err != nil {
		t.Fatalf("assign technician: %v", err)
	}
	return rec
}

func guardOf(t *testing.T, err error) Guard {
	t.Helper()
	var gv *GuardViolation
	if !errors.As(err, &gv) {
		t.Fatalf("expected GuardViolation, got %v", err)
	}
	return gv.Guard
}

func TestQuotationPaymentFlow(t *testing.T) {
	rec := newPendingRecord()

	if err := rec.SubmitQuotation(150000, "doc://abc"); err != nil {
		t.Fatalf("submit quotation: %v", err)
	}
	if rec.Status != StatusQuoted {
		t.Fatalf("expected quoted, got %s", rec.Status)
	}
	if rec.Payment.IsPaid == nil || *rec.Payment.IsPaid {
		t.Fatalf("expected isPaid=false after quotation")
	}

	if err := rec.UploadPaymentProof("doc://proof"); err != nil {
		t.Fatalf("upload proof: %v", err)
	}
	if rec.Status != StatusPaymentUploaded {
		t.Fatalf("expected payment_uploaded, got %s", rec.Status)
	}

	if err := rec.VerifyPayment(true); err != nil {
		t.Fatalf("verify payment: %v", err)
	}
	if rec.Status != StatusQuoted {
		t.Fatalf("expected quoted after verification, got %s", rec.Status)
	}
	if rec.Payment.IsPaid == nil || !*rec.Payment.IsPaid {
		t.Fatalf("expected isPaid=true after acceptance")
	}
}

func TestSubmitQuotationGuards(t *testing.T) {
	rec := newPendingRecord()

	if g := guardOf(t, rec.SubmitQuotation(0, "doc://abc")); g != GuardNonPositiveValue {
		t.Fatalf("expected NonPositiveValue, got %s", g)
	}
	if rec.Status != StatusPending {
		t.Fatalf("record mutated by failed guard: %s", rec.Status)
	}

	if g := guardOf(t, rec.SubmitQuotation(150000, "")); g != GuardMissingPriceSupport {
		t.Fatalf("expected MissingPriceSupport, got %s", g)
	}
	if rec.Payment.ValueCents != nil {
		t.Fatalf("payment value set despite failed guard")
	}
}

func TestVerifyPaymentRejectionRevertsToQuoted(t *testing.T) {
	rec := newPendingRecord()
	if err := rec.SubmitQuotation(150000, "doc://abc"); err != nil {
		t.Fatal(err)
	}
	if err := rec.UploadPaymentProof("doc://proof"); err != nil {
		t.Fatal(err)
	}
	if err := rec.VerifyPayment(false); err != nil {
		t.Fatal(err)
	}

	if rec.Status != StatusQuoted {
		t.Fatalf("expected quoted after rejection, got %s", rec.Status)
	}
	if rec.Payment.IsPaid == nil || *rec.Payment.IsPaid {
		t.Fatalf("expected isPaid=false after rejection")
	}
	// The rejected proof is retained for audit.
	if rec.Payment.PaymentSupportRef == nil || *rec.Payment.PaymentSupportRef != "doc://proof" {
		t.Fatalf("expected rejected proof ref to be retained")
	}
}

func TestAssignRequiresSettledPayment(t *testing.T) {
	rec := newPendingRecord()
	if err := rec.SubmitQuotation(150000, "doc://abc"); err != nil {
		t.Fatal(err)
	}

	err := rec.AssignTechnician(uuid.New(), time.Now(), ShiftAM, true)
	if g := guardOf(t, err); g != GuardPaymentNotVerified {
		t.Fatalf("expected PaymentNotVerified, got %s", g)
	}
	if rec.Status != StatusQuoted || rec.TechnicianID != nil {
		t.Fatalf("record mutated by failed assignment")
	}
}

func TestAssignWithoutPaymentStep(t *testing.T) {
	rec := newPendingRecord()
	if err := rec.MarkNoPaymentRequired(); err != nil {
		t.Fatal(err)
	}
	if rec.Payment.IsPaid != nil {
		t.Fatalf("expected isPaid=null after markNoPaymentRequired")
	}

	techID := uuid.New()
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := rec.AssignTechnician(techID, date, ShiftAM, true); err != nil {
		t.Fatalf("assign without payment step: %v", err)
	}
	if rec.Status != StatusAssigned {
		t.Fatalf("expected assigned, got %s", rec.Status)
	}
	if rec.TechnicianID == nil || *rec.TechnicianID != techID {
		t.Fatalf("technician not bound")
	}
	if rec.DateMaintenance == nil || rec.Shift == nil || *rec.Shift != ShiftAM {
		t.Fatalf("slot not bound")
	}
}

func TestAssignUnavailableTechnician(t *testing.T) {
	rec := mustQuotedPaid(t)

	err := rec.AssignTechnician(uuid.New(), time.Now(), ShiftPM, false)
	if g := guardOf(t, err); g != GuardTechnicianUnavailable {
		t.Fatalf("expected TechnicianUnavailable, got %s", g)
	}
	if rec.Status != StatusQuoted {
		t.Fatalf("status changed on failed bind: %s", rec.Status)
	}
}

func TestReschedulePreservesStatusAndTechnician(t *testing.T) {
	rec := mustAssigned(t)
	originalTech := *rec.TechnicianID

	newDate := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	if err := rec.Reschedule(newDate, ShiftPM, nil, true); err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	if rec.Status != StatusAssigned {
		t.Fatalf("status changed by reschedule: %s", rec.Status)
	}
	if !rec.DateMaintenance.Equal(newDate) || *rec.Shift != ShiftPM {
		t.Fatalf("slot not overwritten")
	}
	if *rec.TechnicianID != originalTech {
		t.Fatalf("technician changed without replacement")
	}
}

func TestRescheduleWithNewTechnician(t *testing.T) {
	rec := mustAssigned(t)
	replacement := uuid.New()

	if err := rec.Reschedule(*rec.DateMaintenance, ShiftPM, &replacement, true); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if *rec.TechnicianID != replacement {
		t.Fatalf("replacement technician not bound")
	}
}

func TestCancelClearsAssignment(t *testing.T) {
	rec := mustAssigned(t)
	if err := rec.RequireConfirmation(time.Now().Add(24 * time.Hour)); err != nil {
		t.Fatal(err)
	}

	if err := rec.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if rec.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", rec.Status)
	}
	if rec.TechnicianID != nil || rec.DateMaintenance != nil || rec.Shift != nil {
		t.Fatalf("assignment fields not cleared")
	}
	if rec.Confirmation.Required || rec.Confirmation.Deadline != nil {
		t.Fatalf("confirmation fields not cleared")
	}
}

func TestCancelTerminalIsIllegal(t *testing.T) {
	rec := mustAssigned(t)
	if err := rec.Cancel(); err != nil {
		t.Fatal(err)
	}

	err := rec.Cancel()
	var it *IllegalTransition
	if !errors.As(err, &it) {
		t.Fatalf("expected IllegalTransition, got %v", err)
	}
	if it.Current != StatusCancelled || it.Event != EventCancel {
		t.Fatalf("unexpected illegal transition detail: %+v", it)
	}
}

func TestCompleteWorkRequiresAllDevices(t *testing.T) {
	rec := mustAssigned(t)
	if err := rec.StartWork(ActionEntry{Timestamp: time.Now()}); err != nil {
		t.Fatal(err)
	}
	rec.SetDeviceProgress("dev-1", ProgressCompleted, 100)
	rec.SetDeviceProgress("dev-2", ProgressInProgress, 40)

	if g := guardOf(t, rec.CompleteWork()); g != GuardDevicesIncomplete {
		t.Fatalf("expected DevicesIncomplete, got %s", g)
	}
	if rec.Status != StatusInProgress {
		t.Fatalf("status changed on failed completion: %s", rec.Status)
	}

	rec.SetDeviceProgress("dev-2", ProgressCompleted, 100)
	if err := rec.CompleteWork(); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if rec.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", rec.Status)
	}
}

func TestStartWorkEntersInProgressOnce(t *testing.T) {
	rec := mustAssigned(t)

	if err := rec.StartWork(ActionEntry{Timestamp: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if rec.Status != StatusInProgress {
		t.Fatalf("expected in_progress, got %s", rec.Status)
	}

	// Pause and resume append without changing status.
	reason := "waiting for spare part"
	if err := rec.RecordAction(ActionEntry{Action: ActionPause, Timestamp: time.Now(), Reason: &reason}); err != nil {
		t.Fatal(err)
	}
	if err := rec.RecordAction(ActionEntry{Action: ActionResume, Timestamp: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if rec.Status != StatusInProgress {
		t.Fatalf("status changed by pause/resume: %s", rec.Status)
	}
	if len(rec.Actions) != 3 {
		t.Fatalf("expected 3 action entries, got %d", len(rec.Actions))
	}
}

func TestConfirmByClientIsIdempotent(t *testing.T) {
	rec := mustAssigned(t)
	if err := rec.RequireConfirmation(time.Now().Add(48 * time.Hour)); err != nil {
		t.Fatal(err)
	}

	first := time.Date(2024, 5, 30, 10, 0, 0, 0, time.UTC)
	if err := rec.ConfirmByClient(first); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := rec.ConfirmByClient(first.Add(time.Hour)); err != nil {
		t.Fatalf("second confirm should be a no-op: %v", err)
	}
	if rec.Confirmation.ConfirmedAt == nil || !rec.Confirmation.ConfirmedAt.Equal(first) {
		t.Fatalf("confirmedAt changed by repeated confirmation")
	}
}

func TestConfirmWithoutBeingRequired(t *testing.T) {
	rec := mustAssigned(t)

	err := rec.ConfirmByClient(time.Now())
	if g := guardOf(t, err); g != GuardConfirmationClosed {
		t.Fatalf("expected ConfirmationClosed, got %s", g)
	}
}

func TestCoordinatorMarksAreIdempotent(t *testing.T) {
	rec := mustAssigned(t)
	if err := rec.RequireConfirmation(time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	first := time.Date(2024, 5, 30, 9, 0, 0, 0, time.UTC)
	rec.MarkCoordinatorNotified(first)
	rec.MarkCoordinatorNotified(first.Add(time.Hour))
	if !rec.Confirmation.CoordinatorNotifiedAt.Equal(first) {
		t.Fatalf("coordinatorNotifiedAt overwritten")
	}

	rec.MarkCoordinatorCalled(first)
	rec.MarkCoordinatorCalled(first.Add(time.Hour))
	if !rec.Confirmation.CoordinatorCalledAt.Equal(first) {
		t.Fatalf("coordinatorCalledAt overwritten")
	}
}

func TestEditQuotationKeepsStatus(t *testing.T) {
	rec := newPendingRecord()
	if err := rec.SubmitQuotation(150000, "doc://abc"); err != nil {
		t.Fatal(err)
	}

	newRef := "doc://abc-v2"
	if err := rec.EditQuotation(175000, &newRef); err != nil {
		t.Fatalf("edit quotation: %v", err)
	}
	if rec.Status != StatusQuoted {
		t.Fatalf("status changed by edit: %s", rec.Status)
	}
	if *rec.Payment.ValueCents != 175000 || *rec.Payment.PriceSupportRef != newRef {
		t.Fatalf("quotation not updated")
	}

	if g := guardOf(t, rec.EditQuotation(-5, nil)); g != GuardNonPositiveValue {
		t.Fatalf("expected NonPositiveValue, got %s", g)
	}
}

func TestEditQuotationOnlyWhileQuoting(t *testing.T) {
	rec := mustAssigned(t)

	err := rec.EditQuotation(200000, nil)
	var it *IllegalTransition
	if !errors.As(err, &it) {
		t.Fatalf("expected IllegalTransition, got %v", err)
	}
}

func TestStatusStaysInVocabulary(t *testing.T) {
	rec := newPendingRecord()
	steps := []func() error{
		func() error { return rec.SubmitQuotation(150000, "doc://abc") },
		func() error { return rec.UploadPaymentProof("doc://p1") },
		func() error { return rec.VerifyPayment(false) },
		func() error { return rec.UploadPaymentProof("doc://p2") },
		func() error { return rec.VerifyPayment(true) },
		func() error { return rec.AssignTechnician(uuid.New(), time.Now(), ShiftAM, true) },
		func() error { return rec.StartWork(ActionEntry{Timestamp: time.Now()}) },
		func() error { return rec.Cancel() },
	}

	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if !rec.Status.Valid() {
			t.Fatalf("step %d produced out-of-vocabulary status %q", i, rec.Status)
		}
	}
}
