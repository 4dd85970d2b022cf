package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event names reported inside IllegalTransition errors.
const (
	EventSubmitQuotation       = "submit_quotation"
	EventEditQuotation         = "edit_quotation"
	EventMarkNoPaymentRequired = "mark_no_payment_required"
	EventUploadPaymentProof    = "upload_payment_proof"
	EventVerifyPayment         = "verify_payment"
	EventAssignTechnician      = "assign_technician"
	EventReschedule            = "reschedule"
	EventStartWork             = "start_work"
	EventRecordAction          = "record_action"
	EventCompleteWork          = "complete_work"
	EventCancel                = "cancel"
	EventRequireConfirmation   = "require_confirmation"
	EventConfirmByClient       = "confirm_by_client"
)

// SubmitQuotation moves pending -> quoted with payment required. The value
// must be positive and the price support document must already be uploaded.
func (r *Record) SubmitQuotation(valueCents int64, priceSupportRef string) error {
	if r.Status != StatusPending {
		return illegal(r.Status, EventSubmitQuotation)
	}
	if valueCents <= 0 {
		return violation(GuardNonPositiveValue, "quotation value must be greater than 0")
	}
	if priceSupportRef == "" {
		return violation(GuardMissingPriceSupport, "quotation document reference is required")
	}

	paid := false
	r.Status = StatusQuoted
	r.Payment.IsPaid = &paid
	r.Payment.ValueCents = &valueCents
	r.Payment.PriceSupportRef = &priceSupportRef
	r.touch()
	return nil
}

// EditQuotation re-runs the quotation guard without changing status. Allowed
// only while the record sits in quoted or payment_uploaded.
func (r *Record) EditQuotation(valueCents int64, priceSupportRef *string) error {
	if r.Status != StatusQuoted && r.Status != StatusPaymentUploaded {
		return illegal(r.Status, EventEditQuotation)
	}
	if r.Payment.PaymentRequired() || r.Status == StatusPaymentUploaded {
		if valueCents <= 0 {
			return violation(GuardNonPositiveValue, "quotation value must be greater than 0")
		}
	}
	if priceSupportRef != nil && *priceSupportRef == "" {
		return violation(GuardMissingPriceSupport, "quotation document reference is required")
	}

	r.Payment.ValueCents = &valueCents
	if priceSupportRef != nil {
		r.Payment.PriceSupportRef = priceSupportRef
	}
	r.touch()
	return nil
}

// MarkNoPaymentRequired moves pending -> quoted with no payment step: the
// record becomes immediately eligible for assignment.
func (r *Record) MarkNoPaymentRequired() error {
	if r.Status != StatusPending {
		return illegal(r.Status, EventMarkNoPaymentRequired)
	}

	r.Status = StatusQuoted
	r.Payment.IsPaid = nil
	r.touch()
	return nil
}

// UploadPaymentProof moves quoted -> payment_uploaded. Only meaningful while
// a payment is outstanding; a new upload overwrites the previous reference.
func (r *Record) UploadPaymentProof(proofRef string) error {
	if r.Status != StatusQuoted || !r.Payment.PaymentRequired() {
		return illegal(r.Status, EventUploadPaymentProof)
	}
	if proofRef == "" {
		return violation(GuardMissingPaymentProof, "payment proof reference is required")
	}

	r.Status = StatusPaymentUploaded
	r.Payment.PaymentSupportRef = &proofRef
	r.touch()
	return nil
}

// VerifyPayment settles an uploaded proof. Acceptance returns the record to
// quoted with isPaid=true (eligible for assignment); rejection returns it to
// quoted with isPaid=false, awaiting a new proof. The rejected proof
// reference is retained for audit.
func (r *Record) VerifyPayment(accepted bool) error {
	if r.Status != StatusPaymentUploaded {
		return illegal(r.Status, EventVerifyPayment)
	}

	paid := accepted
	r.Status = StatusQuoted
	r.Payment.IsPaid = &paid
	r.touch()
	return nil
}

// AssignTechnician binds a technician and slot to a quoted record. The
// available flag must be evaluated against the directory inside the same
// transaction that persists the bind.
func (r *Record) AssignTechnician(technicianID uuid.UUID, date time.Time, shift Shift, available bool) error {
	if r.Status != StatusQuoted {
		return illegal(r.Status, EventAssignTechnician)
	}
	if r.Payment.PaymentRequired() {
		return violation(GuardPaymentNotVerified, "payment has not been verified")
	}
	if !available {
		return violation(GuardTechnicianUnavailable, "technician is not available in the requested slot")
	}

	r.Status = StatusAssigned
	r.TechnicianID = &technicianID
	r.DateMaintenance = &date
	r.Shift = &shift
	r.touch()
	return nil
}

// Reschedule overwrites the slot (and optionally the technician) of an
// assigned or in-progress record. Status is preserved. The old slot becomes
// free implicitly since availability is derived from assignments.
func (r *Record) Reschedule(date time.Time, shift Shift, newTechnicianID *uuid.UUID, available bool) error {
	if r.Status != StatusAssigned && r.Status != StatusInProgress {
		return illegal(r.Status, EventReschedule)
	}
	if !available {
		return violation(GuardTechnicianUnavailable, "technician is not available in the requested slot")
	}

	r.DateMaintenance = &date
	r.Shift = &shift
	if newTechnicianID != nil {
		r.TechnicianID = newTechnicianID
	}
	r.touch()
	return nil
}

// StartWork records the first field action and enters in_progress. Subsequent
// starts on an in-progress record only append to the log.
func (r *Record) StartWork(entry ActionEntry) error {
	if r.Status != StatusAssigned && r.Status != StatusInProgress {
		return illegal(r.Status, EventStartWork)
	}

	entry.Action = ActionStart
	r.Actions = append(r.Actions, entry)
	r.Status = StatusInProgress
	r.touch()
	return nil
}

// RecordAction appends a pause/resume/end entry to the execution log without
// touching the lifecycle status.
func (r *Record) RecordAction(entry ActionEntry) error {
	if r.Status != StatusInProgress {
		return illegal(r.Status, EventRecordAction)
	}

	r.Actions = append(r.Actions, entry)
	r.touch()
	return nil
}

// CompleteWork moves in_progress -> completed once every linked device
// reports completion.
func (r *Record) CompleteWork() error {
	if r.Status != StatusInProgress {
		return illegal(r.Status, EventCompleteWork)
	}
	if !r.AllDevicesCompleted() {
		return violation(GuardDevicesIncomplete, "not all devices have completed")
	}

	r.Status = StatusCompleted
	r.touch()
	return nil
}

// Cancel moves any non-terminal record to cancelled, clearing the assignment
// and all confirmation tracking. Cancelled records are never reactivated.
func (r *Record) Cancel() error {
	if r.Status.Terminal() {
		return illegal(r.Status, EventCancel)
	}

	r.Status = StatusCancelled
	r.TechnicianID = nil
	r.DateMaintenance = nil
	r.Shift = nil
	r.Confirmation = Confirmation{}
	r.touch()
	return nil
}

// RequireConfirmation arms the confirmation tracker for an assigned visit.
func (r *Record) RequireConfirmation(deadline time.Time) error {
	if r.Status != StatusAssigned && r.Status != StatusInProgress {
		return illegal(r.Status, EventRequireConfirmation)
	}
	if r.Confirmation.ConfirmedAt != nil {
		return violation(GuardConfirmationClosed, "visit has already been confirmed")
	}

	r.Confirmation.Required = true
	r.Confirmation.Deadline = &deadline
	r.touch()
	return nil
}

// ConfirmByClient sets confirmedAt exactly once. A repeated confirmation is a
// no-op, not an error.
func (r *Record) ConfirmByClient(now time.Time) error {
	if r.Confirmation.ConfirmedAt != nil {
		return nil
	}
	if !r.Confirmation.Required {
		return violation(GuardConfirmationClosed, "confirmation is not open for this visit")
	}

	r.Confirmation.ConfirmedAt = &now
	r.touch()
	return nil
}

// MarkCoordinatorNotified flags the missed-deadline notification. Idempotent.
func (r *Record) MarkCoordinatorNotified(now time.Time) {
	if r.Confirmation.CoordinatorNotified {
		return
	}
	r.Confirmation.CoordinatorNotified = true
	r.Confirmation.CoordinatorNotifiedAt = &now
	r.touch()
}

// MarkCoordinatorCalled records that the coordinator phoned the client.
// Idempotent; the first call timestamp is kept.
func (r *Record) MarkCoordinatorCalled(now time.Time) {
	if r.Confirmation.CoordinatorCalled {
		return
	}
	r.Confirmation.CoordinatorCalled = true
	r.Confirmation.CoordinatorCalledAt = &now
	r.touch()
}

// SetDeviceProgress updates one linked device. Returns false when the device
// reference is not linked to this record.
func (r *Record) SetDeviceProgress(deviceRef string, status ProgressStatus, pct int) bool {
	for i := range r.Devices {
		if r.Devices[i].DeviceRef == deviceRef {
			r.Devices[i].ProgressStatus = status
			r.Devices[i].ProgressPct = pct
			r.touch()
			return true
		}
	}
	return false
}

func (r *Record) touch() {
	r.UpdatedAt = time.Now().UTC()
}
