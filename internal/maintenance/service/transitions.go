package service

import (
	"context"
	"errors"
	"time"

	"fieldservice_backend/internal/events"
	"fieldservice_backend/internal/maintenance/domain"
	"fieldservice_backend/internal/maintenance/repository"
	"fieldservice_backend/internal/scheduler"
	"fieldservice_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SubmitQuotation prices a pending request. The price support document must
// already be uploaded to the quotation bucket.
func (s *Service) SubmitQuotation(ctx context.Context, id uuid.UUID, valueCents int64, priceSupportRef string) (*domain.Record, error) {
	err := s.requireStoredObject(ctx, s.cfg.GetMinioBucketQuotationDocs(), priceSupportRef,
		domain.GuardMissingPriceSupport, "price support document was not uploaded")
	if err != nil {
		return nil, err
	}

	rec, err := s.mutate(ctx, id, domain.EventSubmitQuotation, func(_ context.Context, _ pgx.Tx, rec *domain.Record) error {
		return rec.SubmitQuotation(valueCents, priceSupportRef)
	})
	if err != nil {
		return nil, err
	}

	s.logTransition(rec, domain.EventSubmitQuotation, domain.StatusPending)
	s.bus.Publish(ctx, events.QuotationSubmitted{
		BaseEvent:  events.NewBaseEvent(),
		RecordID:   rec.ID,
		ValueCents: valueCents,
	})
	return rec, nil
}

// EditQuotation corrects the value or support of an unsettled quotation
// without changing status.
func (s *Service) EditQuotation(ctx context.Context, id uuid.UUID, valueCents int64, priceSupportRef *string) (*domain.Record, error) {
	if priceSupportRef != nil {
		err := s.requireStoredObject(ctx, s.cfg.GetMinioBucketQuotationDocs(), *priceSupportRef,
			domain.GuardMissingPriceSupport, "price support document was not uploaded")
		if err != nil {
			return nil, err
		}
	}

	var prevSupport *string
	rec, err := s.mutate(ctx, id, domain.EventEditQuotation, func(_ context.Context, _ pgx.Tx, rec *domain.Record) error {
		prevSupport = rec.Payment.PriceSupportRef
		return rec.EditQuotation(valueCents, priceSupportRef)
	})
	if err != nil {
		return nil, err
	}

	if priceSupportRef != nil {
		s.discardReplacedObject(ctx, s.cfg.GetMinioBucketQuotationDocs(), prevSupport, *priceSupportRef)
	}
	return rec, nil
}

// MarkNoPaymentRequired settles a pending request without a payment step,
// typically warranty or contract-covered work.
func (s *Service) MarkNoPaymentRequired(ctx context.Context, id uuid.UUID) (*domain.Record, error) {
	rec, err := s.mutate(ctx, id, domain.EventMarkNoPaymentRequired, func(_ context.Context, _ pgx.Tx, rec *domain.Record) error {
		return rec.MarkNoPaymentRequired()
	})
	if err != nil {
		return nil, err
	}

	s.logTransition(rec, domain.EventMarkNoPaymentRequired, domain.StatusPending)
	return rec, nil
}

// UploadPaymentProof attaches the client's payment receipt. The object must
// already exist in the payment proofs bucket.
func (s *Service) UploadPaymentProof(ctx context.Context, id uuid.UUID, proofRef string) (*domain.Record, error) {
	err := s.requireStoredObject(ctx, s.cfg.GetMinioBucketPaymentProofs(), proofRef,
		domain.GuardMissingPaymentProof, "payment proof was not uploaded")
	if err != nil {
		return nil, err
	}

	var prevProof *string
	rec, err := s.mutate(ctx, id, domain.EventUploadPaymentProof, func(_ context.Context, _ pgx.Tx, rec *domain.Record) error {
		prevProof = rec.Payment.PaymentSupportRef
		return rec.UploadPaymentProof(proofRef)
	})
	if err != nil {
		return nil, err
	}

	// A fresh proof after a rejection supersedes the old object.
	s.discardReplacedObject(ctx, s.cfg.GetMinioBucketPaymentProofs(), prevProof, proofRef)

	s.logTransition(rec, domain.EventUploadPaymentProof, domain.StatusQuoted)
	s.bus.Publish(ctx, events.PaymentProofUploaded{
		BaseEvent:  events.NewBaseEvent(),
		RecordID:   rec.ID,
		ObjectName: proofRef,
	})
	return rec, nil
}

// VerifyPayment records the coordinator's verdict on the uploaded receipt.
// Rejection returns the record to quoted; the proof reference is retained
// for audit.
func (s *Service) VerifyPayment(ctx context.Context, id uuid.UUID, accepted bool) (*domain.Record, error) {
	rec, err := s.mutate(ctx, id, domain.EventVerifyPayment, func(_ context.Context, _ pgx.Tx, rec *domain.Record) error {
		return rec.VerifyPayment(accepted)
	})
	if err != nil {
		return nil, err
	}

	s.logTransition(rec, domain.EventVerifyPayment, domain.StatusPaymentUploaded)
	s.bus.Publish(ctx, events.PaymentVerified{
		BaseEvent: events.NewBaseEvent(),
		RecordID:  rec.ID,
		Accepted:  accepted,
	})
	return rec, nil
}

// AssignTechnician binds a technician to a date and shift. The availability
// verdict is computed inside the same transaction that persists the bind, so
// two coordinators racing for the last slot cannot both win: the loser hits
// either the fresh verdict or the unique slot index.
func (s *Service) AssignTechnician(ctx context.Context, id, technicianID uuid.UUID, date time.Time, shift domain.Shift) (*domain.Record, error) {
	if err := s.requireActiveTechnician(ctx, technicianID); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(s.cfg.GetConfirmationDeadlineDefault())

	rec, err := s.mutate(ctx, id, domain.EventAssignTechnician, func(ctx context.Context, tx pgx.Tx, rec *domain.Record) error {
		verdict, err := repository.CheckSlot(ctx, tx, technicianID, date, shift, rec.ID)
		if err != nil {
			return err
		}
		if err := rec.AssignTechnician(technicianID, date, shift, verdict == repository.SlotAvailable); err != nil {
			return err
		}
		return rec.RequireConfirmation(deadline)
	})
	if err != nil {
		return nil, err
	}

	s.logTransition(rec, domain.EventAssignTechnician, domain.StatusQuoted)
	s.bus.Publish(ctx, events.TechnicianAssigned{
		BaseEvent:    events.NewBaseEvent(),
		RecordID:     rec.ID,
		TechnicianID: technicianID,
		Date:         date,
		Shift:        string(shift),
	})
	s.scheduleDeadlineCheck(ctx, rec.ID, deadline)
	return rec, nil
}

// Reschedule moves an assigned or in-progress visit to a new slot, optionally
// with a different technician. Confirmation tracking restarts from scratch:
// the client must confirm the new slot.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, date time.Time, shift domain.Shift, newTechnicianID *uuid.UUID) (*domain.Record, error) {
	if newTechnicianID != nil {
		if err := s.requireActiveTechnician(ctx, *newTechnicianID); err != nil {
			return nil, err
		}
	}

	deadline := time.Now().Add(s.cfg.GetConfirmationDeadlineDefault())

	rec, err := s.mutate(ctx, id, domain.EventReschedule, func(ctx context.Context, tx pgx.Tx, rec *domain.Record) error {
		technicianID := newTechnicianID
		if technicianID == nil {
			technicianID = rec.TechnicianID
		}
		if technicianID == nil {
			return apperr.Conflict("record has no technician to reschedule")
		}

		verdict, err := repository.CheckSlot(ctx, tx, *technicianID, date, shift, rec.ID)
		if err != nil {
			return err
		}
		if err := rec.Reschedule(date, shift, newTechnicianID, verdict == repository.SlotAvailable); err != nil {
			return err
		}

		rec.Confirmation = domain.Confirmation{}
		return rec.RequireConfirmation(deadline)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).Info("visit rescheduled", "record_id", rec.ID, "date", date.Format("2006-01-02"), "shift", shift)
	s.bus.Publish(ctx, events.VisitRescheduled{
		BaseEvent:    events.NewBaseEvent(),
		RecordID:     rec.ID,
		TechnicianID: *rec.TechnicianID,
		Date:         date,
		Shift:        string(shift),
	})
	s.scheduleDeadlineCheck(ctx, rec.ID, deadline)
	return rec, nil
}

// Cancel terminates any non-terminal record, freeing the technician slot.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*domain.Record, error) {
	var from domain.Status
	rec, err := s.mutate(ctx, id, domain.EventCancel, func(_ context.Context, _ pgx.Tx, rec *domain.Record) error {
		from = rec.Status
		return rec.Cancel()
	})
	if err != nil {
		return nil, err
	}

	s.logTransition(rec, domain.EventCancel, from)
	s.bus.Publish(ctx, events.MaintenanceCancelled{
		BaseEvent:  events.NewBaseEvent(),
		RecordID:   rec.ID,
		ClientName: rec.ClientName,
		Reason:     reason,
	})
	return rec, nil
}

// StartWork records the technician's arrival and enters in_progress.
func (s *Service) StartWork(ctx context.Context, id uuid.UUID, entry domain.ActionEntry) (*domain.Record, error) {
	entry.Timestamp = time.Now()
	rec, err := s.mutate(ctx, id, domain.EventStartWork, func(_ context.Context, _ pgx.Tx, rec *domain.Record) error {
		return rec.StartWork(entry)
	})
	if err != nil {
		return nil, err
	}

	s.logTransition(rec, domain.EventStartWork, domain.StatusAssigned)
	return rec, nil
}

// RecordAction appends a pause, resume or end entry to the execution log.
func (s *Service) RecordAction(ctx context.Context, id uuid.UUID, entry domain.ActionEntry) (*domain.Record, error) {
	entry.Timestamp = time.Now()
	return s.mutate(ctx, id, domain.EventRecordAction, func(_ context.Context, _ pgx.Tx, rec *domain.Record) error {
		return rec.RecordAction(entry)
	})
}

// SetDeviceProgress updates the execution state of one linked device.
func (s *Service) SetDeviceProgress(ctx context.Context, id uuid.UUID, deviceRef string, status domain.ProgressStatus, pct int) (*domain.Record, error) {
	return s.mutate(ctx, id, "set_device_progress", func(_ context.Context, _ pgx.Tx, rec *domain.Record) error {
		if rec.Status != domain.StatusInProgress {
			return &domain.IllegalTransition{Current: rec.Status, Event: "set_device_progress"}
		}
		if !rec.SetDeviceProgress(deviceRef, status, pct) {
			return apperr.NotFound("device is not linked to this maintenance")
		}
		return nil
	})
}

// CompleteWork finishes the visit once every linked device is done.
func (s *Service) CompleteWork(ctx context.Context, id uuid.UUID) (*domain.Record, error) {
	rec, err := s.mutate(ctx, id, domain.EventCompleteWork, func(_ context.Context, _ pgx.Tx, rec *domain.Record) error {
		return rec.CompleteWork()
	})
	if err != nil {
		return nil, err
	}

	s.logTransition(rec, domain.EventCompleteWork, domain.StatusInProgress)
	s.bus.Publish(ctx, events.MaintenanceCompleted{
		BaseEvent: events.NewBaseEvent(),
		RecordID:  rec.ID,
	})
	return rec, nil
}

// errAlreadyConfirmed aborts the confirmation transaction when the visit was
// confirmed before, so a repeated confirm neither bumps the version nor
// re-publishes the event.
var errAlreadyConfirmed = errors.New("visit already confirmed")

func confirmOnce(rec *domain.Record, now time.Time) error {
	if rec.Confirmation.ConfirmedAt != nil {
		return errAlreadyConfirmed
	}
	return rec.ConfirmByClient(now)
}

// ConfirmByClient records the client's confirmation of the upcoming visit.
// Repeated confirmations are accepted silently.
func (s *Service) ConfirmByClient(ctx context.Context, id uuid.UUID) (*domain.Record, error) {
	now := time.Now()
	rec, err := s.mutate(ctx, id, domain.EventConfirmByClient, func(_ context.Context, _ pgx.Tx, rec *domain.Record) error {
		return confirmOnce(rec, now)
	})
	if errors.Is(err, errAlreadyConfirmed) {
		return s.repo.GetByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.ClientConfirmed{
		BaseEvent:   events.NewBaseEvent(),
		RecordID:    rec.ID,
		ConfirmedAt: *rec.Confirmation.ConfirmedAt,
	})
	return rec, nil
}

// MarkCoordinatorCalled records the coordinator's follow-up phone call after
// a missed confirmation deadline.
func (s *Service) MarkCoordinatorCalled(ctx context.Context, id uuid.UUID) (*domain.Record, error) {
	now := time.Now()
	return s.mutate(ctx, id, "mark_coordinator_called", func(_ context.Context, _ pgx.Tx, rec *domain.Record) error {
		rec.MarkCoordinatorCalled(now)
		return nil
	})
}

func (s *Service) requireActiveTechnician(ctx context.Context, technicianID uuid.UUID) error {
	active, err := s.directory.IsActive(ctx, technicianID)
	if err != nil {
		return err
	}
	if !active {
		return apperr.Unprocessable("technician is not on the active roster").
			WithDetails(map[string]string{"guard": string(domain.GuardTechnicianUnavailable)})
	}
	return nil
}

// scheduleDeadlineCheck enqueues the confirmation-deadline task. A scheduling
// failure is not fatal: the periodic sweep picks the record up later.
func (s *Service) scheduleDeadlineCheck(ctx context.Context, id uuid.UUID, deadline time.Time) {
	if s.deadlines == nil {
		return
	}

	err := s.deadlines.ScheduleConfirmationDeadline(ctx, scheduler.ConfirmationDeadlinePayload{RecordID: id.String()}, deadline)
	if err != nil {
		s.logger.Warn("failed to schedule confirmation deadline check", "record_id", id, "error", err)
	}
}
