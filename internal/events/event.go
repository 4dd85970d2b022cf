// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"fieldservice_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Maintenance Lifecycle Events
// =============================================================================

// QuotationSubmitted is published when a coordinator prices a pending request.
type QuotationSubmitted struct {
	BaseEvent
	RecordID   uuid.UUID `json:"recordId"`
	ValueCents int64     `json:"valueCents"`
}

func (e QuotationSubmitted) EventName() string { return "maintenance.quotation.submitted" }

// PaymentProofUploaded is published when a client submits a payment receipt.
type PaymentProofUploaded struct {
	BaseEvent
	RecordID   uuid.UUID `json:"recordId"`
	ObjectName string    `json:"objectName"`
}

func (e PaymentProofUploaded) EventName() string { return "maintenance.payment.proof_uploaded" }

// PaymentVerified is published after a coordinator reviews a receipt.
type PaymentVerified struct {
	BaseEvent
	RecordID uuid.UUID `json:"recordId"`
	Accepted bool      `json:"accepted"`
}

func (e PaymentVerified) EventName() string { return "maintenance.payment.verified" }

// TechnicianAssigned is published when a record is bound to a technician slot.
type TechnicianAssigned struct {
	BaseEvent
	RecordID     uuid.UUID `json:"recordId"`
	TechnicianID uuid.UUID `json:"technicianId"`
	Date         time.Time `json:"date"`
	Shift        string    `json:"shift"`
}

func (e TechnicianAssigned) EventName() string { return "maintenance.technician.assigned" }

// VisitRescheduled is published when an assigned visit moves to a new slot.
type VisitRescheduled struct {
	BaseEvent
	RecordID     uuid.UUID `json:"recordId"`
	TechnicianID uuid.UUID `json:"technicianId"`
	Date         time.Time `json:"date"`
	Shift        string    `json:"shift"`
}

func (e VisitRescheduled) EventName() string { return "maintenance.visit.rescheduled" }

// MaintenanceCancelled is published when a record is cancelled.
type MaintenanceCancelled struct {
	BaseEvent
	RecordID   uuid.UUID `json:"recordId"`
	ClientName string    `json:"clientName"`
	Reason     string    `json:"reason,omitempty"`
}

func (e MaintenanceCancelled) EventName() string { return "maintenance.cancelled" }

// MaintenanceCompleted is published when field work finishes on all devices.
type MaintenanceCompleted struct {
	BaseEvent
	RecordID uuid.UUID `json:"recordId"`
}

func (e MaintenanceCompleted) EventName() string { return "maintenance.completed" }

// ClientConfirmed is published when the client confirms an upcoming visit.
type ClientConfirmed struct {
	BaseEvent
	RecordID    uuid.UUID `json:"recordId"`
	ConfirmedAt time.Time `json:"confirmedAt"`
}

func (e ClientConfirmed) EventName() string { return "maintenance.confirmation.client_confirmed" }

// ConfirmationDeadlineMissed is published when the confirmation window closes
// without a client response. The notification module emails the coordinator.
type ConfirmationDeadlineMissed struct {
	BaseEvent
	RecordID   uuid.UUID `json:"recordId"`
	ClientName string    `json:"clientName"`
	Deadline   time.Time `json:"deadline"`
}

func (e ConfirmationDeadlineMissed) EventName() string { return "maintenance.confirmation.deadline_missed" }
