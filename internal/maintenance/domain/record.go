// Package domain holds the maintenance lifecycle state machine: the record
// model, the transition table, and the guard errors. It has no knowledge of
// persistence or HTTP; collaborator facts (technician availability, device
// completeness) are passed in by the caller, evaluated inside the same
// transaction that applies the transition.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a maintenance record.
type Status string

const (
	StatusPending         Status = "pending"
	StatusQuoted          Status = "quoted"
	StatusPaymentUploaded Status = "payment_uploaded"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusAssigned        Status = "assigned"
	StatusInProgress      Status = "in_progress"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
)

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusQuoted, StatusPaymentUploaded, StatusApproved,
		StatusRejected, StatusAssigned, StatusInProgress, StatusCompleted,
		StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are possible from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusRejected
}

// MaintenanceType is fixed at creation.
type MaintenanceType string

const (
	TypePreventive MaintenanceType = "preventive"
	TypeCorrective MaintenanceType = "corrective"
)

// Shift is the service window of a scheduled visit.
type Shift string

const (
	ShiftAM Shift = "AM"
	ShiftPM Shift = "PM"
)

// Payment is the ledger for a single maintenance record: quotation value,
// whether payment is required, the uploaded proof, and the verification
// outcome. IsPaid nil means no payment is required (or the quotation flow has
// not settled it yet); false means a verified payment is still outstanding.
type Payment struct {
	IsPaid            *bool   `json:"isPaid"`
	ValueCents        *int64  `json:"valueCents"`
	PriceSupportRef   *string `json:"priceSupportRef"`
	PaymentSupportRef *string `json:"paymentSupportRef"`
}

// PaymentRequired reports whether the record still needs a verified payment
// before a technician can be bound.
func (p Payment) PaymentRequired() bool {
	return p.IsPaid != nil && !*p.IsPaid
}

// Confirmation tracks the client's acknowledgment of a scheduled visit,
// independently of the lifecycle status.
type Confirmation struct {
	Required              bool       `json:"confirmationRequired"`
	ConfirmedAt           *time.Time `json:"confirmedAt"`
	Deadline              *time.Time `json:"confirmationDeadline"`
	CoordinatorNotified   bool       `json:"coordinatorNotified"`
	CoordinatorNotifiedAt *time.Time `json:"coordinatorNotifiedAt"`
	CoordinatorCalled     bool       `json:"coordinatorCalled"`
	CoordinatorCalledAt   *time.Time `json:"coordinatorCalledAt"`
}

// ActionType is a field action recorded by the technician during execution.
type ActionType string

const (
	ActionStart  ActionType = "start"
	ActionPause  ActionType = "pause"
	ActionResume ActionType = "resume"
	ActionEnd    ActionType = "end"
)

// ActionEntry is one append-only execution log entry.
type ActionEntry struct {
	Action    ActionType `json:"action"`
	Timestamp time.Time  `json:"timestamp"`
	Reason    *string    `json:"reason,omitempty"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
}

// ProgressStatus is the per-device execution state.
type ProgressStatus string

const (
	ProgressPending    ProgressStatus = "pending"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// DeviceProgress tracks one device linked to the maintenance.
type DeviceProgress struct {
	DeviceRef      string         `json:"deviceRef"`
	ProgressStatus ProgressStatus `json:"progressStatus"`
	ProgressPct    int            `json:"progressPct"`
}

// Record is the central maintenance entity. Status mutations go exclusively
// through the transition methods in transitions.go.
type Record struct {
	ID              uuid.UUID
	Type            MaintenanceType
	Status          Status
	ClientName      string
	ClientPhone     string
	Address         string
	Description     *string
	DateMaintenance *time.Time
	Shift           *Shift
	TechnicianID    *uuid.UUID
	Payment         Payment
	Confirmation    Confirmation
	Devices         []DeviceProgress
	Actions         []ActionEntry
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewRecord creates a record in the initial pending state.
func NewRecord(maintType MaintenanceType, clientName, clientPhone, address string, description *string, deviceRefs []string) *Record {
	now := time.Now().UTC()
	devices := make([]DeviceProgress, 0, len(deviceRefs))
	for _, ref := range deviceRefs {
		devices = append(devices, DeviceProgress{
			DeviceRef:      ref,
			ProgressStatus: ProgressPending,
		})
	}

	return &Record{
		ID:          uuid.New(),
		Type:        maintType,
		Status:      StatusPending,
		ClientName:  clientName,
		ClientPhone: clientPhone,
		Address:     address,
		Description: description,
		Devices:     devices,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AllDevicesCompleted reports whether every linked device has finished.
// A record with no linked devices is trivially complete.
func (r *Record) AllDevicesCompleted() bool {
	for _, d := range r.Devices {
		if d.ProgressStatus != ProgressCompleted {
			return false
		}
	}
	return true
}

// Assigned reports whether a technician is currently bound to the record.
func (r *Record) Assigned() bool {
	return r.TechnicianID != nil
}
