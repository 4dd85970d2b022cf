// Package domain holds the technician directory model.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Availability is a derived verdict for one technician and one slot. It is
// computed from assignments and absences at read time and never stored.
type Availability string

const (
	Available Availability = "available"
	Busy      Availability = "busy"
	Absent    Availability = "absent"
)

// Technician is a member of the field roster.
type Technician struct {
	ID           uuid.UUID
	FullName     string
	Phone        string
	Email        *string
	Specialty    *string
	ContractType *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewTechnician creates an active technician with a fresh identity.
func NewTechnician(fullName, phone string) *Technician {
	now := time.Now()
	return &Technician{
		ID:        uuid.New(),
		FullName:  fullName,
		Phone:     phone,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Absence blocks a technician for a date. A nil Shift blocks both shifts.
type Absence struct {
	ID           uuid.UUID
	TechnicianID uuid.UUID
	Date         time.Time
	Shift        *string
	Reason       *string
	CreatedAt    time.Time
}
