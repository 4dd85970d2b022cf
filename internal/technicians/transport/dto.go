package transport

import (
	"time"

	"fieldservice_backend/internal/technicians/domain"
	"fieldservice_backend/internal/technicians/service"

	"github.com/google/uuid"
)

// CreateTechnicianRequest is the request body for registering a technician
type CreateTechnicianRequest struct {
	FullName     string  `json:"fullName" validate:"required,min=2,max=200"`
	Phone        string  `json:"phone" validate:"required"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Specialty    *string `json:"specialty,omitempty" validate:"omitempty,max=100"`
	ContractType *string `json:"contractType,omitempty" validate:"omitempty,max=100"`
}

// UpdateTechnicianRequest is the request body for partial technician updates
type UpdateTechnicianRequest struct {
	FullName     *string `json:"fullName,omitempty" validate:"omitempty,min=2,max=200"`
	Phone        *string `json:"phone,omitempty"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Specialty    *string `json:"specialty,omitempty" validate:"omitempty,max=100"`
	ContractType *string `json:"contractType,omitempty" validate:"omitempty,max=100"`
	Active       *bool   `json:"active,omitempty"`
}

// CreateAbsenceRequest is the request body for registering an absence
type CreateAbsenceRequest struct {
	Date   string  `json:"date" validate:"required,datetime=2006-01-02"`
	Shift  *string `json:"shift,omitempty" validate:"omitempty,oneof=AM PM"`
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// CandidatesRequest is the query parameters for slot candidates
type CandidatesRequest struct {
	Date      string  `form:"date" validate:"required,datetime=2006-01-02"`
	Shift     string  `form:"shift" validate:"required,oneof=AM PM"`
	Specialty *string `form:"specialty" validate:"omitempty,max=100"`
}

// TechnicianResponse is the response body for a technician
type TechnicianResponse struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"fullName"`
	Phone        string    `json:"phone"`
	Email        *string   `json:"email,omitempty"`
	Specialty    *string   `json:"specialty,omitempty"`
	ContractType *string   `json:"contractType,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CandidateResponse pairs a technician with their slot verdict
type CandidateResponse struct {
	Technician   TechnicianResponse  `json:"technician"`
	Availability domain.Availability `json:"availability"`
}

// AbsenceResponse is the response body for an absence
type AbsenceResponse struct {
	ID           uuid.UUID `json:"id"`
	TechnicianID uuid.UUID `json:"technicianId"`
	Date         string    `json:"date"`
	Shift        *string   `json:"shift,omitempty"`
	Reason       *string   `json:"reason,omitempty"`
}

// ToTechnicianResponse maps a domain technician to its response shape
func ToTechnicianResponse(t *domain.Technician) TechnicianResponse {
	return TechnicianResponse{
		ID:           t.ID,
		FullName:     t.FullName,
		Phone:        t.Phone,
		Email:        t.Email,
		Specialty:    t.Specialty,
		ContractType: t.ContractType,
		Active:       t.Active,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// ToCandidateResponses maps slot candidates to their response shape
func ToCandidateResponses(cs []service.Candidate) []CandidateResponse {
	out := make([]CandidateResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, CandidateResponse{
			Technician:   ToTechnicianResponse(c.Technician),
			Availability: c.Availability,
		})
	}
	return out
}

// ToAbsenceResponse maps a domain absence to its response shape
func ToAbsenceResponse(a *domain.Absence) AbsenceResponse {
	return AbsenceResponse{
		ID:           a.ID,
		TechnicianID: a.TechnicianID,
		Date:         a.Date.Format("2006-01-02"),
		Shift:        a.Shift,
		Reason:       a.Reason,
	}
}
