package transport

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"fieldservice_backend/internal/technicians/domain"
)

func TestToTechnicianResponse(t *testing.T) {
	email := "ana@example.com"
	specialty := "hvac"
	contract := "contractor"
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	tech := &domain.Technician{
		ID:           uuid.New(),
		FullName:     "Ana Torres",
		Phone:        "+573001234567",
		Email:        &email,
		Specialty:    &specialty,
		ContractType: &contract,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	resp := ToTechnicianResponse(tech)
	if resp.ID != tech.ID || resp.FullName != tech.FullName || resp.Phone != tech.Phone {
		t.Fatalf("identity fields not mapped: %+v", resp)
	}
	if resp.ContractType == nil || *resp.ContractType != contract {
		t.Fatalf("contractType not mapped: %+v", resp.ContractType)
	}
	if resp.Specialty == nil || *resp.Specialty != specialty {
		t.Fatalf("specialty not mapped")
	}
	if !resp.Active {
		t.Fatalf("active flag not mapped")
	}
}

func TestToTechnicianResponseOmitsUnsetOptionals(t *testing.T) {
	tech := &domain.Technician{
		ID:       uuid.New(),
		FullName: "Luis Prado",
		Phone:    "+573001234568",
	}

	resp := ToTechnicianResponse(tech)
	if resp.Email != nil || resp.Specialty != nil || resp.ContractType != nil {
		t.Fatalf("unset optionals should stay nil: %+v", resp)
	}
}
