package service

import (
	"testing"

	"fieldservice_backend/internal/technicians/domain"
)

func strPtr(s string) *string { return &s }

func TestFilterBySpecialty(t *testing.T) {
	hvac := strPtr("hvac")
	electrical := strPtr("electrical")
	roster := []*domain.Technician{
		{FullName: "A", Specialty: hvac},
		{FullName: "B", Specialty: electrical},
		{FullName: "C", Specialty: nil},
	}

	t.Run("no filter returns full roster", func(t *testing.T) {
		if got := filterBySpecialty(roster, nil); len(got) != 3 {
			t.Fatalf("expected 3, got %d", len(got))
		}
	})

	t.Run("empty filter returns full roster", func(t *testing.T) {
		if got := filterBySpecialty(roster, strPtr("")); len(got) != 3 {
			t.Fatalf("expected 3, got %d", len(got))
		}
	})

	t.Run("matching specialty", func(t *testing.T) {
		got := filterBySpecialty(roster, strPtr("hvac"))
		if len(got) != 1 || got[0].FullName != "A" {
			t.Fatalf("expected only A, got %d entries", len(got))
		}
	})

	t.Run("match is case insensitive", func(t *testing.T) {
		if got := filterBySpecialty(roster, strPtr("HVAC")); len(got) != 1 {
			t.Fatalf("expected 1, got %d", len(got))
		}
	})

	t.Run("unset specialty never matches", func(t *testing.T) {
		if got := filterBySpecialty(roster, strPtr("plumbing")); len(got) != 0 {
			t.Fatalf("expected 0, got %d", len(got))
		}
	})
}
