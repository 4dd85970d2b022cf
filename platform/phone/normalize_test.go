package phone

import (
	"errors"
	"testing"
)

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"national colombian mobile", "300 123 4567", "+573001234567"},
		{"already e164", "+573001234567", "+573001234567"},
		{"with punctuation", "(300) 123-4567", "+573001234567"},
		{"foreign number with country code", "+31 6 12345678", "+31612345678"},
		{"surrounding whitespace", "  3001234567  ", "+573001234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeE164(tt.input)
			if err != nil {
				t.Fatalf("NormalizeE164(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("NormalizeE164(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeE164Rejects(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "12", "+57"} {
		if _, err := NormalizeE164(input); !errors.Is(err, ErrInvalidNumber) {
			t.Fatalf("NormalizeE164(%q): expected ErrInvalidNumber, got %v", input, err)
		}
	}
}
