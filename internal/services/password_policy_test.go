package services

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePasswordStrength_RejectsWeakPasswords(t *testing.T) {
	testCases := []string{
		"Short1",
		"onlyletters",
		"12345678",
		strings.Repeat("a1", 40),
	}

	for _, password := range testCases {
		if err := ValidatePasswordStrength(password); !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("expected ErrWeakPassword for %q, got %v", password, err)
		}
	}
}

func TestValidatePasswordStrength_AcceptsStrongPassword(t *testing.T) {
	for _, password := range []string{"StrongPass1", "kaffee2024", "Äpfel und 3 Birnen"} {
		if err := ValidatePasswordStrength(password); err != nil {
			t.Fatalf("expected nil error for %q, got %v", password, err)
		}
	}
}
