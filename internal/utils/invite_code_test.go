package utils

import "testing"

func TestNewInviteCode(t *testing.T) {
	code, err := NewInviteCode(8)
	if err != nil {
		t.Fatalf("NewInviteCode() error = %v", err)
	}

	if len(code) != 8 {
		t.Errorf("code length = %d, expected 8", len(code))
	}

	if !IsValidInviteCode(code, 8) {
		t.Errorf("generated code %q should pass validation", code)
	}
}

func TestNewInviteCode_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := NewInviteCode(8)
		if err != nil {
			t.Fatalf("NewInviteCode() error = %v", err)
		}
		if seen[code] {
			t.Fatalf("duplicate code generated: %q", code)
		}
		seen[code] = true
	}
}

func TestNewInviteCode_ExactLengthAfterRejection(t *testing.T) {
	// Some random bytes are rejected to keep the alphabet uniform; the
	// generator must still fill every requested length exactly.
	for _, length := range []int{1, 4, 8, 16, 64} {
		for i := 0; i < 50; i++ {
			code, err := NewInviteCode(length)
			if err != nil {
				t.Fatalf("NewInviteCode(%d) error = %v", length, err)
			}
			if len(code) != length {
				t.Fatalf("NewInviteCode(%d) returned %d chars: %q", length, len(code), code)
			}
			if !IsValidInviteCode(code, length) {
				t.Fatalf("NewInviteCode(%d) produced invalid code %q", length, code)
			}
		}
	}
}

func TestIsValidInviteCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected bool
	}{
		{"valid alphanumeric", "AB12cd34", true},
		{"valid digits only", "12345678", true},
		{"valid letters only", "abcdEFGH", true},
		{"too short", "AB12", false},
		{"too long", "AB12cd345", false},
		{"empty", "", false},
		{"contains dash", "AB12-d34", false},
		{"contains space", "AB12 d34", false},
		{"contains unicode", "AB12cd3é", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidInviteCode(tt.code, 8); got != tt.expected {
				t.Errorf("IsValidInviteCode(%q) = %v, expected %v", tt.code, got, tt.expected)
			}
		})
	}
}
