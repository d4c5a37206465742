package utils

import (
	"strings"
	"testing"
)

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"gerant@maquis.bf",
		"a.b+tag@example.co",
		"UPPER@EXAMPLE.COM",
	}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false; want true", email)
		}
	}

	invalid := []string{
		"",
		"no-at-sign",
		"missing@tld",
		"@example.com",
		"spaces in@example.com",
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true; want false", email)
		}
	}
}

func TestGenerateRandomPasswordLength(t *testing.T) {
	for _, length := range []int{4, 8, 12, 32} {
		if got := len(GenerateRandomPassword(length)); got != length {
			t.Errorf("length %d: got %d", length, got)
		}
	}
	// Below the minimum the generator pads up to 4.
	if got := len(GenerateRandomPassword(2)); got != 4 {
		t.Errorf("length 2: got %d; want 4", got)
	}
}

func TestGenerateRandomPasswordContainsEachClass(t *testing.T) {
	for i := 0; i < 20; i++ {
		password := GenerateRandomPassword(12)
		if !strings.ContainsAny(password, passwordLowercase) {
			t.Fatalf("%q missing lowercase", password)
		}
		if !strings.ContainsAny(password, passwordUppercase) {
			t.Fatalf("%q missing uppercase", password)
		}
		if !strings.ContainsAny(password, passwordDigits) {
			t.Fatalf("%q missing digit", password)
		}
		if !strings.ContainsAny(password, passwordSymbols) {
			t.Fatalf("%q missing symbol", password)
		}
	}
}

func TestGenerateUniqueFilename(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		name := GenerateUniqueFilename()
		if seen[name] {
			t.Fatalf("duplicate filename %q", name)
		}
		seen[name] = true
	}
}

func TestDereferencePtr(t *testing.T) {
	v := 42
	if got := DereferencePtr(&v); got != 42 {
		t.Errorf("got %d; want 42", got)
	}
	if got := DereferencePtr[int](nil); got != 0 {
		t.Errorf("nil: got %d; want zero value", got)
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	// Burkina Faso mobile numbers are 8 digits starting with 5, 6 or 7.
	if err := ValidatePhoneNumber("70123456", CountryCode); err != nil {
		t.Errorf("valid BF number rejected: %v", err)
	}
	if err := ValidatePhoneNumber("123", CountryCode); err == nil {
		t.Error("short number accepted")
	}
}
