package handler

import (
	"strings"
	"testing"
)

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

func TestValidator_Valid(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(&credentials{Email: "ada@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
}

func TestValidator_MissingFields(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&credentials{})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if got := err.Error(); got != "email is required; password is required" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestValidator_EmailAndLength(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&credentials{Email: "not-an-address", Password: "short"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "email must be a valid email") {
		t.Fatalf("missing email message: %q", msg)
	}
	if !strings.Contains(msg, "password must be at least 6 characters") {
		t.Fatalf("missing length message: %q", msg)
	}
}

func TestValidator_UnmappedTag(t *testing.T) {
	v := NewValidator()

	input := struct {
		Count int `validate:"max=3"`
	}{Count: 9}

	err := v.Validate(&input)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if got := err.Error(); got != "count failed validation (max)" {
		t.Fatalf("unexpected message: %q", got)
	}
}
