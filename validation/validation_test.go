package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/userservice/errors"
)

type credentials struct {
	Username string `json:"username" validate:"max=10,nocontrol"`
	Password string `json:"password" validate:"max=16"`
}

func TestValidate_Valid(t *testing.T) {
	tests := []credentials{
		{Username: "bob", Password: "pw"},
		{},
		{Username: "  ", Password: " "},
		{Username: "Zoë", Password: "päss"},
	}
	for _, tc := range tests {
		if err := Validate(tc); err != nil {
			t.Errorf("%+v: unexpected error %v", tc, err)
		}
	}
}

func TestValidate_FieldDetails(t *testing.T) {
	err := Validate(credentials{
		Username: strings.Repeat("a", 11),
		Password: strings.Repeat("p", 17),
	})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}

	appErr, _ := errors.AsAppError(err)
	if appErr.HTTPStatus != 400 {
		t.Errorf("expected 400, got %d", appErr.HTTPStatus)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Fatalf("expected two field errors, got %#v", appErr.Details["fields"])
	}
	if fields[0].Field != "username" || fields[0].Message != "must be at most 10 characters" {
		t.Errorf("unexpected first field error %+v", fields[0])
	}
	if fields[1].Field != "password" {
		t.Errorf("json names should be used, got %q", fields[1].Field)
	}
	if !strings.Contains(appErr.Message, "username: must be at most 10 characters") {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

func TestValidate_NoControl(t *testing.T) {
	err := Validate(credentials{Username: "bo\x00b", Password: "pw"})
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if !strings.Contains(appErr.Message, "control characters") {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

func TestValidate_NotAStruct(t *testing.T) {
	if err := Validate("just a string"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestValidate_UntaggedFieldUsesSnakeCase(t *testing.T) {
	type request struct {
		DisplayName string `validate:"required"`
	}
	appErr, ok := errors.AsAppError(Validate(request{}))
	if !ok {
		t.Fatal("expected AppError")
	}
	fields := appErr.Details["fields"].([]FieldError)
	if fields[0].Field != "display_name" || fields[0].Message != "is required" {
		t.Errorf("unexpected field error %+v", fields[0])
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Username":     "username",
		"PasswordHash": "password_hash",
		"ID":           "id",
		"HTTPStatus":   "http_status",
		"UserID":       "user_id",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
