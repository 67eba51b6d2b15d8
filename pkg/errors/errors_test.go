package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "resource not found",
			},
			expected: "NOT_FOUND: resource not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeGateway,
				Message: "hold rejected",
				Err:     errors.New("card declined"),
			},
			expected: "GATEWAY_ERROR: hold rejected (caused by: card declined)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
	}{
		{"unauthorized", Unauthorized("no identity"), http.StatusUnauthorized},
		{"forbidden", Forbidden("not the booking guest"), http.StatusForbidden},
		{"not found", NotFoundWithID("Booking", "abc"), http.StatusNotFound},
		{"invalid input", InvalidInput("missing payment method"), http.StatusBadRequest},
		{"validation", Validation("bad report", nil), http.StatusUnprocessableEntity},
		{"conflict", Conflict("authorization already exists"), http.StatusConflict},
		{"gateway", Gateway("unexpected hold status", nil), http.StatusInternalServerError},
		{"classifier", Classifier("schema mismatch", nil), http.StatusInternalServerError},
		{"internal", Internal("boom", errors.New("x")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.StatusCode() != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.StatusCode())
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := Gateway("capture failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestAsAppError(t *testing.T) {
	plain := errors.New("plain error")
	appErr := AsAppError(plain)

	if appErr.Code != CodeInternal {
		t.Errorf("expected internal code for plain error, got %s", appErr.Code)
	}

	original := Conflict("deposit already captured")
	if AsAppError(original) != original {
		t.Error("expected AsAppError to return the original AppError")
	}
}
