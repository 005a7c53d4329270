package types

import (
	"errors"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	err := NewAppError(ErrConfig, "bad configuration", nil)
	if err.Error() != "bad configuration" {
		t.Errorf("Error() = %q", err.Error())
	}

	err = NewAppErrorWithDetails(ErrAPICall, "request failed", "status 502", nil)
	if err.Error() != "request failed: status 502" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewAppError(ErrNetwork, "API request failed", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is does not reach the cause")
	}
	var appErr *AppError
	if !errors.As(error(err), &appErr) {
		t.Error("errors.As failed")
	}
	if appErr.Code != ErrNetwork {
		t.Errorf("Code = %v, want %v", appErr.Code, ErrNetwork)
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(NewAppError(ErrExtract, "x", nil)); got != ErrExtract {
		t.Errorf("CodeOf = %v, want %v", got, ErrExtract)
	}
	if got := CodeOf(errors.New("plain")); got != ErrInternal {
		t.Errorf("CodeOf of plain error = %v, want %v", got, ErrInternal)
	}
}
