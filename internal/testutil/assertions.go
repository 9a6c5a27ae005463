package testutil

import (
	"errors"
	"testing"

	apperrors "pennywise/internal/errors"
)

// AssertAppError fails unless err is, or wraps, an *AppError with code.
func AssertAppError(t *testing.T, err error, code string) {
	t.Helper()

	var appErr *apperrors.AppError
	switch {
	case err == nil:
		t.Fatalf("expected error code %q, got nil", code)
	case !errors.As(err, &appErr):
		t.Fatalf("expected an *AppError with code %q, got %T: %v", code, err, err)
	case appErr.Code != code:
		t.Errorf("expected error code %q, got %q (%s)", code, appErr.Code, appErr.Message)
	}
}

// AssertNoError stops the test on a non-nil err.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
