package testutil

import (
	"errors"
	"testing"

	apperrors "aquatrack/internal/errors"
)

// AssertAppError fails the test unless err unwraps to an *AppError carrying
// the expected code, and returns it for further inspection.
func AssertAppError(t *testing.T, err error, expectedCode string) *apperrors.AppError {
	t.Helper()

	var appErr *apperrors.AppError
	switch {
	case err == nil:
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	case !errors.As(err, &appErr):
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	case appErr.Code != expectedCode:
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
	return appErr
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
