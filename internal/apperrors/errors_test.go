package apperrors

import (
	"errors"
	"testing"
)

func TestErrorTypeString(t *testing.T) {
	testCases := []struct {
		errorType ErrorType
		expected  string
	}{
		{ErrorTypeFileSystem, "filesystem"},
		{ErrorTypeScan, "scan"},
		{ErrorTypeVerify, "verify"},
		{ErrorTypeConflict, "conflict"},
		{ErrorTypeArchive, "archive"},
		{ErrorTypeMonitor, "monitor"},
		{ErrorTypeConfig, "config"},
		{ErrorTypeRemote, "remote"},
		{ErrorTypeTrash, "trash"},
		{ErrorTypeMount, "mount"},
		{ErrorTypeJob, "job"},
		{ErrorType(999), "unknown"},
	}

	for _, tc := range testCases {
		if result := tc.errorType.String(); result != tc.expected {
			t.Errorf("For error type %v, expected '%s', got '%s'", tc.errorType, tc.expected, result)
		}
	}
}

func TestAppErrorError(t *testing.T) {
	err := &AppError{
		Type:      ErrorTypeFileSystem,
		Operation: "read_directory",
		Path:      "/home/user/documents",
		Message:   "permission denied",
		Err:       errors.New("access denied"),
	}
	expected := "filesystem error in read_directory [/home/user/documents]: permission denied"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}

	err2 := &AppError{
		Type:      ErrorTypeVerify,
		Operation: "verify_destination",
		Message:   "not a directory",
		Err:       errors.New("enotdir"),
	}
	expected2 := "verify error in verify_destination: not a directory"
	if err2.Error() != expected2 {
		t.Errorf("Expected error message '%s', got '%s'", expected2, err2.Error())
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := &AppError{Type: ErrorTypeScan, Operation: "scan", Message: "m", Err: originalErr}
	if unwrapped := appErr.Unwrap(); unwrapped != originalErr {
		t.Errorf("Expected unwrapped error to be original error, got %v", unwrapped)
	}

	appErr2 := &AppError{Type: ErrorTypeScan, Operation: "scan", Message: "m"}
	if unwrapped2 := appErr2.Unwrap(); unwrapped2 != nil {
		t.Errorf("Expected unwrapped error to be nil, got %v", unwrapped2)
	}
}

func TestNewFileSystemError(t *testing.T) {
	originalErr := errors.New("permission denied")
	appErr := NewFileSystemError("copy_file", "/home/user/secret.txt", "access denied", originalErr)

	if appErr.Type != ErrorTypeFileSystem {
		t.Errorf("Expected error type filesystem, got %v", appErr.Type)
	}
	if appErr.Path != "/home/user/secret.txt" {
		t.Errorf("Expected path '/home/user/secret.txt', got '%s'", appErr.Path)
	}
	if appErr.Err != originalErr {
		t.Errorf("Expected wrapped error to be original error, got %v", appErr.Err)
	}
}

func TestErrorChaining(t *testing.T) {
	originalErr := errors.New("original")
	appErr := NewScanError("scan_sources", "/tmp/src", "readdir failed", originalErr)

	if !errors.Is(appErr, originalErr) {
		t.Error("errors.Is should work with AppError")
	}

	var appErrPtr *AppError
	if !errors.As(appErr, &appErrPtr) {
		t.Error("errors.As should work with AppError")
	}
	if appErrPtr.Type != ErrorTypeScan {
		t.Error("errors.As should preserve the correct error type")
	}
}

func TestSentinelErrors(t *testing.T) {
	if !errors.Is(ErrCanceled, ErrCanceled) {
		t.Error("ErrCanceled should equal itself via errors.Is")
	}
	if !IsCanceled(ErrCanceled) {
		t.Error("IsCanceled should recognize ErrCanceled")
	}
	if IsCanceled(ErrExists) {
		t.Error("IsCanceled should not recognize unrelated sentinels")
	}
}
