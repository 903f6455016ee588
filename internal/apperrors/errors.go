// Package apperrors provides the engine's tagged error taxonomy: a single
// AppError type carrying an ErrorType, the operation and path it occurred
// in, and a handful of sentinel errors the job framework branches on
// (exists, invalid filename, not empty, not supported, ...).
package apperrors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an AppError for logging and for the conflict/error
// dialog protocol's decision of which response set to offer.
type ErrorType int

const (
	ErrorTypeFileSystem ErrorType = iota
	ErrorTypeScan
	ErrorTypeVerify
	ErrorTypeConflict
	ErrorTypeArchive
	ErrorTypeMonitor
	ErrorTypeConfig
	ErrorTypeRemote
	ErrorTypeTrash
	ErrorTypeMount
	ErrorTypeJob
)

func (et ErrorType) String() string {
	switch et {
	case ErrorTypeFileSystem:
		return "filesystem"
	case ErrorTypeScan:
		return "scan"
	case ErrorTypeVerify:
		return "verify"
	case ErrorTypeConflict:
		return "conflict"
	case ErrorTypeArchive:
		return "archive"
	case ErrorTypeMonitor:
		return "monitor"
	case ErrorTypeConfig:
		return "config"
	case ErrorTypeRemote:
		return "remote"
	case ErrorTypeTrash:
		return "trash"
	case ErrorTypeMount:
		return "mount"
	case ErrorTypeJob:
		return "job"
	default:
		return "unknown"
	}
}

// AppError is a structured, path-carrying application error.
type AppError struct {
	Type      ErrorType
	Operation string
	Path      string
	Message   string
	Err       error
}

func (e *AppError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s error in %s [%s]: %s", e.Type, e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("%s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// NewFileSystemError creates a new filesystem error.
func NewFileSystemError(operation, path, message string, err error) *AppError {
	return &AppError{Type: ErrorTypeFileSystem, Operation: operation, Path: path, Message: message, Err: err}
}

// NewScanError creates a new source-scan error.
func NewScanError(operation, path, message string, err error) *AppError {
	return &AppError{Type: ErrorTypeScan, Operation: operation, Path: path, Message: message, Err: err}
}

// NewVerifyError creates a new destination-verification error.
func NewVerifyError(operation, path, message string, err error) *AppError {
	return &AppError{Type: ErrorTypeVerify, Operation: operation, Path: path, Message: message, Err: err}
}

// NewArchiveError creates a new extract/compress error.
func NewArchiveError(operation, path, message string, err error) *AppError {
	return &AppError{Type: ErrorTypeArchive, Operation: operation, Path: path, Message: message, Err: err}
}

// NewRemoteError creates a new remote/SMB destination error.
func NewRemoteError(operation, path, message string, err error) *AppError {
	return &AppError{Type: ErrorTypeRemote, Operation: operation, Path: path, Message: message, Err: err}
}

// NewTrashError creates a new trash/empty-trash error.
func NewTrashError(operation, path, message string, err error) *AppError {
	return &AppError{Type: ErrorTypeTrash, Operation: operation, Path: path, Message: message, Err: err}
}

// NewMountError creates a new unmount/eject error.
func NewMountError(operation, path, message string, err error) *AppError {
	return &AppError{Type: ErrorTypeMount, Operation: operation, Path: path, Message: message, Err: err}
}

// NewJobError creates a new error for the fileops façade's own dispatch
// logic (scheme classification, unsupported link targets, the
// unmount/eject sequencing), as opposed to an error surfaced by a
// specific job's filesystem/scan/verify/archive/trash/mount phase.
func NewJobError(operation, path, message string, err error) *AppError {
	return &AppError{Type: ErrorTypeJob, Operation: operation, Path: path, Message: message, Err: err}
}

// Sentinel errors the copy/move engine branches its control flow on. These
// stand in for the backend-specific error codes (G_IO_ERROR_* in the
// original implementation) the spec's per-file algorithm names directly:
// Exists, InvalidFilename, NotEmpty, NotSupported. The spec's WouldMerge
// and WouldRecurse tags describe a single-call backend copy/move refusing
// to recurse; this engine has no such single-call path — copyDirectory and
// mergeDirectory always recurse themselves, so there's no refusal to catch.
var (
	ErrCanceled        = errors.New("job canceled")
	ErrExists          = errors.New("destination exists")
	ErrInvalidFilename = errors.New("invalid filename for destination filesystem")
	ErrNotEmpty        = errors.New("directory not empty")
	ErrNotSupported    = errors.New("operation not supported")
	ErrNotDirectory    = errors.New("not a directory")
	ErrReadOnly        = errors.New("destination is read-only")
)

// IsCanceled reports whether err is, or wraps, ErrCanceled.
func IsCanceled(err error) bool { return errors.Is(err, ErrCanceled) }
