package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common application errors with proper types for error handling

var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied indicates the user doesn't have permission
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates missing or invalid authentication
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict indicates a conflict with existing data
	ErrConflict = errors.New("conflict")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")
)

// FieldError describes one failed field of a draft.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError is returned before any network call when a draft fails its schema.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s %s", f.Field, f.Reason))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// HasField reports whether field failed validation.
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// TooManyFilesError is returned when a batch would exceed the file count limit.
type TooManyFilesError struct {
	Max      int
	Existing int
	Selected int
}

func (e *TooManyFilesError) Error() string {
	return fmt.Sprintf("too many files: %d attached and %d selected, at most %d allowed", e.Existing, e.Selected, e.Max)
}

func (e *TooManyFilesError) Unwrap() error { return ErrInvalidInput }

// PayloadTooLargeError is returned when a batch exceeds its byte budget.
type PayloadTooLargeError struct {
	MaxBytes   int64
	TotalBytes int64
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("selected files are too large: %s total, limit is %s", FormatBytes(e.TotalBytes), FormatBytes(e.MaxBytes))
}

func (e *PayloadTooLargeError) Unwrap() error { return ErrInvalidInput }

// UploadError wraps an image host failure for one file of a batch.
type UploadError struct {
	File string
	Err  error
}

func (e *UploadError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("upload failed: %v", e.Err)
	}
	return fmt.Sprintf("upload of %s failed: %v", e.File, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// RemoteError is a failed backend API call. Message is the server's text, verbatim.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Is maps HTTP status classes onto the sentinel errors.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrInvalidInput:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	case ErrInternal:
		return e.Status >= 500
	}
	return false
}

// NotFoundError creates a not found error with context
func NotFoundError(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// AccessDeniedError creates an access denied error with context
func AccessDeniedError(reason string) error {
	if reason != "" {
		return fmt.Errorf("%s: %w", reason, ErrAccessDenied)
	}
	return ErrAccessDenied
}

// InvalidInputError creates an invalid input error with context
func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

// InternalError creates an internal error with context
func InternalError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInternal)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsAuth reports whether err is a 401-class failure.
func IsAuth(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// Message turns any error into the single line shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		if remote.Message != "" {
			return remote.Message
		}
		return http.StatusText(remote.Status)
	}
	return err.Error()
}

// FormatBytes renders a byte count the way limits are quoted to users (10 MB).
func FormatBytes(n int64) string {
	const mb = 1024 * 1024
	const kb = 1024
	switch {
	case n >= mb && n%mb == 0:
		return fmt.Sprintf("%d MB", n/mb)
	case n >= mb:
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%d KB", n/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
