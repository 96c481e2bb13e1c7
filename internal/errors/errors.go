package errors

import (
	"fmt"
)

// NavError is the structured error type for navindex.
// It carries a stable code plus enough context for logging and CLI presentation.
type NavError struct {
	// Code is the unique error code (e.g., "ERR_205_CORRUPT_INDEX").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *NavError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *NavError) Unwrap() error {
	return e.Cause
}

// Is matches by code, so errors.Is(err, ErrCorruptIndex) works for any
// NavError built with the same code.
func (e *NavError) Is(target error) bool {
	if t, ok := target.(*NavError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *NavError) WithDetail(key, value string) *NavError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *NavError) WithSuggestion(suggestion string) *NavError {
	e.Suggestion = suggestion
	return e
}

// Detail returns a detail value, or "" when absent.
func (e *NavError) Detail(key string) string {
	return e.Details[key]
}

// New creates a new NavError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *NavError {
	return &NavError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Newf is New with a formatted message and no cause.
func Newf(code string, format string, args ...any) *NavError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Wrap creates a NavError from an existing error.
// The error's message becomes the NavError message.
func Wrap(code string, err error) *NavError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *NavError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError creates an I/O failure error that names the attempted path.
func IOError(op, path string, cause error) *NavError {
	msg := fmt.Sprintf("%s %s", op, path)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return New(ErrCodeIOFailure, msg, cause).WithDetail("path", path)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *NavError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *NavError {
	return New(ErrCodeInternal, message, cause)
}

// IsFatal checks if an error has fatal severity.
// Fatal errors abort the current action.
func IsFatal(err error) bool {
	if ne, ok := As(err); ok {
		return ne.Severity == SeverityFatal
	}
	return false
}

// IsRecoverable reports whether an error is a warning-level NavError.
func IsRecoverable(err error) bool {
	if ne, ok := As(err); ok {
		return ne.Severity == SeverityWarning
	}
	return false
}

// GetCode extracts the error code from a NavError anywhere in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	if ne, ok := As(err); ok {
		return ne.Code
	}
	return ""
}

// GetCategory extracts the category from a NavError.
func GetCategory(err error) Category {
	if ne, ok := As(err); ok {
		return ne.Category
	}
	return ""
}

// As finds the first NavError in err's chain.
func As(err error) (*NavError, bool) {
	for err != nil {
		if ne, ok := err.(*NavError); ok {
			return ne, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
