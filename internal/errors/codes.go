// Package errors provides structured error handling for navindex.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO and on-disk format errors
//   - 4XX: Validation errors (41X are recoverable build diagnostics)
//   - 5XX: Internal and build errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file, disk and artifact format errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates build failures and unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeIOFailure          = "ERR_201_IO_FAILURE"
	ErrCodeCorruptIndex       = "ERR_205_CORRUPT_INDEX"
	ErrCodeUnsupportedVersion = "ERR_207_UNSUPPORTED_VERSION"

	// Validation errors (400-499)
	ErrCodeInvalidInput      = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidPath       = "ERR_406_INVALID_PATH"
	ErrCodeOrphanTopic       = "ERR_411_ORPHAN_TOPIC"
	ErrCodeDuplicateRecord   = "ERR_412_DUPLICATE_RECORD"
	ErrCodeDuplicatePath     = "ERR_413_DUPLICATE_PATH"
	ErrCodeAmbiguousCuration = "ERR_414_AMBIGUOUS_CURATION"
	ErrCodeInvalidRecord     = "ERR_415_INVALID_RECORD"
	ErrCodeInvalidKind       = "ERR_416_INVALID_KIND"
	ErrCodeLanguageNotFound  = "ERR_421_LANGUAGE_NOT_FOUND"

	// Internal errors (500-599)
	ErrCodeInternal      = "ERR_501_INTERNAL"
	ErrCodeCurationCycle = "ERR_506_CURATION_CYCLE"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeCorruptIndex, ErrCodeUnsupportedVersion, ErrCodeIOFailure, ErrCodeCurationCycle:
		return SeverityFatal
	}

	if isDiagnosticCode(code) {
		return SeverityWarning
	}

	return SeverityError
}

// isDiagnosticCode reports whether the code is a recoverable build diagnostic.
func isDiagnosticCode(code string) bool {
	switch code {
	case ErrCodeOrphanTopic, ErrCodeDuplicateRecord, ErrCodeDuplicatePath,
		ErrCodeAmbiguousCuration, ErrCodeInvalidRecord, ErrCodeInvalidKind:
		return true
	default:
		return false
	}
}
