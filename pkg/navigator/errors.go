package navigator

import (
	naverrors "github.com/Aman-CERP/navindex/internal/errors"
)

// Sentinel errors for errors.Is checks. Matching is by code, so any
// NavError carrying the same code matches regardless of message or details.
var (
	ErrCorruptIndex       = naverrors.New(naverrors.ErrCodeCorruptIndex, "corrupt navigator index", nil)
	ErrUnsupportedVersion = naverrors.New(naverrors.ErrCodeUnsupportedVersion, "unsupported navigator index version", nil)
	ErrCurationCycle      = naverrors.New(naverrors.ErrCodeCurationCycle, "curation cycle", nil)
	ErrIOFailure          = naverrors.New(naverrors.ErrCodeIOFailure, "navigator index I/O failure", nil)
	ErrLanguageNotFound   = naverrors.New(naverrors.ErrCodeLanguageNotFound, "language not found", nil)
	ErrInvalidOptions     = naverrors.New(naverrors.ErrCodeInvalidInput, "invalid builder options", nil)
)

func corruptf(format string, args ...any) *naverrors.NavError {
	return naverrors.Newf(naverrors.ErrCodeCorruptIndex, format, args...).
		WithSuggestion("Rebuild the index with 'navindex index'")
}

func languageNotFound(lang string) *naverrors.NavError {
	return naverrors.Newf(naverrors.ErrCodeLanguageNotFound, "language %q not in index", lang).
		WithDetail("language", lang)
}
