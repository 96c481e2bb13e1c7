package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
	"github.com/Aman-CERP/navindex/pkg/navigator"
)

func TestMapError_NilError(t *testing.T) {
	assert.Nil(t, MapError(nil))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout, "timed out"},
		{"canceled", fmt.Errorf("wrapped: %w", context.Canceled), ErrCodeTimeout, "canceled"},
		{"corrupt index", navigator.ErrCorruptIndex, ErrCodeIndexUnavailable, "corrupt"},
		{"unsupported version", navigator.ErrUnsupportedVersion, ErrCodeIndexUnavailable, "version"},
		{"io failure", naverrors.IOError("read", "/x.navindex", errors.New("boom")), ErrCodeIndexUnavailable, ""},
		{"language", navigator.ErrLanguageNotFound, ErrCodeNotFound, "language"},
		{"validation", naverrors.ValidationError("bad input", nil), ErrCodeInvalidParams, "bad input"},
		{"internal", naverrors.InternalError("oops", nil), ErrCodeInternalError, "oops"},
		{"plain", errors.New("unknown"), ErrCodeInternalError, "Internal server error"},
		{"already mapped", NewInvalidParamsError("x"), ErrCodeInvalidParams, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)

			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Contains(t, got.Message, tt.wantMsg)
		})
	}
}

func TestMapError_IncludesSuggestion(t *testing.T) {
	err := naverrors.New(naverrors.ErrCodeCorruptIndex, "bad magic", nil).
		WithSuggestion("Rebuild the index.")

	got := MapError(err)

	assert.Equal(t, "bad magic Rebuild the index.", got.Message)
}

func TestMCPError_Error(t *testing.T) {
	assert.Equal(t, "MCP error -32601: Tool 'x' not found.", NewMethodNotFoundError("x").Error())
}
