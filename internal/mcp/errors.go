// Package mcp implements the Model Context Protocol (MCP) server that exposes
// read-only navigator queries over a built artifact.
package mcp

import (
	"context"
	"errors"
	"fmt"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
)

// Custom MCP error codes for navindex.
const (
	// ErrCodeIndexUnavailable indicates the artifact is missing, corrupt or
	// written in an unsupported format version.
	ErrCodeIndexUnavailable = -32001

	// ErrCodeTimeout indicates the request timed out or was canceled.
	ErrCodeTimeout = -32003

	// ErrCodeNotFound indicates the requested language or path does not exist.
	ErrCodeNotFound = -32004

	// Standard JSON-RPC error codes.
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}
	if ne, ok := naverrors.As(err); ok {
		return mapNavError(ne)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
	}
}

// NewInvalidParamsError creates an error for invalid parameters with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// NewMethodNotFoundError creates an error for unknown tools.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{Code: ErrCodeMethodNotFound, Message: fmt.Sprintf("Tool '%s' not found.", name)}
}

// NewNotFoundError reports a path missing from a language tree.
func NewNotFoundError(language, path string) *MCPError {
	return &MCPError{Code: ErrCodeNotFound, Message: fmt.Sprintf("No item at %s in %s.", path, language)}
}

func mapNavError(ne *naverrors.NavError) *MCPError {
	message := ne.Message
	if ne.Suggestion != "" {
		message = fmt.Sprintf("%s %s", ne.Message, ne.Suggestion)
	}

	switch ne.Code {
	case naverrors.ErrCodeCorruptIndex, naverrors.ErrCodeUnsupportedVersion, naverrors.ErrCodeIOFailure:
		return &MCPError{Code: ErrCodeIndexUnavailable, Message: message}
	case naverrors.ErrCodeLanguageNotFound:
		return &MCPError{Code: ErrCodeNotFound, Message: message}
	}

	switch ne.Category {
	case naverrors.CategoryValidation:
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}
