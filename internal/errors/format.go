package errors

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FormatForUser returns a user-friendly error message.
// If debug is true, the sorted details and the cause are appended.
func FormatForUser(err error, debug bool) string {
	if err == nil {
		return ""
	}

	ne, ok := As(err)
	if !ok {
		return err.Error()
	}

	var sb strings.Builder

	sb.WriteString("Error: ")
	sb.WriteString(ne.Message)
	sb.WriteString("\n")

	if ne.Suggestion != "" {
		sb.WriteString("\nSuggestion: ")
		sb.WriteString(ne.Suggestion)
		sb.WriteString("\n")
	}

	if debug {
		for _, k := range sortedKeys(ne.Details) {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", k, ne.Details[k]))
		}
		if ne.Cause != nil {
			sb.WriteString(fmt.Sprintf("  cause: %v\n", ne.Cause))
		}
	}

	sb.WriteString(fmt.Sprintf("\n[%s]", ne.Code))

	return sb.String()
}

// FormatForCLI formats an error for CLI output.
// Uses a concise format suitable for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	ne, ok := As(err)
	if !ok {
		ne = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Error: %s\n", ne.Message))

	if ne.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", ne.Suggestion))
	}

	sb.WriteString(fmt.Sprintf("  Code: %s\n", ne.Code))

	return sb.String()
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
}

// FormatJSON returns a JSON representation of the error.
// Suitable for machine consumption and structured logging.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	ne, ok := As(err)
	if !ok {
		ne = Wrap(ErrCodeInternal, err)
	}

	je := jsonError{
		Code:       ne.Code,
		Message:    ne.Message,
		Category:   string(ne.Category),
		Severity:   string(ne.Severity),
		Details:    ne.Details,
		Suggestion: ne.Suggestion,
	}

	if ne.Cause != nil {
		je.Cause = ne.Cause.Error()
	}

	return json.Marshal(je)
}

// FormatForLog formats an error for structured logging.
// Returns key-value pairs suitable for slog attributes.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}

	ne, ok := As(err)
	if !ok {
		return map[string]any{
			"error": err.Error(),
		}
	}

	result := map[string]any{
		"error_code": ne.Code,
		"message":    ne.Message,
		"category":   string(ne.Category),
		"severity":   string(ne.Severity),
	}

	if ne.Cause != nil {
		result["cause"] = ne.Cause.Error()
	}

	if ne.Suggestion != "" {
		result["suggestion"] = ne.Suggestion
	}

	for k, v := range ne.Details {
		result["detail_"+k] = v
	}

	return result
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
