package navigator

import (
	"cmp"
	"fmt"
	"slices"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
)

// Diagnostic is a recoverable problem found while building. The entry it
// names was dropped (or, for AmbiguousCuration, placed by the tie-break rule)
// and the build continued.
type Diagnostic struct {
	Code      string `json:"code"`
	Reference string `json:"reference"`
	Language  string `json:"language,omitempty"`
	Path      string `json:"path,omitempty"`
	Message   string `json:"message"`
}

// String renders "[code] language reference: message".
func (d Diagnostic) String() string {
	if d.Language == "" {
		return fmt.Sprintf("[%s] %s: %s", d.Code, d.Reference, d.Message)
	}
	return fmt.Sprintf("[%s] %s %s: %s", d.Code, d.Language, d.Reference, d.Message)
}

// Err converts the diagnostic into a NavError for logging and formatting.
func (d Diagnostic) Err() *naverrors.NavError {
	e := naverrors.New(d.Code, d.Message, nil).WithDetail("reference", d.Reference)
	if d.Language != "" {
		e.WithDetail("language", d.Language)
	}
	if d.Path != "" {
		e.WithDetail("path", d.Path)
	}
	return e
}

type diagnostics []Diagnostic

func (ds *diagnostics) add(code string, e entry, format string, args ...any) {
	*ds = append(*ds, Diagnostic{
		Code:      code,
		Reference: e.ref,
		Language:  e.lang,
		Path:      e.path,
		Message:   fmt.Sprintf(format, args...),
	})
}

// sorted orders by (code, language, reference, path, message).
func (ds diagnostics) sorted() []Diagnostic {
	out := slices.Clone([]Diagnostic(ds))
	slices.SortStableFunc(out, func(a, b Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.Code, b.Code),
			cmp.Compare(a.Language, b.Language),
			cmp.Compare(a.Reference, b.Reference),
			cmp.Compare(a.Path, b.Path),
			cmp.Compare(a.Message, b.Message),
		)
	})
	return out
}

// CountByCode tallies diagnostics per code.
func CountByCode(ds []Diagnostic) map[string]int {
	counts := make(map[string]int)
	for _, d := range ds {
		counts[d.Code]++
	}
	return counts
}
