// Package output provides consistent CLI output formatting for build
// summaries, diagnostics and artifact statistics.
package output

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/Aman-CERP/navindex/internal/ui"
	"github.com/Aman-CERP/navindex/pkg/navigator"
)

// DefaultDiagnosticLimit caps the diagnostics printed individually.
const DefaultDiagnosticLimit = 20

// Writer provides formatted output for CLI.
type Writer struct {
	out    io.Writer
	styles ui.Styles
}

// New creates a new output Writer. Color is used only on terminals.
func New(out io.Writer) *Writer {
	return NewWithColor(out, false)
}

// NewWithColor creates a Writer, forcing plain output when noColor is set.
func NewWithColor(out io.Writer, noColor bool) *Writer {
	return &Writer{out: out, styles: ui.StylesFor(out, noColor)}
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status(w.styles.Success.Render("✓"), msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status(w.styles.Warning.Render("⚠"), msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status(w.styles.Error.Render("✗"), msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Code prints a block with indentation.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// BuildSummary prints the outcome of a successful build written to path.
func (w *Writer) BuildSummary(path string, stats navigator.Stats, elapsed time.Duration) {
	w.Successf("Wrote %s", path)
	w.Statusf("", "%d records, %d items across %d language(s)", stats.Records, stats.Items, stats.Languages)
	mode := "list"
	if stats.MaskMode {
		mode = "bitmask"
	}
	w.Statusf("", "%d strings, %d platforms (%s availability)", stats.Strings, stats.Platforms, mode)
	w.Statusf("", "built in %s", elapsed.Round(time.Millisecond))
}

// Diagnostics prints a per-code tally followed by at most limit individual
// diagnostics. A non-positive limit prints them all.
func (w *Writer) Diagnostics(ds []navigator.Diagnostic, limit int) {
	if len(ds) == 0 {
		return
	}
	counts := navigator.CountByCode(ds)
	parts := make([]string, 0, len(counts))
	for _, code := range slices.Sorted(maps.Keys(counts)) {
		parts = append(parts, fmt.Sprintf("%s×%d", code, counts[code]))
	}
	w.Warningf("%d diagnostic(s): %s", len(ds), strings.Join(parts, ", "))

	shown := ds
	if limit > 0 && len(ds) > limit {
		shown = ds[:limit]
	}
	for _, d := range shown {
		w.Status("", w.styles.Label.Render(d.String()))
	}
	if len(shown) < len(ds) {
		w.Statusf("", "... and %d more (use --json for the full list)", len(ds)-len(shown))
	}
}

// Info prints artifact header statistics.
func (w *Writer) Info(path string, info navigator.Info) {
	mode := "list"
	if info.MaskMode {
		mode = "bitmask"
	}
	_, _ = fmt.Fprintf(w.out, "%s\n", w.styles.Header.Render(path))
	_, _ = fmt.Fprintf(w.out, "  bundle:       %s\n", info.Bundle)
	_, _ = fmt.Fprintf(w.out, "  version:      %d\n", info.Version)
	_, _ = fmt.Fprintf(w.out, "  items:        %d\n", info.Items)
	_, _ = fmt.Fprintf(w.out, "  strings:      %d\n", info.Strings)
	_, _ = fmt.Fprintf(w.out, "  platforms:    %d (%s)\n", info.Platforms, mode)
	_, _ = fmt.Fprintf(w.out, "  languages:    %d\n", len(info.Languages))
	for _, l := range info.Languages {
		_, _ = fmt.Fprintf(w.out, "    %-12s %d items, depth %d\n", l.Name, l.Items, l.Depth)
	}
}

// Item prints one navigator item.
func (w *Writer) Item(it navigator.Item) {
	_, _ = fmt.Fprintf(w.out, "%s %s\n", w.styles.Header.Render(it.Title), w.styles.Kind.Render("["+it.Kind.String()+"]"))
	_, _ = fmt.Fprintf(w.out, "  id:        %d\n", it.ID)
	_, _ = fmt.Fprintf(w.out, "  path:      %s\n", it.Path)
	if it.Reference != "" {
		_, _ = fmt.Fprintf(w.out, "  reference: %s\n", it.Reference)
	}
	_, _ = fmt.Fprintf(w.out, "  language:  %s\n", it.Language)
	if it.HasParent {
		_, _ = fmt.Fprintf(w.out, "  parent:    %d\n", it.ParentID)
	}
	_, _ = fmt.Fprintf(w.out, "  children:  %d\n", it.ChildCount)
	for _, p := range it.Platforms {
		_, _ = fmt.Fprintf(w.out, "  platform:  %s\n", p.String())
	}
}

// Items prints one line per item, as in a child listing.
func (w *Writer) Items(items []navigator.Item) {
	for _, it := range items {
		_, _ = fmt.Fprintf(w.out, "%6d  %s %s  %s\n", it.ID, it.Title,
			w.styles.Kind.Render("["+it.Kind.String()+"]"), w.styles.Label.Render(it.Path))
	}
}
