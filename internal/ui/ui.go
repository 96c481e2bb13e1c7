// Package ui provides terminal styling, TTY detection and the interactive
// navigator browser.
package ui

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// IsTTY checks if w is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}

	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

// DetectNoColor checks if the NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}

// ColorEnabled reports whether styled output should be written to w.
func ColorEnabled(w io.Writer, noColor bool) bool {
	return !noColor && !DetectNoColor() && IsTTY(w)
}

// StylesFor returns styles suited to w.
func StylesFor(w io.Writer, noColor bool) Styles {
	return GetStyles(!ColorEnabled(w, noColor))
}
