// Package logging provides opt-in file-based logging with rotation for navindex.
// With --debug, JSON logs are written to ~/.navindex/logs/navindex.log and can be
// read back with `navindex logs`.
//
// Without --debug only warnings reach stderr, as plain text.
package logging
