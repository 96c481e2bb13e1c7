package logging

import (
	"log/slog"
)

// SetupServeMode initializes logging for `navindex serve`.
//
// stdout carries JSON-RPC exclusively while the MCP server runs, so logs go to
// the rotating file only and stderr is left untouched. The logger becomes the
// slog default.
func SetupServeMode(level string) (func(), error) {
	cfg := DefaultConfig()
	if level != "" {
		cfg.Level = level
	}
	cfg.WriteToStderr = false

	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	slog.Info("serve mode logging initialized",
		slog.String("log_file", cfg.FilePath),
		slog.String("level", cfg.Level))

	return cleanup, nil
}
