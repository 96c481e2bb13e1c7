package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/navindex/internal/catalog"
	"github.com/Aman-CERP/navindex/internal/config"
	"github.com/Aman-CERP/navindex/internal/logging"
	"github.com/Aman-CERP/navindex/internal/mcp"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "serve <index>",
		Short: "Serve a navigator index over MCP",
		Long: `Start a Model Context Protocol server answering read-only navigator queries
(languages, children, lookup, dump) from the given index.

stdout carries JSON-RPC only; logs go to ~/.navindex/logs/navindex.log.
Rebuilding the index while the server runs is safe: the next call sees the
new file.`,
		Example: `  # Register with an MCP client
  navindex serve /path/to/kit.navindex`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve index path: %w", err)
			}

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get current directory: %w", err)
			}
			root, err := config.FindProjectRoot(cwd)
			if err != nil {
				root = cwd
			}
			cfg, err := config.Load(root)
			if err != nil {
				return err
			}

			// --debug already routes logs to the file.
			if flags.loggingCleanup == nil {
				cleanup, err := logging.SetupServeMode(cfg.Logging.Level)
				if err != nil {
					return err
				}
				defer cleanup()
			}

			cat, err := catalog.New(cfg.Cache.Artifacts, slog.Default())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Fail before the handshake when the index is unusable.
			if _, err := cat.Open(ctx, path); err != nil {
				return err
			}

			srv, err := mcp.NewServer(cat, path, slog.Default())
			if err != nil {
				return err
			}
			return srv.Serve(ctx, transport)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "MCP transport (stdio)")

	return cmd
}
