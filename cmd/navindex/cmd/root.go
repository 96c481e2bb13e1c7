// Package cmd provides the CLI commands for navindex.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
	"github.com/Aman-CERP/navindex/internal/logging"
	"github.com/Aman-CERP/navindex/internal/profiling"
	"github.com/Aman-CERP/navindex/pkg/version"
)

// rootFlags holds the persistent flags of one command tree.
type rootFlags struct {
	debug          bool
	profiles       profiling.Paths
	profile        *profiling.Session
	loggingCleanup func()
}

// NewRootCmd creates the root command for the navindex CLI.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "navindex",
		Short: "Build and query documentation navigator indexes",
		Long: `navindex builds a compact, language-aware navigator index from the topic
records of a documentation bundle and answers hierarchy queries against it.

The index is a single binary file holding one ordered tree per source
language. It can be inspected from the terminal or served to AI assistants
over MCP.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return flags.start(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return flags.stop()
		},
	}

	cmd.SetVersionTemplate("navindex version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging to ~/.navindex/logs/")
	cmd.PersistentFlags().StringVar(&flags.profiles.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&flags.profiles.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&flags.profiles.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newDumpCmd())
	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newBrowseCmd())
	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// start installs the run's logger and begins profiling if requested.
func (f *rootFlags) start(cmd *cobra.Command) error {
	if f.debug {
		logger, cleanup, err := logging.Setup(logging.DebugConfig())
		if err != nil {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		f.loggingCleanup = cleanup
		slog.SetDefault(logger)
		slog.Info("Debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("command", cmd.CommandPath()),
			slog.String("version", version.Version))
	} else {
		slog.SetDefault(logging.Console(cmd.ErrOrStderr()))
	}

	if f.profiles.Enabled() {
		s, err := profiling.Start(f.profiles)
		if err != nil {
			f.stopLogging()
			return err
		}
		f.profile = s
	}
	return nil
}

func (f *rootFlags) stop() error {
	var err error
	if f.profile != nil {
		err = f.profile.Stop()
		f.profile = nil
	}
	f.stopLogging()
	return err
}

func (f *rootFlags) stopLogging() {
	if f.loggingCleanup != nil {
		slog.Info("Debug logging stopped")
		f.loggingCleanup()
		f.loggingCleanup = nil
	}
}

// Execute runs the root command and reports a failure on stderr.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		fmt.Fprint(os.Stderr, naverrors.FormatForCLI(err))
	}
	return err
}
