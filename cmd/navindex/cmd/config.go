package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/navindex/internal/config"
	"github.com/Aman-CERP/navindex/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage navindex configuration",
		Long: `Inspect and create navindex configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/navindex/config.yaml)
  3. Project config (.navindex.yaml in the project root)
  4. Environment variables (NAVINDEX_*)
  5. Command line flags`,
		Example: `  # Write .navindex.yaml with the defaults
  navindex config init

  # Show effective configuration (merged from all sources)
  navindex config show

  # Print config file paths
  navindex config path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

// projectRootOf resolves the project root for an optional directory argument.
func projectRootOf(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	root, err := config.FindProjectRoot(abs)
	if err != nil {
		return abs, nil
	}
	return root, nil
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create the project configuration file",
		Long: `Write .navindex.yaml with the default settings to the project root of dir
(default: the current directory).

With --force an existing file is replaced. The replaced file is kept as a
timestamped backup; the three newest backups are retained.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRootOf(args)
			if err != nil {
				return err
			}
			return runConfigInit(cmd, root, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing configuration (a backup is kept)")

	return cmd
}

func runConfigInit(cmd *cobra.Command, root string, force bool) error {
	out := output.New(cmd.OutOrStdout())

	configPath, exists := config.ProjectConfigPath(root)
	if exists && !force {
		out.Warning("Project configuration already exists")
		out.Statusf("📁", "Location: %s", configPath)
		out.Newline()
		out.Status("💡", "Use --force to replace it with the defaults (a backup is kept)")
		return nil
	}

	var backupPath string
	if exists {
		var err error
		backupPath, err = config.BackupFile(configPath)
		if err != nil {
			return err
		}
	}

	if err := config.NewConfig().WriteYAML(configPath); err != nil {
		return err
	}

	out.Success("Created project configuration")
	out.Statusf("📁", "Location: %s", configPath)
	if backupPath != "" {
		out.Statusf("💾", "Backup: %s", backupPath)
	}
	out.Newline()
	out.Status("📋", "Next steps:")
	out.Status("", "  1. Set index.bundle_identifier and the input globs")
	out.Status("", "  2. Run 'navindex config show' to verify")
	out.Status("", "  3. Run 'navindex index <input-dir>' to build")

	return nil
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show [dir]",
		Short: "Show effective configuration",
		Long: `Show the configuration that applies to dir (default: the current directory).

By default the merged configuration is shown. Use --source to show a single
layer: user, project or defaults.`,
		Example: `  # Show merged configuration
  navindex config show

  # Show as JSON
  navindex config show --json

  # Show only the project file
  navindex config show --source project`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRootOf(args)
			if err != nil {
				return err
			}
			return runConfigShow(cmd, root, jsonOutput, source)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user, project, defaults")

	return cmd
}

func runConfigShow(cmd *cobra.Command, root string, jsonOutput bool, source string) error {
	out := output.New(cmd.OutOrStdout())

	var cfg *config.Config
	var sourceDesc string

	switch source {
	case "merged":
		var err error
		cfg, err = config.Load(root)
		if err != nil {
			return err
		}
		sourceDesc = "merged (defaults + user + project + env)"

	case "user":
		configPath := config.GetUserConfigPath()
		if !config.UserConfigExists() {
			out.Warning("No user configuration file found")
			out.Statusf("📁", "Expected at: %s", configPath)
			return nil
		}
		var err error
		if cfg, err = readConfigLayer(configPath); err != nil {
			return err
		}
		sourceDesc = fmt.Sprintf("user (%s)", configPath)

	case "project":
		configPath, ok := config.ProjectConfigPath(root)
		if !ok {
			out.Warning("No project configuration file found")
			out.Statusf("📁", "Expected at: %s", configPath)
			out.Status("💡", "Run 'navindex config init' to create one")
			return nil
		}
		var err error
		if cfg, err = readConfigLayer(configPath); err != nil {
			return err
		}
		sourceDesc = fmt.Sprintf("project (%s)", configPath)

	case "defaults":
		cfg = config.NewConfig()
		sourceDesc = "defaults (hardcoded)"

	default:
		return fmt.Errorf("invalid source: %s (use: merged, user, project, defaults)", source)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	out.Statusf("📋", "Configuration source: %s", sourceDesc)
	out.Newline()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
	return err
}

// readConfigLayer parses one config file on its own, without defaults.
func readConfigLayer(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path [dir]",
		Short: "Print configuration file paths",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRootOf(args)
			if err != nil {
				return err
			}
			projectPath, _ := config.ProjectConfigPath(root)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "user:    %s\n", config.GetUserConfigPath())
			fmt.Fprintf(w, "project: %s\n", projectPath)
			return nil
		},
	}
}
