package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/navindex/internal/output"
)

func newInfoCmd() *cobra.Command {
	var (
		jsonOutput bool
		noColor    bool
	)

	cmd := &cobra.Command{
		Use:   "info <index>",
		Short: "Show navigator index statistics",
		Long: `Display the header of a navigator index: bundle identifier, format version,
availability encoding, and per-language item counts and tree depth.

Loading the index verifies its checksum and structure, so info is also a
quick integrity check.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadArtifact(args[0])
			if err != nil {
				return err
			}
			info := a.Info()
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			output.NewWithColor(cmd.OutOrStdout(), noColor).Info(args[0], info)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}
