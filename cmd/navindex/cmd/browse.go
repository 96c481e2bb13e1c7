package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/navindex/internal/ui"
)

func newBrowseCmd() *cobra.Command {
	var (
		language string
		noColor  bool
	)

	cmd := &cobra.Command{
		Use:   "browse <index>",
		Short: "Browse a navigator index interactively",
		Long: `Open an interactive tree browser over a navigator index.

Use the arrow keys (or h/j/k/l) to move, expand and collapse, tab to switch
to the next language tree while keeping the selected topic, and q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !ui.IsTTY(cmd.OutOrStdout()) {
				return fmt.Errorf("browse needs an interactive terminal; use 'navindex dump %s' instead", args[0])
			}
			a, err := loadArtifact(args[0])
			if err != nil {
				return err
			}
			if language == "" {
				langs := a.Languages()
				if len(langs) == 0 {
					return fmt.Errorf("%s holds no language trees", args[0])
				}
				language = langs[0]
			}
			return ui.RunBrowser(cmd.Context(), a, ui.BrowseConfig{
				Language: language,
				Input:    cmd.InOrStdin(),
				Output:   cmd.OutOrStdout(),
				NoColor:  noColor,
			})
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Language tree to open (default: first)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}
