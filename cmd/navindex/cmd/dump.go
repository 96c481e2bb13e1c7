package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/navindex/pkg/navigator"
)

func newDumpCmd() *cobra.Command {
	var (
		language string
		path     string
	)

	cmd := &cobra.Command{
		Use:   "dump <index>",
		Short: "Print navigator trees as indented text",
		Long: `Print one line per item, "Title [kind]", indented two spaces per level.

Without --language every tree is printed, each under a "# language" header.
With --path only the subtree under that path is printed.`,
		Example: `  navindex dump kit.navindex
  navindex dump kit.navindex --language swift --path /documentation/kit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadArtifact(args[0])
			if err != nil {
				return err
			}
			text, err := dumpText(a, language, path)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Language tree to print (default: all)")
	cmd.Flags().StringVarP(&path, "path", "p", "", "Print only the subtree under this path (requires --language)")

	return cmd
}

func dumpText(a *navigator.Artifact, language, path string) (string, error) {
	if language == "" {
		if path != "" {
			return "", fmt.Errorf("--path requires --language")
		}
		return a.Dump(), nil
	}
	it, err := findItem(a, language, path)
	if err != nil {
		return "", err
	}
	return a.DumpTree(it.ID), nil
}
