package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
	"github.com/Aman-CERP/navindex/internal/output"
	"github.com/Aman-CERP/navindex/pkg/navigator"
)

type queryOptions struct {
	language   string
	path       string
	id         uint32
	children   bool
	jsonOutput bool
	noColor    bool
}

func newQueryCmd() *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query <index>",
		Short: "Look up navigator items by path or ID",
		Long: `Look up one item of a navigator index, by path within a language tree or
by item ID, and print it. With --children the item's ordered children are
printed instead.

The root of each language tree has the path "/".`,
		Example: `  navindex query kit.navindex --language swift --path /documentation/kit/button
  navindex query kit.navindex --id 3 --children
  navindex query kit.navindex --language occ --path / --children --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("path") && !cmd.Flags().Changed("id") {
				return fmt.Errorf("one of --path or --id is required")
			}
			a, err := loadArtifact(args[0])
			if err != nil {
				return err
			}
			it, err := queryItem(a, opts, cmd.Flags().Changed("id"))
			if err != nil {
				return err
			}
			return printQuery(cmd, a, it, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "Language tree (required with --path)")
	cmd.Flags().StringVarP(&opts.path, "path", "p", "", "Item path, e.g. /documentation/kit")
	cmd.Flags().Uint32Var(&opts.id, "id", 0, "Item ID")
	cmd.Flags().BoolVar(&opts.children, "children", false, "List the item's children")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.MarkFlagsMutuallyExclusive("path", "id")

	return cmd
}

func queryItem(a *navigator.Artifact, opts queryOptions, byID bool) (navigator.Item, error) {
	if !byID {
		if opts.language == "" {
			return navigator.Item{}, fmt.Errorf("--path requires --language")
		}
		return findItem(a, opts.language, opts.path)
	}

	it, ok := a.Item(opts.id)
	if !ok {
		return navigator.Item{}, naverrors.Newf(naverrors.ErrCodeInvalidInput,
			"no item with ID %d (the index holds %d items)", opts.id, a.Len())
	}
	if opts.language != "" && it.Language != opts.language {
		return navigator.Item{}, naverrors.Newf(naverrors.ErrCodeInvalidInput,
			"item %d belongs to %q, not %q", opts.id, it.Language, opts.language)
	}
	return it, nil
}

// findItem resolves path in language; an empty path is the root.
func findItem(a *navigator.Artifact, language, path string) (navigator.Item, error) {
	root, err := a.Root(language)
	if err != nil {
		return navigator.Item{}, err
	}
	if path == "" {
		return root, nil
	}
	it, ok := a.Lookup(language, path)
	if !ok {
		return navigator.Item{}, naverrors.Newf(naverrors.ErrCodeInvalidPath,
			"no item at %s in the %s tree", path, language).
			WithSuggestion("Run 'navindex dump' to see the available paths")
	}
	return it, nil
}

type queryJSON struct {
	navigator.Item
	Kind      string            `json:"kind"`
	Platforms []string          `json:"platforms,omitempty"`
	Variants  map[string]string `json:"variants,omitempty"`
}

func toQueryJSON(a *navigator.Artifact, it navigator.Item) queryJSON {
	q := queryJSON{Item: it, Kind: it.Kind.String()}
	for _, p := range it.Platforms {
		q.Platforms = append(q.Platforms, p.String())
	}
	for _, lang := range a.Languages() {
		if lang == it.Language {
			continue
		}
		if v, ok := a.Variant(it.ID, lang); ok {
			if q.Variants == nil {
				q.Variants = make(map[string]string)
			}
			q.Variants[lang] = v.Path
		}
	}
	return q
}

func printQuery(cmd *cobra.Command, a *navigator.Artifact, it navigator.Item, opts queryOptions) error {
	items := []navigator.Item{it}
	if opts.children {
		items = a.Children(it.ID)
	}

	if opts.jsonOutput {
		out := make([]queryJSON, 0, len(items))
		for _, x := range items {
			out = append(out, toQueryJSON(a, x))
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if opts.children {
			return enc.Encode(out)
		}
		return enc.Encode(out[0])
	}

	w := output.NewWithColor(cmd.OutOrStdout(), opts.noColor)
	if opts.children {
		w.Items(items)
		return nil
	}
	w.Item(it)
	return nil
}
