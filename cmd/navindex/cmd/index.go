package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/navindex/internal/config"
	naverrors "github.com/Aman-CERP/navindex/internal/errors"
	"github.com/Aman-CERP/navindex/internal/output"
	"github.com/Aman-CERP/navindex/internal/topicgraph"
	"github.com/Aman-CERP/navindex/internal/watcher"
	"github.com/Aman-CERP/navindex/pkg/navigator"
)

type indexOptions struct {
	output     string
	bundle     string
	watch      bool
	poll       bool
	jsonOutput bool
	noColor    bool
}

func newIndexCmd() *cobra.Command {
	var opts indexOptions

	cmd := &cobra.Command{
		Use:   "index [input-dir]",
		Short: "Build a navigator index from topic record files",
		Long: `Build a navigator index from the topic records under input-dir
(default: the current directory).

Topic files are *.json, *.yaml and *.yml files holding one record or a list
of records. Curated parent/child edges are read from the curation file
(input.curation_file, default curation.yaml).

Problems with individual records, such as orphans or duplicates, are
reported as diagnostics and the build continues. Fatal errors like a
curation cycle stop the build and no index is written.

Use --watch to rebuild whenever an input file changes.`,
		Example: `  # Build .navindex/navigator.navindex from ./topics
  navindex index ./topics

  # Choose the output and bundle identifier
  navindex index ./topics -o kit.navindex --bundle com.example.kit

  # Rebuild on change
  navindex index ./topics --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			if !opts.watch {
				return runIndex(cmd.Context(), cmd, dir, opts)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runIndex(ctx, cmd, dir, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Index file to write (default: .navindex/navigator.navindex in the project root)")
	cmd.Flags().StringVar(&opts.bundle, "bundle", "", "Bundle identifier written to the index (default: input directory name)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Rebuild whenever input files change")
	cmd.Flags().BoolVar(&opts.poll, "poll", false, "Watch by polling instead of filesystem notifications")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the build report as JSON")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	return cmd
}

// indexRun is the resolved input of one `navindex index` invocation.
type indexRun struct {
	inputDir    string
	projectRoot string
	outPath     string
	cfg         *config.Config
	opts        indexOptions
}

// indexReport is the --json form of a build.
type indexReport struct {
	Output      string                 `json:"output"`
	Bundle      string                 `json:"bundle"`
	Files       int                    `json:"files"`
	Stats       navigator.Stats        `json:"stats"`
	Diagnostics []navigator.Diagnostic `json:"diagnostics"`
	ElapsedMS   int64                  `json:"elapsed_ms"`
}

func runIndex(ctx context.Context, cmd *cobra.Command, dir string, opts indexOptions) error {
	run, err := resolveIndexRun(dir, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := run.buildAndReport(ctx, out); err != nil {
		if !opts.watch {
			return err
		}
		// A broken input is reported and the watch waits for a fix.
		output.NewWithColor(out, opts.noColor).Error(err.Error())
	}
	if !opts.watch {
		return nil
	}
	return run.watch(ctx, out)
}

func resolveIndexRun(dir string, opts indexOptions) (*indexRun, error) {
	inputDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, naverrors.New(naverrors.ErrCodeInvalidPath, "failed to resolve input directory", err).
			WithDetail("path", dir)
	}
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, naverrors.IOError("open input directory", inputDir, err)
	}
	if !info.IsDir() {
		return nil, naverrors.Newf(naverrors.ErrCodeInvalidPath, "%s is not a directory", inputDir).
			WithSuggestion("Pass the directory that holds the topic record files")
	}

	root, err := config.FindProjectRoot(inputDir)
	if err != nil {
		root = inputDir
	}
	run := &indexRun{inputDir: inputDir, projectRoot: root, opts: opts}
	if err := run.loadConfig(); err != nil {
		return nil, err
	}
	return run, nil
}

// loadConfig (re)reads the configuration and applies the command line flags
// on top of it.
func (r *indexRun) loadConfig() error {
	cfg, err := config.Load(r.projectRoot)
	if err != nil {
		return err
	}
	if r.opts.bundle != "" {
		cfg.Index.BundleIdentifier = r.opts.bundle
	}
	r.cfg = cfg

	r.outPath = cfg.OutputPath(r.projectRoot)
	if r.opts.output != "" {
		abs, err := filepath.Abs(r.opts.output)
		if err != nil {
			return naverrors.New(naverrors.ErrCodeInvalidPath, "failed to resolve output path", err).
				WithDetail("path", r.opts.output)
		}
		r.outPath = abs
	}
	return nil
}

func (r *indexRun) filter() *topicgraph.Filter {
	return topicgraph.NewFilter(r.cfg.Input.Include, r.cfg.Input.Exclude)
}

// curationRel returns the curation file relative to the input directory,
// the form the watcher matches events against.
func (r *indexRun) curationRel() string {
	cf := r.cfg.Input.CurationFile
	if cf == "" || !filepath.IsAbs(cf) {
		return cf
	}
	if rel, err := filepath.Rel(r.inputDir, cf); err == nil {
		return rel
	}
	return cf
}

func (r *indexRun) buildOptions() []navigator.Option {
	opts := []navigator.Option{
		navigator.WithBundleIdentifier(r.cfg.BundleFor(r.inputDir)),
		navigator.WithRootPrefixes(r.cfg.Index.RootPrefixes...),
		navigator.WithMaskLimit(r.cfg.Index.MaskLimit),
		navigator.WithLogger(slog.Default()),
	}
	if r.cfg.Index.RootTitle != "" {
		opts = append(opts, navigator.WithRootTitle(r.cfg.Index.RootTitle))
	}
	return opts
}

// build loads the topic graph, builds the artifact and writes it.
func (r *indexRun) build(ctx context.Context) (*indexReport, error) {
	start := time.Now()

	graph, err := topicgraph.Load(ctx, topicgraph.Options{
		Root:         r.inputDir,
		Include:      r.cfg.Input.Include,
		Exclude:      r.cfg.Input.Exclude,
		Workers:      r.cfg.Input.Workers,
		CurationFile: r.cfg.Input.CurationFile,
		Logger:       slog.Default(),
	})
	if err != nil {
		return nil, err
	}

	res, err := navigator.Build(graph.Records, graph.Edges, r.buildOptions()...)
	if err != nil {
		return nil, err
	}
	for _, d := range res.Diagnostics {
		slog.Debug("build diagnostic", logAttrs(d.Err())...)
	}
	if n := len(res.Diagnostics); n > 0 {
		slog.Warn("build finished with diagnostics",
			slog.Int("count", n),
			slog.Any("by_code", navigator.CountByCode(res.Diagnostics)))
	}

	if err := navigator.WriteFile(r.outPath, res.Artifact); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	slog.Info("navigator index built",
		slog.String("output", r.outPath),
		slog.Int("items", res.Stats.Items),
		slog.Int("diagnostics", res.Stats.Diagnostics),
		slog.Duration("duration", elapsed))

	diags := res.Diagnostics
	if diags == nil {
		diags = []navigator.Diagnostic{}
	}
	return &indexReport{
		Output:      r.outPath,
		Bundle:      res.Artifact.BundleIdentifier(),
		Files:       len(graph.Files),
		Stats:       res.Stats,
		Diagnostics: diags,
		ElapsedMS:   elapsed.Milliseconds(),
	}, nil
}

func (r *indexRun) buildAndReport(ctx context.Context, w io.Writer) error {
	report, err := r.build(ctx)
	if err != nil {
		return err
	}
	if r.opts.jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	out := output.NewWithColor(w, r.opts.noColor)
	out.BuildSummary(report.Output, report.Stats, time.Duration(report.ElapsedMS)*time.Millisecond)
	out.Diagnostics(report.Diagnostics, output.DefaultDiagnosticLimit)
	return nil
}

// watch rebuilds on every debounced batch of input changes until ctx is done.
// Each rebuild is a full build; a failed build leaves the previous index in
// place.
func (r *indexRun) watch(ctx context.Context, w io.Writer) error {
	debounce, err := r.cfg.DebounceDuration()
	if err != nil {
		return err
	}
	fw, err := watcher.New(watcher.Options{
		Debounce:     debounce,
		Matcher:      r.filter(),
		CurationFile: r.curationRel(),
		ConfigFiles:  config.ProjectConfigCandidates(r.projectRoot),
		ForcePolling: r.opts.poll,
	})
	if err != nil {
		return err
	}
	defer func() { _ = fw.Stop() }()

	startErr := make(chan error, 1)
	go func() {
		startErr <- fw.Start(ctx, r.inputDir)
	}()

	out := output.NewWithColor(w, r.opts.noColor)
	if !r.opts.jsonOutput {
		out.Statusf("👀", "Watching %s (%s), Ctrl+C to stop", r.inputDir, fw.Mode())
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-startErr:
			if err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		case err := <-fw.Errors():
			slog.Warn("watcher error", slog.String("error", err.Error()))
		case batch, ok := <-fw.Events():
			if !ok {
				return nil
			}
			r.rebuild(ctx, out, w, fw, batch)
		}
	}
}

func (r *indexRun) rebuild(ctx context.Context, out *output.Writer, w io.Writer, fw *watcher.Watcher, batch []watcher.FileEvent) {
	slog.Info("input changed", slog.Int("events", len(batch)))
	if slices.ContainsFunc(batch, func(ev watcher.FileEvent) bool {
		return ev.Operation == watcher.OpConfigChange
	}) {
		if err := r.loadConfig(); err != nil {
			out.Warningf("Keeping previous configuration: %v", err)
		} else if err := fw.Reconfigure(r.filter(), r.curationRel()); err != nil {
			slog.Warn("watcher reconfigure failed", logAttrs(err)...)
		}
	}

	if !r.opts.jsonOutput {
		out.Newline()
		out.Statusf("🔄", "%d change(s), rebuilding", len(batch))
	}
	if err := r.buildAndReport(ctx, w); err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("rebuild failed", logAttrs(err)...)
		out.Error(err.Error())
	}
}

// logAttrs turns an error into slog attributes.
func logAttrs(err error) []any {
	fields := naverrors.FormatForLog(err)
	attrs := make([]any, 0, len(fields))
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	return attrs
}

// loadArtifact reads the index file named on the command line.
func loadArtifact(path string) (*navigator.Artifact, error) {
	a, err := navigator.LoadIndex(path)
	if err != nil {
		if naverrors.GetCode(err) == naverrors.ErrCodeIOFailure {
			if ne, ok := naverrors.As(err); ok && ne.Suggestion == "" {
				ne.WithSuggestion(fmt.Sprintf("Build it first with 'navindex index -o %s'", path))
			}
		}
		return nil, err
	}
	return a, nil
}
