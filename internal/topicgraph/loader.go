package topicgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
	"github.com/Aman-CERP/navindex/pkg/navigator"
)

// Options configures a load.
type Options struct {
	// Root is the input directory.
	Root string
	// Include and Exclude are doublestar globs relative to Root.
	Include []string
	Exclude []string
	// Workers bounds the number of files decoded at once (0 = NumCPU).
	Workers int
	// CurationFile is the edge file, relative to Root unless absolute.
	// It is never read as a topic file. Empty disables curation.
	CurationFile string
	// Logger receives stage logs (default: slog.Default()).
	Logger *slog.Logger
}

// Graph is the loaded input of one build.
type Graph struct {
	Records []navigator.TopicRecord
	Edges   navigator.CurationEdges
	// Files lists the topic files read, relative to Root, sorted.
	Files []string
}

// Load discovers topic files under opts.Root, decodes them in parallel and
// reads the curation file. The first failing file cancels the rest and its
// error, carrying the file path, is returned.
func Load(ctx context.Context, opts Options) (*Graph, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	collector := NewCollector()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			recs, err := DecodeFile(filepath.Join(opts.Root, rel))
			if err != nil {
				return err
			}
			collector.Add(rel, recs...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	edges, err := LoadCuration(curationPath(opts))
	if err != nil {
		return nil, err
	}

	graph := &Graph{
		Records: collector.Records(),
		Edges:   edges,
		Files:   files,
	}
	logger.Debug("topic graph loaded",
		slog.String("root", opts.Root),
		slog.Int("files", len(files)),
		slog.Int("records", len(graph.Records)),
		slog.Int("curated_parents", len(edges)),
		slog.Int("workers", workers),
		slog.Duration("elapsed", time.Since(start)))
	return graph, nil
}

// Discover lists the topic files under opts.Root, relative and sorted.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, naverrors.IOError("stat input directory", opts.Root, err)
	}
	if !info.IsDir() {
		return nil, naverrors.New(naverrors.ErrCodeInvalidPath, "input is not a directory", nil).
			WithDetail("path", opts.Root)
	}

	filter := NewFilter(opts.Include, opts.Exclude)
	curation := curationPath(opts)

	var files []string
	err = filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return naverrors.IOError("walk", path, err)
		}
		rel, err := filepath.Rel(opts.Root, path)
		if err != nil || rel == "." {
			return nil
		}
		if d.IsDir() {
			if filter.SkipDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || path == curation {
			return nil
		}
		if filter.Match(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)
	return files, nil
}

// DecodeFile reads the records in one topic file. The format follows the
// extension: .json, or .yaml/.yml.
func DecodeFile(path string) ([]navigator.TopicRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, naverrors.IOError("read topic file", path, err)
	}

	var recs []navigator.TopicRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		recs, err = decodeJSON(data)
	case ".yaml", ".yml":
		recs, err = decodeYAML(data)
	default:
		return nil, naverrors.New(naverrors.ErrCodeInvalidPath,
			fmt.Sprintf("unsupported topic file type %q", filepath.Ext(path)), nil).WithDetail("path", path)
	}
	if err != nil {
		return nil, naverrors.New(naverrors.ErrCodeInvalidInput,
			fmt.Sprintf("cannot decode topic file %s", path), err).WithDetail("path", path)
	}
	return recs, nil
}

func decodeJSON(data []byte) ([]navigator.TopicRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var recs []navigator.TopicRecord
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return nil, err
		}
		return recs, nil
	}
	var rec navigator.TopicRecord
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return nil, err
	}
	return []navigator.TopicRecord{rec}, nil
}

// decodeYAML accepts a stream of documents, each a record or a list.
func decodeYAML(data []byte) ([]navigator.TopicRecord, error) {
	var out []navigator.TopicRecord
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if len(doc.Content) == 0 {
			continue
		}
		switch doc.Content[0].Kind {
		case yaml.SequenceNode:
			var recs []navigator.TopicRecord
			if err := doc.Decode(&recs); err != nil {
				return nil, err
			}
			out = append(out, recs...)
		case yaml.MappingNode:
			var rec navigator.TopicRecord
			if err := doc.Decode(&rec); err != nil {
				return nil, err
			}
			out = append(out, rec)
		default:
			return nil, fmt.Errorf("line %d: expected a record or a list of records", doc.Content[0].Line)
		}
	}
}

// LoadCuration reads curation edges. A missing file means no edges.
func LoadCuration(path string) (navigator.CurationEdges, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, naverrors.IOError("read curation file", path, err)
	}

	var edges navigator.CurationEdges
	if err := yaml.Unmarshal(data, &edges); err != nil {
		return nil, naverrors.New(naverrors.ErrCodeInvalidInput,
			fmt.Sprintf("cannot decode curation file %s", path), err).WithDetail("path", path)
	}
	return edges, nil
}

func curationPath(opts Options) string {
	if opts.CurationFile == "" {
		return ""
	}
	if filepath.IsAbs(opts.CurationFile) {
		return opts.CurationFile
	}
	return filepath.Join(opts.Root, opts.CurationFile)
}
