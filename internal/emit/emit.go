package emit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/fragy/internal/buildgraph"
	ferrors "git.home.luguber.info/inful/fragy/internal/foundation/errors"
	"git.home.luguber.info/inful/fragy/internal/logfields"
	"git.home.luguber.info/inful/fragy/internal/metrics"
)

// Options configure one emit run.
type Options struct {
	// OutputDir overrides the graph's outputDir option when set.
	OutputDir string
	// BuildID is recorded in the manifest; a random UUID when empty.
	BuildID  string
	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// File is one file written to the output directory.
type File struct {
	Path   string `json:"path"` // slash-separated, relative to the output root
	Source string `json:"source,omitempty"`
	Size   int64  `json:"size"`
	Plugin string `json:"plugin"`
	Group  string `json:"group,omitempty"`
}

// Report summarizes an emit run.
type Report struct {
	BuildID   string        `json:"buildId"`
	OutputDir string        `json:"outputDir"`
	Files     []File        `json:"files"`
	Duration  time.Duration `json:"-"`
}

// TotalBytes sums the size of every emitted file.
func (r *Report) TotalBytes() int64 {
	var n int64
	for _, f := range r.Files {
		n += f.Size
	}
	return n
}

type emitter struct {
	out    string
	rec    metrics.Recorder
	log    *slog.Logger
	report *Report
}

// Run executes the plugins of g.
func Run(ctx context.Context, g *buildgraph.Graph, opts Options) (*Report, error) {
	start := time.Now()
	out := opts.OutputDir
	if out == "" {
		out = g.OutputDir()
	}
	if out == "" {
		return nil, ferrors.BuildError("no output directory configured").Build()
	}
	out, err := filepath.Abs(out)
	if err != nil {
		return nil, ferrors.FileSystemError("resolve output directory").WithCause(err).Build()
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return nil, ferrors.FileSystemError("create output directory").WithCause(err).WithContext("path", out).Build()
	}

	buildID := opts.BuildID
	if buildID == "" {
		buildID = uuid.NewString()
	}
	e := &emitter{
		out:    out,
		rec:    metrics.OrNoop(opts.Recorder),
		log:    opts.Logger,
		report: &Report{BuildID: buildID, OutputDir: out},
	}
	if e.log == nil {
		e.log = slog.Default()
	}

	var analyzers []buildgraph.PluginEntry
	for _, entry := range g.Plugins() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.Plugin.Kind() == buildgraph.KindAnalyzer {
			analyzers = append(analyzers, entry)
			continue
		}
		if err := e.run(entry); err != nil {
			return nil, err
		}
	}
	for _, entry := range analyzers {
		if err := e.analyze(entry.Name, entry.Plugin.(buildgraph.AnalyzerPlugin), g.Splitting); err != nil {
			return nil, err
		}
	}

	e.report.Duration = time.Since(start)
	return e.report, nil
}

func (e *emitter) run(entry buildgraph.PluginEntry) error {
	before := len(e.report.Files)
	var err error
	switch p := entry.Plugin.(type) {
	case buildgraph.DefinePlugin:
		err = e.define(entry.Name, p)
	case buildgraph.CopyPlugin:
		err = e.copy(entry.Name, p)
	default:
		e.log.Warn("Skipping plugin without emitter", logfields.Plugin(entry.Name), slog.String("kind", string(entry.Plugin.Kind())))
		return nil
	}
	if err != nil {
		return err
	}

	added := e.report.Files[before:]
	var bytes int64
	for _, f := range added {
		bytes += f.Size
	}
	e.rec.AddEmitted(entry.Name, len(added), bytes)
	e.log.Debug("Plugin emitted", logfields.Plugin(entry.Name), logfields.Files(len(added)))
	return nil
}

func (e *emitter) define(name string, p buildgraph.DefinePlugin) error {
	path, size, err := writeManifest(e.out, Manifest{BuildID: e.report.BuildID, Defines: p.Defines})
	if err != nil {
		return err
	}
	e.record(File{Path: e.rel(path), Size: size, Plugin: name})
	return nil
}

func (e *emitter) analyze(name string, p buildgraph.AnalyzerPlugin, split buildgraph.SplitChunks) error {
	files := make([]File, len(e.report.Files))
	for i, f := range e.report.Files {
		if f.Source != "" {
			if g, ok := split.Classify(f.Source, buildgraph.ChunksAll); ok {
				f.Group = g.Key
			}
		}
		files[i] = f
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	doc := struct {
		BuildID    string `json:"buildId"`
		TotalBytes int64  `json:"totalBytes"`
		Files      []File `json:"files"`
	}{BuildID: e.report.BuildID, Files: files}
	for _, f := range files {
		doc.TotalBytes += f.Size
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bundle report: %w", err)
	}
	reportFile := p.ReportFile
	if reportFile == "" {
		reportFile = "report.json"
	}
	dst, err := e.target(reportFile)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return ferrors.FileSystemError("write bundle report").WithCause(err).WithContext("path", dst).Build()
	}
	e.record(File{Path: e.rel(dst), Size: int64(len(data)), Plugin: name})
	e.rec.AddEmitted(name, 1, int64(len(data)))
	e.log.Info("Bundle report written", logfields.Path(dst), logfields.Files(len(files)))
	return nil
}

func (e *emitter) record(f File) {
	e.report.Files = append(e.report.Files, f)
}

func (e *emitter) rel(abs string) string {
	r, err := filepath.Rel(e.out, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(r)
}
