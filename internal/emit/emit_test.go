package emit

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/fragy/internal/buildgraph"
	"git.home.luguber.info/inful/fragy/internal/config"
	ferrors "git.home.luguber.info/inful/fragy/internal/foundation/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestRun_DefineWritesManifest(t *testing.T) {
	out := t.TempDir()
	consts := config.BuildConstants{Title: "Blog", ThemePackage: "fragy-theme-minimal", ThemeEntryPath: "/x/entry.html"}

	g := buildgraph.New(map[string]any{buildgraph.OptionOutputDir: out})
	g.Use("fragy-flags", buildgraph.DefinePlugin{Defines: consts.Defines()})

	report, err := Run(context.Background(), g, Options{BuildID: "build-1"})
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, ManifestFile, report.Files[0].Path)

	m, err := ReadManifest(out)
	require.NoError(t, err)
	assert.Equal(t, "build-1", m.BuildID)
	assert.Equal(t, consts, m.Constants())
}

func TestRun_GeneratesBuildID(t *testing.T) {
	g := buildgraph.New(map[string]any{buildgraph.OptionOutputDir: t.TempDir()})
	report, err := Run(context.Background(), g, Options{})
	require.NoError(t, err)
	assert.Len(t, report.BuildID, 36)
}

func TestRun_CopyVariants(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeFile(t, filepath.Join(src, "public", "favicon.ico"), "ico")
	writeFile(t, filepath.Join(src, "public", "img", "logo.png"), "png")
	writeFile(t, filepath.Join(src, "posts", "hello.md"), "# Hello")
	writeFile(t, filepath.Join(src, "posts", "2024", "deep.md"), "# Deep")
	writeFile(t, filepath.Join(src, "posts", "notes.txt"), "skip")
	writeFile(t, filepath.Join(src, "data", "articleList.json"), "[]")

	g := buildgraph.New(nil)
	g.Use("public-files", buildgraph.CopyPlugin{Patterns: []buildgraph.CopyPattern{{From: filepath.Join(src, "public")}}})
	g.Use("fragy-articles", buildgraph.CopyPlugin{Patterns: []buildgraph.CopyPattern{
		{From: filepath.Join(src, "posts"), Match: "*.md", To: "feed/[name].[ext]"},
	}})
	g.Use("fragy-article-list", buildgraph.CopyPlugin{Patterns: []buildgraph.CopyPattern{
		{From: filepath.Join(src, "data", "articleList.json"), To: "api/list.json"},
	}})

	report, err := Run(context.Background(), g, Options{OutputDir: out})
	require.NoError(t, err)

	for _, rel := range []string{"favicon.ico", "img/logo.png", "feed/hello.md", "feed/deep.md", "api/list.json"} {
		assert.FileExists(t, filepath.Join(out, filepath.FromSlash(rel)))
	}
	assert.NoFileExists(t, filepath.Join(out, "feed", "notes.txt"))
	assert.Len(t, report.Files, 5)
}

func TestRun_MissingSourceSkipped(t *testing.T) {
	g := buildgraph.New(nil)
	g.Use("public-files", buildgraph.CopyPlugin{Patterns: []buildgraph.CopyPattern{{From: filepath.Join(t.TempDir(), "absent")}}})
	report, err := Run(context.Background(), g, Options{OutputDir: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, report.Files)
}

func TestRun_RejectsEscapingTarget(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, src, "a")
	g := buildgraph.New(nil)
	g.Use("bad", buildgraph.CopyPlugin{Patterns: []buildgraph.CopyPattern{{From: src, To: "../outside.txt"}}})
	_, err := Run(context.Background(), g, Options{OutputDir: t.TempDir()})
	require.Error(t, err)
}

func TestRun_RejectsManifestOverwrite(t *testing.T) {
	public := t.TempDir()
	writeFile(t, filepath.Join(public, ManifestFile), `{"buildId":"stale"}`)
	out := t.TempDir()

	g := buildgraph.New(nil)
	g.Use("fragy-flags", buildgraph.DefinePlugin{Defines: map[string]string{"FRAGY_TITLE": "T"}})
	g.Use("public-files", buildgraph.CopyPlugin{Patterns: []buildgraph.CopyPattern{{From: public}}})

	_, err := Run(context.Background(), g, Options{OutputDir: out, BuildID: "fresh"})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryBuild))

	m, err := ReadManifest(out)
	require.NoError(t, err)
	assert.Equal(t, "fresh", m.BuildID)
}

func TestRun_AnalyzerRunsLast(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeFile(t, filepath.Join(src, "vendor", "lib", "a.js"), "abc")

	g := buildgraph.New(nil)
	g.Use("bundle-analyzer", buildgraph.AnalyzerPlugin{ReportFile: "report.json"})
	g.Use("copy", buildgraph.CopyPlugin{Patterns: []buildgraph.CopyPattern{{From: filepath.Join(src, "vendor"), To: "js"}}})
	g.Splitting.Set(buildgraph.CacheGroup{Key: "vendors", Chunks: buildgraph.ChunksAll, Test: buildgraph.DirPattern("vendor")})

	_, err := Run(context.Background(), g, Options{OutputDir: out})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "report.json"))
	require.NoError(t, err)
	var doc struct {
		TotalBytes int64  `json:"totalBytes"`
		Files      []File `json:"files"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Files, 1)
	assert.Equal(t, "js/lib/a.js", doc.Files[0].Path)
	assert.Equal(t, "vendors", doc.Files[0].Group)
	assert.EqualValues(t, 3, doc.TotalBytes)
}

func TestRun_NoOutputDir(t *testing.T) {
	_, err := Run(context.Background(), buildgraph.New(nil), Options{})
	require.Error(t, err)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := buildgraph.New(nil)
	g.Use("fragy-flags", buildgraph.DefinePlugin{})
	_, err := Run(ctx, g, Options{OutputDir: t.TempDir()})
	require.ErrorIs(t, err, context.Canceled)
}

func TestExpandTarget(t *testing.T) {
	assert.Equal(t, "feed.xml/hello.md", ExpandTarget("feed.xml/[name].md", "hello.md"))
	assert.Equal(t, "x/a.tar.gz", ExpandTarget("x/[name].[ext]", "a.tar.gz"))
}

func TestReadManifest_Missing(t *testing.T) {
	_, err := ReadManifest(t.TempDir())
	require.Error(t, err)
}
