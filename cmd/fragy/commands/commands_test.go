package commands

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/fragy/internal/articles"
	"git.home.luguber.info/inful/fragy/internal/config"
	"git.home.luguber.info/inful/fragy/internal/emit"
	ferrors "git.home.luguber.info/inful/fragy/internal/foundation/errors"
)

func TestInitBuildAndArticles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.EnvBundleAnalyze, "")
	root := &CLI{FrameworkDir: dir}
	g := &Global{Logger: slog.Default()}

	require.NoError(t, (&InitCmd{Title: "Test Blog"}).Run(g, root))
	assert.FileExists(t, filepath.Join(dir, "fragy.config.yaml"))
	assert.FileExists(t, filepath.Join(dir, "vendor", config.DefaultThemePackage, "entry.html"))

	require.NoError(t, (&ArticlesCmd{}).Run(g, root))
	data, err := os.ReadFile(filepath.Join(dir, ".fragy", "data", "articleList.json"))
	require.NoError(t, err)
	var list []articles.Article
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Hello fragy", list[0].Title)

	require.NoError(t, (&BuildCmd{Analyze: true}).Run(g, root))
	out := filepath.Join(dir, "dist")
	assert.FileExists(t, filepath.Join(out, "feed", "hello.md"))
	assert.FileExists(t, filepath.Join(out, "api", "articles.json"))
	assert.FileExists(t, filepath.Join(out, "report.json"))

	m, err := emit.ReadManifest(out)
	require.NoError(t, err)
	assert.Equal(t, "Test Blog", m.Constants().Title)
}

func TestInitKeepsExistingConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "fragy.config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("title: Mine\n"), 0o600))

	require.NoError(t, (&InitCmd{Title: "Other"}).Run(&Global{Logger: slog.Default()}, &CLI{FrameworkDir: dir}))
	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "title: Mine\n", string(data))
}

func TestBuildWithoutConfig(t *testing.T) {
	err := (&BuildCmd{}).Run(&Global{Logger: slog.Default()}, &CLI{FrameworkDir: t.TempDir()})
	require.Error(t, err)
	assert.True(t, ferrors.IsConfigNotFound(err))
	assert.Equal(t, 7, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestListThemesMarksConfigured(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, listThemes(&sb, config.DefaultThemePackage))
	assert.Contains(t, sb.String(), "* "+config.DefaultThemePackage+"\n")
}
