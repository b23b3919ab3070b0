package compose

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/fragy/internal/buildgraph"
	"git.home.luguber.info/inful/fragy/internal/config"
	"git.home.luguber.info/inful/fragy/internal/paths"
	"git.home.luguber.info/inful/fragy/internal/theme"
)

type customTheme struct {
	custom theme.Customization
}

func (customTheme) Package() string              { return "fragy-theme-test" }
func (customTheme) Routes() []theme.Route        { return nil }
func (customTheme) Store() theme.StoreDefinition { return theme.StoreDefinition{} }
func (t customTheme) BuildCustomization() theme.Customization {
	return t.custom
}

func newParams(t *testing.T, user map[string]any) Params {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, paths.UserConfigFile), []byte("title: x\n"), 0o600))
	pc, err := paths.Resolve(root)
	require.NoError(t, err)

	cfg, err := config.FormatConfig(config.Defaults(), user)
	require.NoError(t, err)
	return Params{
		Paths:       pc.WithTheme(cfg.Theme.Package),
		Config:      cfg,
		ThemeConfig: map[string]any{"color": "blue"},
	}
}

func TestChain_DefinesConstantsFirst(t *testing.T) {
	p := newParams(t, nil)
	c, err := New(p)
	require.NoError(t, err)

	g := c.Graph()
	c.Chain(g)

	assert.Equal(t, []string{PluginFlags}, g.Names())
	pl, ok := g.Plugin(PluginFlags)
	require.True(t, ok)
	defines := pl.(buildgraph.DefinePlugin).Defines
	assert.Equal(t, "fragy", defines["FRAGY_TITLE"])
	assert.Equal(t, p.Paths.ThemeEntryPath, defines["FRAGY_THEME_ENTRY_PATH"])
	assert.Equal(t, p.Paths.OutputDir(), g.OutputDir())
}

func TestChain_LocalArticleFeed(t *testing.T) {
	p := newParams(t, map[string]any{"articles": map[string]any{"feed": "/feed.xml"}})
	c, err := New(p)
	require.NoError(t, err)

	g := c.Graph()
	c.Chain(g)

	pl, ok := g.Plugin(PluginArticles)
	require.True(t, ok)
	patterns := pl.(buildgraph.CopyPlugin).Patterns
	require.Len(t, patterns, 1)
	assert.Equal(t, "feed.xml/[name].md", patterns[0].To)
	assert.Equal(t, p.Paths.PostsDir(), patterns[0].From)
}

func TestChain_RemoteFeedsSkipped(t *testing.T) {
	p := newParams(t, map[string]any{
		"articles":    map[string]any{"feed": "https://example.com/feed.xml"},
		"articleList": map[string]any{"feed": "http://example.com/list.json"},
	})
	c, err := New(p)
	require.NoError(t, err)

	g := c.Graph()
	c.Chain(g)

	_, ok := g.Plugin(PluginArticles)
	assert.False(t, ok)
	_, ok = g.Plugin(PluginArticleList)
	assert.False(t, ok)
}

func TestChain_ArticleListAndPublicFiles(t *testing.T) {
	p := newParams(t, map[string]any{"articleList": map[string]any{"feed": "/api/articles.json"}})
	require.NoError(t, os.MkdirAll(p.Paths.PublicDir(), 0o750))
	c, err := New(p)
	require.NoError(t, err)

	g := c.Graph()
	c.Chain(g)

	assert.Equal(t, []string{PluginFlags, PluginPublicFiles, PluginArticleList}, g.Names())
	pl, _ := g.Plugin(PluginArticleList)
	pat := pl.(buildgraph.CopyPlugin).Patterns[0]
	assert.Equal(t, filepath.Join(p.Paths.UserDataDir, "data", "articleList.json"), pat.From)
	assert.Equal(t, "api/articles.json", pat.To)
}

func TestChain_AnalyzerFlag(t *testing.T) {
	p := newParams(t, nil)
	p.Env.BundleAnalyze = true
	c, err := New(p)
	require.NoError(t, err)

	g := c.Graph()
	c.Chain(g)
	assert.Equal(t, []string{PluginFlags, PluginAnalyzer}, g.Names())
}

func TestChain_SplitGroups(t *testing.T) {
	p := newParams(t, nil)
	c, err := New(p)
	require.NoError(t, err)
	g := c.Graph()
	c.Chain(g)

	tests := []struct {
		path string
		kind buildgraph.ChunkKind
		want string
	}{
		{"/app/vendor/fragy-theme-minimal/entry.js", buildgraph.ChunksAsync, GroupTheme},
		{`C:\app\vendor\fragy-theme-minimal\entry.js`, buildgraph.ChunksAsync, GroupTheme},
		{"/app/vendor/lodash/index.js", buildgraph.ChunksAsync, GroupThemeVendors},
		{"/app/vendor/lodash/index.js", buildgraph.ChunksInitial, GroupChunkVendors},
	}
	for _, tt := range tests {
		t.Run(tt.want+"/"+string(tt.kind), func(t *testing.T) {
			got, ok := g.Splitting.Classify(tt.path, tt.kind)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Key)
		})
	}

	_, ok := g.Splitting.Classify("/app/src/main.js", buildgraph.ChunksInitial)
	assert.False(t, ok)
}

func TestNew_FactoryInvokedOnceAndHooksRunLast(t *testing.T) {
	p := newParams(t, map[string]any{"articles": map[string]any{"feed": "/feed.xml"}})

	calls := 0
	var seen theme.BuildContext
	var namesAtHook []string
	configured := false
	p.Theme = customTheme{custom: theme.Factory(func(ctx theme.BuildContext) theme.Static {
		calls++
		seen = ctx
		return theme.Static{
			Settings: map[string]any{"publicPath": "/static/"},
			Hooks: theme.BuildHooks{
				Chain: func(g *buildgraph.Graph) {
					namesAtHook = g.Names()
					g.Use("theme-plugin", buildgraph.DefinePlugin{})
				},
				Configure: func(g *buildgraph.Graph) {
					configured = true
					g.Options["mode"] = "production"
				},
			},
		}
	})}

	c, err := New(p)
	require.NoError(t, err)
	g := c.Graph()
	c.Chain(g)
	c.Configure(g)
	c.Chain(g)
	c.Configure(g)

	assert.Equal(t, 1, calls)
	assert.Equal(t, p.Paths.FrameworkRoot, seen.FrameworkRoot)
	assert.Equal(t, p.Paths.ThemeConfigPath, seen.ThemeConfigPath)
	assert.Equal(t, p.Paths.ThemeEntryPath, seen.ThemeEntryPath)
	assert.Equal(t, "fragy", seen.SiteTitle)
	assert.Equal(t, "blue", seen.ThemeConfig["color"])

	assert.Equal(t, []string{PluginFlags, PluginArticles}, namesAtHook)
	assert.Equal(t, []string{PluginFlags, PluginArticles, "theme-plugin"}, g.Names())
	assert.True(t, configured)
	assert.Equal(t, "/static/", g.Options["publicPath"])
	assert.Equal(t, "production", g.Options["mode"])
	assert.Equal(t, p.Paths.OutputDir(), g.OutputDir())
}

func TestNew_StaticCustomizationFromFile(t *testing.T) {
	p := newParams(t, nil)
	require.NoError(t, os.MkdirAll(filepath.Dir(p.Paths.ThemeBuildPath), 0o750))
	require.NoError(t, os.WriteFile(p.Paths.ThemeBuildPath, []byte("publicPath: /assets/\noutputDir: /tmp/out\n"), 0o600))

	c, err := New(p)
	require.NoError(t, err)
	opts := c.Options()
	assert.Equal(t, "/assets/", opts["publicPath"])
	assert.Equal(t, "/tmp/out", opts[buildgraph.OptionOutputDir])
	assert.Nil(t, c.Hooks().Chain)
}

func TestOptions_RelativeOutputDirFromProjectRoot(t *testing.T) {
	p := newParams(t, nil)
	require.NoError(t, os.MkdirAll(filepath.Dir(p.Paths.ThemeBuildPath), 0o750))
	require.NoError(t, os.WriteFile(p.Paths.ThemeBuildPath, []byte("outputDir: public\n"), 0o600))

	other := t.TempDir()
	t.Chdir(other)

	c, err := New(p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.Paths.ProjectRoot, "public"), c.Graph().OutputDir())
}

func TestNew_MalformedStaticCustomization(t *testing.T) {
	p := newParams(t, nil)
	require.NoError(t, os.MkdirAll(filepath.Dir(p.Paths.ThemeBuildPath), 0o750))
	require.NoError(t, os.WriteFile(p.Paths.ThemeBuildPath, []byte("- not\n- a map\n"), 0o600))

	_, err := New(p)
	require.Error(t, err)
}

func TestNew_RequiresPathsAndConfig(t *testing.T) {
	_, err := New(Params{})
	require.Error(t, err)
}
