// Package compose applies the framework's build mutations to a build graph
// and composes the theme's build hooks after them.
package compose

import (
	"errors"
	"log/slog"
	"maps"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/fragy/internal/buildgraph"
	"git.home.luguber.info/inful/fragy/internal/config"
	ferrors "git.home.luguber.info/inful/fragy/internal/foundation/errors"
	"git.home.luguber.info/inful/fragy/internal/logfields"
	"git.home.luguber.info/inful/fragy/internal/paths"
	"git.home.luguber.info/inful/fragy/internal/theme"
)

// Plugin names registered by Chain.
const (
	PluginFlags       = "fragy-flags"
	PluginPublicFiles = "public-files"
	PluginArticles    = "fragy-articles"
	PluginArticleList = "fragy-article-list"
	PluginAnalyzer    = "bundle-analyzer"
)

// Cache group keys registered by Chain.
const (
	GroupTheme        = "theme"
	GroupThemeVendors = "theme-vendors"
	GroupChunkVendors = "chunk-vendors"
)

// ReportFile is the analyzer report written into the output directory.
const ReportFile = "report.json"

// Params are the inputs of one build composition.
type Params struct {
	// Paths must be bound to the theme (see paths.Context.WithTheme).
	Paths       *paths.Context
	Config      *config.Config
	ThemeConfig map[string]any
	// Theme is the registered theme, or nil when the package has no Go side.
	Theme  theme.Theme
	Env    config.Env
	Logger *slog.Logger
}

// Composer mutates a build graph for one build.
type Composer struct {
	p          Params
	custom     theme.Static
	chained    bool
	configured bool
}

// New resolves the theme build customization. A Factory is invoked here,
// exactly once per build.
func New(p Params) (*Composer, error) {
	if p.Paths == nil || p.Config == nil {
		return nil, ferrors.InternalError("compose requires paths and config").Build()
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}

	c, err := customization(p)
	if err != nil {
		return nil, err
	}

	static := theme.Resolve(c, theme.BuildContext{
		FrameworkRoot:   p.Paths.FrameworkRoot,
		SiteTitle:       p.Config.Title,
		ThemePackage:    p.Config.Theme.Package,
		ThemeConfigPath: p.Paths.ThemeConfigPath,
		ThemeEntryPath:  p.Paths.ThemeEntryPath,
		Config:          p.Config,
		ThemeConfig:     p.ThemeConfig,
	})
	return &Composer{p: p, custom: static}, nil
}

func customization(p Params) (theme.Customization, error) {
	if cz, ok := p.Theme.(theme.Customizer); ok {
		return cz.BuildCustomization(), nil
	}
	if p.Paths.ThemeBuildPath == "" {
		return nil, nil
	}
	settings, err := loadStaticSettings(p.Paths.ThemeBuildPath)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, nil
	}
	return theme.Static{Settings: settings}, nil
}

// loadStaticSettings reads a theme's fragy.build.yaml. A missing file is not
// an error.
func loadStaticSettings(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, ferrors.ModuleLoadError("read theme build customization").
			WithCause(err).WithContext("path", path).Build()
	}
	settings := map[string]any{}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, ferrors.ModuleLoadError("parse theme build customization").
			WithCause(err).WithContext("path", path).Build()
	}
	return settings, nil
}

// Options returns the outer build options: the output directory overlaid
// with the theme settings. A relative outputDir is taken from the project
// root.
func (c *Composer) Options() map[string]any {
	opts := map[string]any{buildgraph.OptionOutputDir: c.p.Paths.OutputDir()}
	maps.Copy(opts, c.custom.Settings)
	if dir, ok := opts[buildgraph.OptionOutputDir].(string); ok && dir != "" && !filepath.IsAbs(dir) {
		opts[buildgraph.OptionOutputDir] = filepath.Join(c.p.Paths.ProjectRoot, dir)
	}
	return opts
}

// Graph returns a new graph seeded with Options.
func (c *Composer) Graph() *buildgraph.Graph {
	return buildgraph.New(c.Options())
}

// Hooks returns the resolved theme build hooks.
func (c *Composer) Hooks() theme.BuildHooks { return c.custom.Hooks }

// Chain applies the framework mutations to g and then the theme Chain hook.
// Only the first call has an effect.
func (c *Composer) Chain(g *buildgraph.Graph) {
	if c.chained {
		c.p.Logger.Warn("Build graph already chained; ignoring repeated call")
		return
	}
	c.chained = true

	cfg := c.p.Config
	pc := c.p.Paths

	g.Use(PluginFlags, buildgraph.DefinePlugin{Defines: cfg.Constants(pc).Defines()})

	if isDir(pc.PublicDir()) {
		g.Use(PluginPublicFiles, buildgraph.CopyPlugin{Patterns: []buildgraph.CopyPattern{
			{From: pc.PublicDir(), To: ""},
		}})
	}

	if feed := cfg.Articles.Feed; feed != "" && !config.IsRemote(feed) {
		g.Use(PluginArticles, buildgraph.CopyPlugin{Patterns: []buildgraph.CopyPattern{
			{From: pc.PostsDir(), Match: "*.md", To: filepath.ToSlash(filepath.Join(config.OutputRelative(feed), "[name].md"))},
		}})
	}

	if feed := cfg.ArticleList.Feed; feed != "" && !config.IsRemote(feed) {
		g.Use(PluginArticleList, buildgraph.CopyPlugin{Patterns: []buildgraph.CopyPattern{
			{From: filepath.Join(pc.UserDataDir, filepath.FromSlash(cfg.ArticleList.Output)), To: config.OutputRelative(feed)},
		}})
	}

	g.Splitting.Set(SplitGroups(cfg.Theme.Package)...)

	if c.p.Env.BundleAnalyze {
		g.Use(PluginAnalyzer, buildgraph.AnalyzerPlugin{ReportFile: ReportFile})
	}

	if hook := c.custom.Hooks.Chain; hook != nil {
		c.p.Logger.Debug("Running theme chain hook", logfields.Theme(cfg.Theme.Package))
		hook(g)
	}
}

// Configure runs the theme Configure hook, if any. Only the first call has an
// effect.
func (c *Composer) Configure(g *buildgraph.Graph) {
	if c.configured {
		c.p.Logger.Warn("Build graph already configured; ignoring repeated call")
		return
	}
	c.configured = true
	if hook := c.custom.Hooks.Configure; hook != nil {
		c.p.Logger.Debug("Running theme configure hook", logfields.Theme(c.p.Config.Theme.Package))
		hook(g)
	}
}

// SplitGroups returns the framework cache groups for themePkg.
func SplitGroups(themePkg string) []buildgraph.CacheGroup {
	return []buildgraph.CacheGroup{
		{
			Key:      GroupTheme,
			Name:     GroupTheme,
			Chunks:   buildgraph.ChunksAsync,
			Test:     buildgraph.PathPattern(themePkg),
			Priority: 20,
		},
		{
			Key:      GroupThemeVendors,
			Name:     GroupThemeVendors,
			Chunks:   buildgraph.ChunksAsync,
			Test:     buildgraph.DirPattern(paths.DependencyDir),
			Priority: 10,
		},
		{
			Key:      GroupChunkVendors,
			Name:     GroupChunkVendors,
			Chunks:   buildgraph.ChunksInitial,
			Test:     buildgraph.DirPattern(paths.DependencyDir),
			Priority: -10,
		},
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
