// Package minimal is the bundled default theme, fragy-theme-minimal.
//
// Importing the package registers the theme. Its config.yaml, entry.html and
// assets are embedded and written into a project by Install.
package minimal

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/fragy/internal/buildgraph"
	"git.home.luguber.info/inful/fragy/internal/config"
	"git.home.luguber.info/inful/fragy/internal/theme"
)

// Package is the theme package identifier.
const Package = config.DefaultThemePackage

//go:embed files
var files embed.FS

// Theme is fragy-theme-minimal.
type Theme struct{}

func init() { theme.Register(Theme{}) }

func (Theme) Package() string { return Package }

func (Theme) Routes() []theme.Route {
	return []theme.Route{
		{Path: "/", Name: "home", Component: "article-list"},
		{Path: "/posts/:slug", Name: "post", Component: "article"},
		{Path: "/tags/:tag", Name: "tag", Component: "article-list"},
	}
}

func (Theme) Store() theme.StoreDefinition {
	return theme.StoreDefinition{
		State: map[string]any{"articles": []any{}, "loading": false},
		Mutations: map[string]theme.Mutation{
			"setArticles": func(state map[string]any, payload any) error {
				list, ok := payload.([]any)
				if !ok {
					return errors.New("setArticles expects a list")
				}
				state["articles"] = list
				return nil
			},
			"setLoading": func(state map[string]any, payload any) error {
				b, ok := payload.(bool)
				if !ok {
					return errors.New("setLoading expects a bool")
				}
				state["loading"] = b
				return nil
			},
		},
	}
}

const articleListComponent = `<section class="article-list">{{if .Config.ArticleList.Feed}}<a href="{{.Config.ArticleList.Feed}}" data-feed>{{index .Values "articles.feedLabel"}}</a>{{end}}<p>{{articleURL "welcome"}}</p></section>`

// Setup registers the article-list component and its helpers.
func (Theme) Setup(_ context.Context, h theme.Handle, cfg *config.Config, themeConfig map[string]any) error {
	base := cfg.Articles.Base
	h.AddFunc("articleURL", func(slug string) string {
		return base + "/" + strings.TrimPrefix(slug, "/")
	})
	h.Provide("articles.feedLabel", "All articles")
	h.RegisterComponent("article-list", articleListComponent)
	if _, ok := themeConfig["footer"]; !ok {
		themeConfig["footer"] = cfg.Title
	}
	return nil
}

// BuildCustomization copies the theme assets next to the site output.
func (Theme) BuildCustomization() theme.Customization {
	return theme.Factory(func(ctx theme.BuildContext) theme.Static {
		assets := filepath.Join(filepath.Dir(ctx.ThemeConfigPath), "assets")
		return theme.Static{
			Settings: map[string]any{"publicPath": "/"},
			Hooks: theme.BuildHooks{
				Chain: func(g *buildgraph.Graph) {
					g.Use("minimal-assets", buildgraph.CopyPlugin{Patterns: []buildgraph.CopyPattern{
						{From: assets, To: "assets"},
					}})
				},
			},
		}
	})
}

// Install writes the embedded theme files into dir. Existing files are kept
// unless overwrite is set. It returns the paths written.
func Install(dir string, overwrite bool) ([]string, error) {
	var written []string
	err := fs.WalkDir(files, "files", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(path, "files"), "/")
		if d.IsDir() {
			return os.MkdirAll(filepath.Join(dir, filepath.FromSlash(rel)), 0o755)
		}
		dst := filepath.Join(dir, filepath.FromSlash(rel))
		if !overwrite {
			if _, err := os.Stat(dst); err == nil {
				return nil
			}
		}
		data, err := files.ReadFile(path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return err
		}
		written = append(written, dst)
		return nil
	})
	return written, err
}
