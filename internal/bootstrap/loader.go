package bootstrap

import (
	"context"
	"html/template"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/fragy/internal/config"
	ferrors "git.home.luguber.info/inful/fragy/internal/foundation/errors"
	"git.home.luguber.info/inful/fragy/internal/theme"
)

// Loader resolves the modules named by the build constants.
type Loader interface {
	LoadUserConfig(ctx context.Context, path string) (map[string]any, error)
	LoadTheme(ctx context.Context, pkg string) (theme.Theme, error)
	LoadThemeConfig(ctx context.Context, path string) (map[string]any, error)
	LoadEntry(ctx context.Context, path string, funcs template.FuncMap) (*template.Template, error)
}

// FSLoader reads configuration and the entry template from disk and looks
// themes up in the theme registry.
type FSLoader struct{}

func (FSLoader) LoadUserConfig(_ context.Context, path string) (map[string]any, error) {
	return config.LoadUserConfig(path)
}

func (FSLoader) LoadTheme(_ context.Context, pkg string) (theme.Theme, error) {
	t := theme.Get(pkg)
	if t == nil {
		return nil, ferrors.ThemeError("theme is not registered").WithContext("theme", pkg).Build()
	}
	return t, nil
}

func (FSLoader) LoadThemeConfig(_ context.Context, path string) (map[string]any, error) {
	return config.LoadThemeConfig(path)
}

func (FSLoader) LoadEntry(_ context.Context, path string, funcs template.FuncMap) (*template.Template, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return template.New(filepath.Base(path)).Funcs(funcs).Parse(string(src))
}
