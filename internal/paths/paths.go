// Package paths resolves the filesystem layout of a fragy project.
//
// The framework runs either standalone (its own directory is the project) or
// installed inside a project's dependency directory. The mode is derived once
// from the framework directory and fully determines every path produced here.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/fragy/internal/foundation/errors"
)

const (
	// DependencyDir is the directory dependencies and themes are installed into.
	DependencyDir = "vendor"
	// UserDataDirName holds public assets and posts.
	UserDataDirName = ".fragy"
	// UserConfigFile is the user configuration file name at the project root.
	UserConfigFile = "fragy.config.yaml"
	// OutputDirName is the build output directory under the project root.
	OutputDirName = "dist"

	ThemeConfigFile = "config.yaml"
	ThemeEntryFile  = "entry.html"
	ThemeBuildFile  = "fragy.build.yaml"
)

// Context is the immutable set of paths for one process. Theme fields are
// empty until WithTheme binds a package.
type Context struct {
	Installed        bool
	FrameworkRoot    string
	ModuleSearchRoot string
	ProjectRoot      string
	UserDataDir      string
	UserConfigPath   string

	ThemePackage    string
	ThemeConfigPath string
	ThemeEntryPath  string
	ThemeBuildPath  string
}

// Resolve computes the path context for a framework located at frameworkDir.
// It fails with a config-not-found error when the user configuration is absent.
func Resolve(frameworkDir string) (*Context, error) {
	c, err := Layout(frameworkDir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(c.UserConfigPath); err != nil {
		return nil, ferrors.ConfigNotFoundError(c.UserConfigPath).WithCause(err).Build()
	}
	return c, nil
}

// Layout computes the path context without checking the filesystem. It is
// used before a project exists, e.g. to scaffold one.
func Layout(frameworkDir string) (*Context, error) {
	root, err := filepath.Abs(frameworkDir)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "resolve framework directory").
			WithContext("path", frameworkDir).Build()
	}
	return layout(root), nil
}

func layout(root string) *Context {
	if IsInstalled(root) {
		project := filepath.Dir(filepath.Dir(root))
		return &Context{
			Installed:        true,
			FrameworkRoot:    root,
			ModuleSearchRoot: filepath.Dir(root),
			ProjectRoot:      project,
			UserDataDir:      filepath.Join(project, UserDataDirName),
			UserConfigPath:   filepath.Join(project, UserConfigFile),
		}
	}
	return &Context{
		FrameworkRoot:    root,
		ModuleSearchRoot: filepath.Join(root, DependencyDir),
		ProjectRoot:      root,
		UserDataDir:      filepath.Join(root, UserDataDirName),
		UserConfigPath:   filepath.Join(root, UserConfigFile),
	}
}

// IsInstalled reports whether dir sits inside a dependency directory.
func IsInstalled(dir string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(filepath.Clean(dir)), "/") {
		if seg == DependencyDir {
			return true
		}
	}
	return false
}

// WithTheme returns a copy of c with the theme module paths bound to pkg.
// Nothing is checked on disk; a missing theme surfaces as a module load failure.
func (c Context) WithTheme(pkg string) *Context {
	dir := c.ThemeDir(pkg)
	c.ThemePackage = pkg
	c.ThemeConfigPath = filepath.Join(dir, ThemeConfigFile)
	c.ThemeEntryPath = filepath.Join(dir, ThemeEntryFile)
	c.ThemeBuildPath = filepath.Join(dir, ThemeBuildFile)
	return &c
}

// ThemeDir is the directory of theme package pkg under the module search root.
func (c Context) ThemeDir(pkg string) string {
	return filepath.Join(c.ModuleSearchRoot, filepath.FromSlash(pkg))
}

// OutputDir is the default build output directory.
func (c Context) OutputDir() string {
	return filepath.Join(c.ProjectRoot, OutputDirName)
}

// PublicDir holds static files copied verbatim into the output root.
func (c Context) PublicDir() string {
	return filepath.Join(c.UserDataDir, "public")
}

// PostsDir holds markdown article sources.
func (c Context) PostsDir() string {
	return filepath.Join(c.UserDataDir, "posts")
}
