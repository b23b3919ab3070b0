// Package config resolves the fragy site configuration.
//
// Three layers take part: framework defaults, the user's fragy.config.yaml and
// the theme's own config.yaml. Merges are deliberately shallow: a top-level key
// from the user replaces the default wholesale, except the articles and
// articleList sections whose sub-keys overlay one level deep.
package config

// Config is the resolved site configuration.
type Config struct {
	Title       string            `mapstructure:"title" yaml:"title"`
	Locale      string            `mapstructure:"locale" yaml:"locale"`
	Icon        string            `mapstructure:"icon" yaml:"icon"`
	Theme       ThemeSection      `mapstructure:"theme" yaml:"theme"`
	Articles    ArticlesConfig    `mapstructure:"articles" yaml:"articles"`
	ArticleList ArticleListConfig `mapstructure:"articleList" yaml:"articleList"`

	// Extra keeps unrecognized top-level keys for themes to read.
	Extra map[string]any `mapstructure:",remain" yaml:",inline"`
}

// ThemeSection selects the theme package and its user overrides.
type ThemeSection struct {
	Package string         `mapstructure:"package" yaml:"package"`
	Config  map[string]any `mapstructure:"config" yaml:"config,omitempty"`
}

// ArticlesConfig locates article sources on the site.
type ArticlesConfig struct {
	Base string `mapstructure:"base" yaml:"base"`
	Feed string `mapstructure:"feed" yaml:"feed,omitempty"` // local path or remote URL
}

// ArticleListConfig locates the article list JSON.
type ArticleListConfig struct {
	Output string `mapstructure:"output" yaml:"output"` // relative to the user data dir
	Feed   string `mapstructure:"feed" yaml:"feed,omitempty"`
}
