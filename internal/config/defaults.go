package config

// DefaultThemePackage is the bundled theme used when the user names none.
const DefaultThemePackage = "fragy-theme-minimal"

// Defaults returns a fresh copy of the framework default configuration.
func Defaults() map[string]any {
	return map[string]any{
		"title":  "fragy",
		"locale": "en",
		"icon":   "/favicon.ico",
		"theme": map[string]any{
			"package": DefaultThemePackage,
		},
		"articles": map[string]any{
			"base": "/posts",
		},
		"articleList": map[string]any{
			"output": "data/articleList.json",
		},
	}
}
