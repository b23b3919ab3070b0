package config

import "git.home.luguber.info/inful/fragy/internal/paths"

// BuildConstants are the literal values frozen into the build output and
// read verbatim by the runtime bootstrap.
type BuildConstants struct {
	FaviconURL      string `json:"FAVICON_URL"`
	Title           string `json:"FRAGY_TITLE"`
	Locale          string `json:"FRAGY_LOCALE"`
	ThemePackage    string `json:"FRAGY_THEME_PKG"`
	UserConfigPath  string `json:"FRAGY_USER_CONFIG_PATH"`
	ThemeConfigPath string `json:"FRAGY_THEME_CONFIG_PATH"`
	ThemeEntryPath  string `json:"FRAGY_THEME_ENTRY_PATH"`
}

// Constants derives the build constants from a resolved config and a
// theme-bound path context.
func (c *Config) Constants(p *paths.Context) BuildConstants {
	return BuildConstants{
		FaviconURL:      c.Icon,
		Title:           c.Title,
		Locale:          c.Locale,
		ThemePackage:    c.Theme.Package,
		UserConfigPath:  p.UserConfigPath,
		ThemeConfigPath: p.ThemeConfigPath,
		ThemeEntryPath:  p.ThemeEntryPath,
	}
}

// Defines flattens the constants into name/value pairs.
func (b BuildConstants) Defines() map[string]string {
	return map[string]string{
		"FAVICON_URL":             b.FaviconURL,
		"FRAGY_TITLE":             b.Title,
		"FRAGY_LOCALE":            b.Locale,
		"FRAGY_THEME_PKG":         b.ThemePackage,
		"FRAGY_USER_CONFIG_PATH":  b.UserConfigPath,
		"FRAGY_THEME_CONFIG_PATH": b.ThemeConfigPath,
		"FRAGY_THEME_ENTRY_PATH":  b.ThemeEntryPath,
	}
}

// ConstantsFromDefines is the inverse of Defines. Missing names stay empty.
func ConstantsFromDefines(d map[string]string) BuildConstants {
	return BuildConstants{
		FaviconURL:      d["FAVICON_URL"],
		Title:           d["FRAGY_TITLE"],
		Locale:          d["FRAGY_LOCALE"],
		ThemePackage:    d["FRAGY_THEME_PKG"],
		UserConfigPath:  d["FRAGY_USER_CONFIG_PATH"],
		ThemeConfigPath: d["FRAGY_THEME_CONFIG_PATH"],
		ThemeEntryPath:  d["FRAGY_THEME_ENTRY_PATH"],
	}
}
