package config

import (
	"maps"

	"github.com/go-viper/mapstructure/v2"

	ferrors "git.home.luguber.info/inful/fragy/internal/foundation/errors"
)

// nestedSections merge one level deep instead of being replaced.
var nestedSections = map[string]struct{}{
	"articles":    {},
	"articleList": {},
}

// FormatConfig overlays user onto defaults and decodes the result.
//
// Top-level keys present in user replace the default entirely. The articles
// and articleList sections overlay sub-key by sub-key. Neither input map is
// modified. Articles.Base is normalized.
func FormatConfig(defaults, user map[string]any) (*Config, error) {
	merged := make(map[string]any, len(defaults)+len(user))
	maps.Copy(merged, defaults)

	for key, value := range user {
		if _, nested := nestedSections[key]; nested {
			um, uok := value.(map[string]any)
			dm, dok := merged[key].(map[string]any)
			if uok && dok {
				section := maps.Clone(dm)
				maps.Copy(section, um)
				merged[key] = section
				continue
			}
		}
		merged[key] = value
	}

	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "create config decoder").Build()
	}
	if err := dec.Decode(merged); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "decode user configuration").Fatal().Build()
	}

	cfg.Articles.Base = NormalizeBase(cfg.Articles.Base)
	return &cfg, nil
}

// OverlayThemeConfig copies every key of override onto themeDefaults and
// returns themeDefaults. The overlay is shallow: a nested map in override
// replaces the default's nested map as a whole, it is never merged into it.
func OverlayThemeConfig(themeDefaults, override map[string]any) map[string]any {
	if themeDefaults == nil {
		themeDefaults = make(map[string]any, len(override))
	}
	maps.Copy(themeDefaults, override)
	return themeDefaults
}
