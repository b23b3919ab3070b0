package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadUserConfig reads the raw user configuration document.
func LoadUserConfig(path string) (map[string]any, error) {
	return loadDocument(path)
}

// LoadThemeConfig reads a theme's default configuration document.
func LoadThemeConfig(path string) (map[string]any, error) {
	return loadDocument(path)
}

func loadDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc := map[string]any{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return doc, nil
}
