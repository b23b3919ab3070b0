package emit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/fragy/internal/config"
	ferrors "git.home.luguber.info/inful/fragy/internal/foundation/errors"
)

// ManifestFile is the constants manifest written by the define plugin.
const ManifestFile = "fragy.constants.json"

// Manifest is the frozen set of build constants.
type Manifest struct {
	BuildID string            `json:"buildId"`
	Defines map[string]string `json:"defines"`
}

// Constants converts the defines back into typed build constants.
func (m *Manifest) Constants() config.BuildConstants {
	return config.ConstantsFromDefines(m.Defines)
}

// ReadManifest loads the constants manifest from outputDir.
func ReadManifest(outputDir string) (*Manifest, error) {
	path := filepath.Join(outputDir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.ModuleLoadError("read build constants").WithCause(err).WithContext("path", path).Build()
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, ferrors.ModuleLoadError("parse build constants").WithCause(err).WithContext("path", path).Build()
	}
	return &m, nil
}

func writeManifest(outputDir string, m Manifest) (string, int64, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", 0, fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')
	path := filepath.Join(outputDir, ManifestFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", 0, ferrors.FileSystemError("write build constants").WithCause(err).WithContext("path", path).Build()
	}
	return path, int64(len(data)), nil
}
