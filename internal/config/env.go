package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names read by fragy.
const (
	EnvBundleAnalyze = "FRAGY_BUNDLE_ANALYZE"
	EnvLogLevel      = "FRAGY_LOG_LEVEL"
)

// Env is the subset of the process environment fragy reacts to.
type Env struct {
	BundleAnalyze bool
	LogLevel      LogLevel
}

// EnvFromOS reads Env from the process environment.
func EnvFromOS() Env {
	return Env{
		BundleAnalyze: strings.EqualFold(strings.TrimSpace(os.Getenv(EnvBundleAnalyze)), "true"),
		LogLevel:      NormalizeLogLevel(os.Getenv(EnvLogLevel)),
	}
}

// LoadEnvFile loads the first of .env and .env.local found in dir. Existing
// process variables are not overwritten. It returns the loaded file path, or
// "" when neither file exists.
func LoadEnvFile(dir string) (string, error) {
	for _, name := range []string{".env", ".env.local"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return "", err
		}
		return path, nil
	}
	return "", nil
}
