package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables overriding file values.
const (
	EnvSourceDir    = "ARTICLEBUILDER_SOURCE_DIR"
	EnvOutputDir    = "ARTICLEBUILDER_OUTPUT_DIR"
	EnvMetadataMode = "ARTICLEBUILDER_METADATA_MODE"
	EnvLogLevel     = "ARTICLEBUILDER_LOG_LEVEL"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads .env and .env.local when present. Variables already set
// in the process environment are not overwritten.
func loadEnvFiles() error {
	for _, name := range envFiles {
		if _, err := os.Stat(name); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return err
		}
		slog.Debug("Loaded environment variables", "path", name)
	}
	return nil
}

// applyEnv overrides config values from the environment.
func applyEnv(c *Config) {
	if v := os.Getenv(EnvSourceDir); v != "" {
		c.Source.Dir = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv(EnvMetadataMode); v != "" {
		c.Metadata.Mode = v
	}
}
