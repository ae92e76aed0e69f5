package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/articlebuilder/internal/foundation/errors"
)

// Load builds the effective configuration.
//
// An empty configPath looks for DefaultPath and falls back to Default() when
// that file does not exist; an explicit path must exist. Values are layered
// as defaults < file < environment, then validated.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, ferrors.ConfigError("failed to load .env file").WithCause(err).Build()
	}

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultPath
	}

	cfg := Default()

	// #nosec G304 -- the config path is supplied by the operator.
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := decode(data, cfg); err != nil {
			return nil, ferrors.ConfigError("failed to parse configuration").
				WithCause(err).
				WithContext("path", configPath).
				Build()
		}
		slog.Debug("Loaded configuration file", "path", configPath)
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		slog.Debug("No configuration file, using defaults", "path", configPath)
	case errors.Is(err, fs.ErrNotExist):
		return nil, ferrors.ConfigError("configuration file not found").WithContext("path", configPath).Build()
	default:
		return nil, ferrors.ConfigError("failed to read configuration").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode expands ${VAR} references and unmarshals over the values already in cfg.
func decode(data []byte, cfg *Config) error {
	expanded := os.ExpandEnv(string(data))
	return yaml.Unmarshal([]byte(expanded), cfg)
}
