package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
)

// PathEnv names the variable holding the config file path.
const PathEnv = "RENALCARE_CONFIG"

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
//
// The file is path if non-empty, else $RENALCARE_CONFIG, else
// DefaultPath(). An explicitly named file must exist; a missing default file
// means ENV + defaults only.
func Load(path string) (*Config, error) {
	var cfg Config

	explicitPath := path != ""
	if !explicitPath {
		path = os.Getenv(PathEnv)
		explicitPath = path != ""
	}
	if !explicitPath {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultDBPath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Dir is the per-user directory for the config file and database.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "renalcare")
}

// DefaultPath is the config file used when none is named.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultDBPath is the SQLite file used when storage.path is unset.
func DefaultDBPath() string {
	return filepath.Join(Dir(), "renalcare.db")
}
