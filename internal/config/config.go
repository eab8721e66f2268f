package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// EnvPath names an alternative config file.
const EnvPath = "WAX_CONFIG"

type Config struct {
	ExportsRoot       string   `toml:"exports_root"`
	DBPath            string   `toml:"db_path"`
	MediaDir          string   `toml:"media_dir"`
	Encoding          string   `toml:"encoding"`
	FallbackEncodings []string `toml:"fallback_encodings"`
	LogLevel          string   `toml:"log_level"`
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfgPath := os.Getenv(EnvPath)
	explicit := cfgPath != ""
	if !explicit {
		cfgPath = filepath.Join(home, ".config", "wax", "config.toml")
	}
	return load(cfgPath, home, explicit)
}

func load(cfgPath, home string, mustExist bool) (*Config, error) {
	cfg := Default(home)

	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	} else if mustExist {
		return nil, fmt.Errorf("config %s: %w", cfgPath, err)
	}

	// expand ~ in paths
	cfg.ExportsRoot = expandHome(cfg.ExportsRoot, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)
	cfg.MediaDir = expandHome(cfg.MediaDir, home)

	return cfg, nil
}

// Default returns the configuration used when no file overrides it.
func Default(home string) *Config {
	return &Config{
		ExportsRoot:       filepath.Join(home, "WhatsApp"),
		DBPath:            filepath.Join(home, ".config", "wax", "wax.db"),
		FallbackEncodings: []string{"windows-1252", "iso-8859-1"},
		LogLevel:          "info",
	}
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
