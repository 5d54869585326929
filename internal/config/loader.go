package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config.yaml"

// Load builds the configuration from env-default tags, an optional YAML
// file and the environment, in increasing priority, then validates it.
//
// The file is CONFIG_PATH when set, which must then exist, or
// ./config.yaml when present.
func Load() (*Config, error) {
	var cfg Config

	if err := read(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func read(cfg *Config) error {
	path, explicit := os.LookupEnv("CONFIG_PATH")
	if !explicit || path == "" {
		path, explicit = defaultConfigPath, false
	}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	case explicit:
		return fmt.Errorf("file %s: %w", path, statErr)
	default:
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("read env: %w", err)
		}
	}
	return nil
}
