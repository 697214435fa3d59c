package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Reader interface {
	Read() (*Config, error)
}

// EnvReader reads the configuration from the process environment. A .env
// file is loaded into the environment by the app package beforehand.
type EnvReader struct{}

func NewEnvReader() EnvReader {
	return EnvReader{}
}

func (EnvReader) Read() (*Config, error) {
	cfg := new(Config)
	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	err = cfg.validate()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	switch cfg.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("unknown env: %s", cfg.Env)
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.Postgres.Username == "" || cfg.Postgres.Database == "" {
			return fmt.Errorf("postgres storage requires POSTGRES_USERNAME and POSTGRES_DATABASE")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver: %s", cfg.StorageDriver)
	}

	_, err := cfg.Tasks.Location()
	return err
}

func (c TasksConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid tasks timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
