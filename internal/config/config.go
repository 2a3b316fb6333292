package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the full daemon configuration, parsed from the environment.
// Load a .env file first (main does) if one exists.
type Config struct {
	HTTP    HTTP
	Local   Local
	Cloud   Cloud
	Catalog Catalog
	Sync    Sync
	Auth    Auth
}

// New reads configuration from environment variables and unmarshals them into
// a struct of type T.
func New[T any]() (T, error) {
	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
