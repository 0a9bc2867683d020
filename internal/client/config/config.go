// Package config loads the settings of the patrimonio CLI.
package config

import (
	"errors"
	"time"
)

// Config holds runtime settings for the patrimonio CLI.
//
// Fields:
//   - ServerURL: base URL of the patrimonio HTTP API.
//   - RequestTimeout: per-request timeout of the HTTP client.
//   - TokenDir: directory under the user's home holding the saved token.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	TokenDir       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.RequestTimeout = 15 * time.Second
	c.TokenDir = ".patrimonio"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the JSON file at jsonPath (if not empty) and from the environment. The
// --server flag of the CLI is applied on top by the caller.
func LoadConfig(jsonPath string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, jsonPath); err != nil {
		return nil, err
	}
	parseEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.ServerURL == "" {
		errs = append(errs, errors.New("server url is empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.TokenDir == "" {
		errs = append(errs, errors.New("token dir is empty"))
	}
	return errors.Join(errs...)
}
