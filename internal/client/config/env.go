package config

import "os"

const (
	EnvServerURL = "PATRIMONIO_SERVER_URL"
	EnvTokenDir  = "PATRIMONIO_TOKEN_DIR"
)

func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvServerURL); ok && v != "" {
		cfg.ServerURL = v
	}
	if v, ok := os.LookupEnv(EnvTokenDir); ok && v != "" {
		cfg.TokenDir = v
	}
}
