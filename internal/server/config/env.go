package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/patrimonio/internal/flagx"
)

// Environment variables recognised by parseEnv.
const (
	EnvHTTPAddr       = "PATRIMONIO_HTTP_ADDR"
	EnvGRPCAddr       = "PATRIMONIO_GRPC_ADDR"
	EnvDatabaseDSN    = "PATRIMONIO_DATABASE_DSN"
	EnvSecretKey      = "PATRIMONIO_SECRET_KEY"
	EnvTokenTTL       = "PATRIMONIO_TOKEN_TTL"
	EnvCORSOrigins    = "PATRIMONIO_CORS_ALLOWED_ORIGINS"
	EnvS3RootUser     = "PATRIMONIO_S3_ROOT_USER"
	EnvS3RootPassword = "PATRIMONIO_S3_ROOT_PASSWORD"
	EnvS3Bucket       = "PATRIMONIO_S3_BUCKET"
	EnvS3Region       = "PATRIMONIO_S3_REGION"
	EnvS3BaseEndpoint = "PATRIMONIO_S3_BASE_ENDPOINT"
	EnvExportURLTTL   = "PATRIMONIO_EXPORT_URL_TTL"
)

// parseEnv loads a dotenv file and then overlays PATRIMONIO_* variables.
//
// The dotenv file is taken from the -env flag; without it ".env" in the
// working directory is tried and silently skipped when missing. Variables
// already set in the process environment win over the file.
func parseEnv(config *Config) error {
	if path := flagx.EnvFileFlag(); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %q: %w", path, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	envString(&config.EndpointAddrHTTP, EnvHTTPAddr)
	envString(&config.EndpointAddrGRPC, EnvGRPCAddr)
	envString(&config.DatabaseDSN, EnvDatabaseDSN)
	envString(&config.SecretKey, EnvSecretKey)
	envString(&config.S3RootUser, EnvS3RootUser)
	envString(&config.S3RootPassword, EnvS3RootPassword)
	envString(&config.S3Bucket, EnvS3Bucket)
	envString(&config.S3Region, EnvS3Region)
	envString(&config.S3BaseEndpoint, EnvS3BaseEndpoint)

	if v, ok := os.LookupEnv(EnvCORSOrigins); ok {
		config.CORSAllowedOrigins = splitList(v)
	}

	if err := envDuration(&config.TokenTTL, EnvTokenTTL); err != nil {
		return err
	}
	return envDuration(&config.ExportURLTTL, EnvExportURLTTL)
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// splitList splits a comma separated value, dropping blanks.
func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
