package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:8080", c.ServerURL)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, ".patrimonio", c.TokenDir)
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"server_url":      "http://json:9000",
		"request_timeout": "3s",
	})

	t.Run("json overrides defaults", func(t *testing.T) {
		t.Setenv(EnvServerURL, "")
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "http://json:9000", cfg.ServerURL)
		assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
		assert.Equal(t, ".patrimonio", cfg.TokenDir, "absent key keeps default")
	})

	t.Run("env overrides json", func(t *testing.T) {
		t.Setenv(EnvServerURL, "http://env:7000")
		t.Setenv(EnvTokenDir, ".patrimonio-test")
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "http://env:7000", cfg.ServerURL)
		assert.Equal(t, ".patrimonio-test", cfg.TokenDir)
	})
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	zero := writeTempJSON(t, map[string]any{"request_timeout": 0, "server_url": ""})
	_, err = LoadConfig(zero)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server url is empty")
	assert.Contains(t, err.Error(), "request timeout must be positive")
}
