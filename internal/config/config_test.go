package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.EqualValues(t, 32, cfg.Server.MaxUploadMiB)
	assert.Equal(t, 4, cfg.Analyze.Concurrency)
	assert.Equal(t, "https://api.amazon.com/auth/o2/token", cfg.SPAPI.TokenURL)
	assert.Equal(t, "https://sellingpartnerapi-na.amazon.com", cfg.SPAPI.Endpoint)
	assert.Equal(t, "ATVPDKIKX0DER", cfg.SPAPI.MarketplaceID)
	assert.InDelta(t, 2, cfg.SPAPI.RequestsPerSecond, 0.001)
	assert.Empty(t, cfg.Engine.ThresholdsFile)
}

func TestLoadFromYAML(t *testing.T) {
	chTempDir(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/sourcing
log:
  level: debug
  format: console
server:
  port: 9090
analyze:
  concurrency: 8
engine:
  thresholds_file: thresholds.yaml
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/sourcing", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Analyze.Concurrency)
	assert.Equal(t, "thresholds.yaml", cfg.Engine.ThresholdsFile)
	// Defaults still apply for unset values
	assert.Equal(t, "ATVPDKIKX0DER", cfg.SPAPI.MarketplaceID)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chTempDir(t)

	yaml := `
store:
  driver: postgres
log:
  level: debug
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("SOURCING_STORE_DRIVER", "sqlite")
	t.Setenv("SOURCING_LOG_LEVEL", "warn")
	t.Setenv("SOURCING_SPAPI_CLIENT_ID", "amzn1.application-oa2-client.test")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "amzn1.application-oa2-client.test", cfg.SPAPI.ClientID)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "not-a-level", Format: "json"}))
}
