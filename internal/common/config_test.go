package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8585, config.Server.Port)
	assert.Equal(t, "badger", config.Storage.Type)
	assert.Equal(t, "https://statusinvest.com.br", config.Gateway.BaseURL)
	assert.Equal(t, 1, config.Scrape.MaxConcurrentRequests)
	assert.Equal(t, "@every 8h", config.Scrape.RefreshSchedule)
	assert.Equal(t, 6.0, config.Analysis.MinDividendYield)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
environment = "production"

[server]
port = 9090

[storage]
type = "csv"

[gateway]
request_timeout = "10s"

[scrape]
max_concurrent_requests = 4
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "production", config.Environment)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "csv", config.Storage.Type)
	assert.Equal(t, 10*time.Second, config.Gateway.RequestTimeout)
	assert.Equal(t, 4, config.Scrape.MaxConcurrentRequests)

	// Untouched sections keep their defaults.
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, "@every 8h", config.Scrape.RefreshSchedule)
}

func TestLoadConfig_LaterFilesWin(t *testing.T) {
	first := writeConfigFile(t, "[server]\nport = 7000\n")
	second := writeConfigFile(t, "[server]\nport = 7001\n")

	config, err := LoadConfig(first, second)
	require.NoError(t, err)
	assert.Equal(t, 7001, config.Server.Port)
}

func TestLoadConfig_MissingFileErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("FIIRADAR_SERVER_PORT", "6060")
	t.Setenv("FIIRADAR_STORAGE_TYPE", "memory")
	t.Setenv("FIIRADAR_SCRAPE_CONCURRENCY", "3")
	t.Setenv("FIIRADAR_LOG_LEVEL", "debug")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 6060, config.Server.Port)
	assert.Equal(t, "memory", config.Storage.Type)
	assert.Equal(t, 3, config.Scrape.MaxConcurrentRequests)
	assert.Equal(t, "debug", config.Logging.Level)
}
