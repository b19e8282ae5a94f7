package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PROVIDER_API_KEY", "tm_test_key")
	t.Setenv("GATEWAY_URL", "https://gateway.test")
	t.Setenv("GATEWAY_TOKEN", "bot-token")
}

// TestLoad_Defaults verifies that default values are used when env vars are missing.
func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("APP_ENV")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("SERVER_PORT")
	os.Unsetenv("COMMAND_PREFIX")
	os.Unsetenv("SESSION_TIMEOUT_SECONDS")
	setRequiredEnv(t)

	cfg, err := Load(".")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "!", cfg.CommandPrefix)
	assert.Equal(t, 120, cfg.SessionTimeoutSeconds)
	assert.Equal(t, "https://api.trackingmore.com", cfg.Provider.URL)
	assert.Equal(t, 60, cfg.Provider.RequestsPerMinute)
	assert.Equal(t, 300, cfg.Provider.CacheTTLSeconds)
	assert.Equal(t, "file", cfg.Registry.Backend)
	assert.Equal(t, "tracking.json", cfg.Registry.FilePath)
}

// TestLoad_EnvVars verifies that environment variables override defaults.
func TestLoad_EnvVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("COMMAND_PREFIX", "/")
	t.Setenv("SESSION_TIMEOUT_SECONDS", "30")
	t.Setenv("REGISTRY_BACKEND", "redis")
	t.Setenv("REGISTRY_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "/", cfg.CommandPrefix)
	assert.Equal(t, 30, cfg.SessionTimeoutSeconds)
	assert.Equal(t, "redis", cfg.Registry.Backend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Registry.RedisURL)
}

// TestLoad_MissingRequired verifies that missing required fields cause an error.
func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv("PROVIDER_API_KEY")
	t.Setenv("GATEWAY_URL", "https://gateway.test")
	t.Setenv("GATEWAY_TOKEN", "bot-token")

	cfg, err := Load(".")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "PROVIDER_API_KEY")
}

// TestLoad_MissingGatewayToken verifies that gateway credentials are required.
func TestLoad_MissingGatewayToken(t *testing.T) {
	setRequiredEnv(t)
	os.Unsetenv("GATEWAY_TOKEN")

	cfg, err := Load(".")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "GATEWAY_TOKEN")
}
