package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cheggienexus/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestGetConfigDefaults(t *testing.T) {
	path := writeConfigFile(t, `
auth_secret_key = "test-secret-key"
admin_email = "admin@example.com"
admin_password = "admin-password"
`)
	config, err := GetConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost:8900", config.ServerAddress)
	assert.Equal(t, "mongodb://localhost:27017", config.DatabaseURI)
	assert.Equal(t, "localhost:6379", config.RedisAddress)
	assert.Equal(t, logger.LevelInfo, config.LogLevel)
	assert.Equal(t, 15*time.Minute, config.RollupInterval)
	assert.Equal(t, 60*time.Second, config.ProviderTimeout)
	assert.False(t, config.CompletionsCache)
	assert.NotNil(t, config.AuthSecretKey)
}

func TestGetConfigFull(t *testing.T) {
	path := writeConfigFile(t, `
server_address = "0.0.0.0:9000"
database_uri = "mongodb://db:27017"
redis_address = "cache:6379"
log_level = "debug"
auth_secret_key = "test-secret-key"
admin_email = "admin@example.com"
admin_password = "admin-password"
openai_api_key = "sk-1"
anthropic_api_key = "ak-1"
google_api_key = "gk-1"
openrouter_api_key = "ork-1"
rollup_interval = "1h"
provider_timeout = "90s"
completions_cache = true
`)
	config, err := GetConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", config.ServerAddress)
	assert.Equal(t, logger.LevelDebug, config.LogLevel)
	assert.Equal(t, "sk-1", config.OpenAIKey)
	assert.Equal(t, "ak-1", config.AnthropicKey)
	assert.Equal(t, "gk-1", config.GoogleKey)
	assert.Equal(t, "ork-1", config.OpenRouterKey)
	assert.Equal(t, time.Hour, config.RollupInterval)
	assert.Equal(t, 90*time.Second, config.ProviderTimeout)
	assert.True(t, config.CompletionsCache)
}

func TestGetConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errLike string
	}{
		{
			"missing auth_secret_key",
			`admin_email = "a@b.c"
admin_password = "p"`,
			"auth_secret_key",
		},
		{
			"missing admin credentials",
			`auth_secret_key = "k"`,
			"admin_email",
		},
		{
			"bad log level",
			`auth_secret_key = "k"
admin_email = "a@b.c"
admin_password = "p"
log_level = "LOUD"`,
			"log_level",
		},
		{
			"rollup interval too short",
			`auth_secret_key = "k"
admin_email = "a@b.c"
admin_password = "p"
rollup_interval = "5s"`,
			"rollup_interval too short",
		},
		{
			"bad provider timeout",
			`auth_secret_key = "k"
admin_email = "a@b.c"
admin_password = "p"
provider_timeout = "soon"`,
			"provider_timeout",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GetConfig(writeConfigFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errLike)
		})
	}
}

func TestGetConfigMissingFile(t *testing.T) {
	_, err := GetConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
