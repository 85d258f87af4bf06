package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Egham-7/numseq/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubstitutesEnvVars(t *testing.T) {
	t.Setenv("NUMSEQ_TEST_PORT", "9090")

	cfg, err := Parse([]byte(`
server:
  port: ${NUMSEQ_TEST_PORT}
  log_level: ${NUMSEQ_TEST_UNSET:-debug}
result_cache:
  enabled: true
  backend: redis
  redis_url: ${NUMSEQ_TEST_REDIS:-redis://localhost:6379/0}
`))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.GetNormalizedLogLevel())
	assert.Equal(t, "redis://localhost:6379/0", cfg.ResultCache.RedisURL)
	assert.True(t, cfg.ResultCacheEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("result_cache:\n  enabled: true\nusage:\n  enabled: false\n"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "*", cfg.Server.AllowedOrigins)
	assert.Equal(t, 64*1024, cfg.Source.MaxLineBytes)
	assert.Equal(t, models.CacheBackendMemory, cfg.ResultCache.Backend)
	assert.Equal(t, 1000, cfg.ResultCache.Capacity)
	assert.Equal(t, 4, cfg.Usage.Workers)
	assert.False(t, cfg.UsageEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		ResultCache: &models.ResultCacheConfig{Enabled: true, Backend: models.CacheBackendRedis},
		Usage:       &models.UsageConfig{Enabled: true},
	}

	err := cfg.Validate()
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.ElementsMatch(t, []string{
		"server.port", "server.allowed_origins", "result_cache.redis_url", "database",
	}, validationErr.MissingFields)

	cfg = &Config{
		Server:      models.ServerConfig{Port: "1", AllowedOrigins: "*"},
		ResultCache: &models.ResultCacheConfig{Enabled: true, Backend: "memcached"},
	}
	assert.ErrorContains(t, cfg.Validate(), "unsupported cache backend")
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  environment: production\n"), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())

	_, err = LoadFromFile(filepath.Join(dir, "config.json"))
	assert.ErrorContains(t, err, "only .yaml and .yml")

	_, err = LoadFromFile("../config.yaml")
	assert.ErrorContains(t, err, "path traversal")
}
