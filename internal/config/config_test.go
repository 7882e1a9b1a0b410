package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpruizc/scimonitor/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.NotNil(t, cfg)

	// App defaults
	assert.Equal(t, "scimonitor", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)

	// Server defaults
	assert.Equal(t, config.DefaultHost, cfg.Server.Host)
	assert.Equal(t, config.DefaultPort, cfg.Server.Port)
	assert.Equal(t, config.DefaultReadTimeout, cfg.Server.ReadTimeout)
	assert.Equal(t, config.DefaultWriteTimeout, cfg.Server.WriteTimeout)
	assert.Equal(t, config.DefaultShutdownTimeout, cfg.Server.ShutdownTimeout)

	// MongoDB defaults
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "scimonitor", cfg.MongoDB.Database)
	assert.Equal(t, config.DefaultMongoDBTimeout, cfg.MongoDB.Timeout)
	assert.Equal(t, uint64(config.DefaultMongoDBMaxPoolSize), cfg.MongoDB.MaxPoolSize)

	// Redis defaults
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Empty(t, cfg.Redis.Password)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, config.DefaultRedisPoolSize, cfg.Redis.PoolSize)

	// Cache defaults
	assert.Equal(t, config.DefaultCacheTTL, cfg.Cache.TTL)
	assert.Equal(t, "api_cache:", cfg.Cache.KeyPrefix)

	// Health defaults
	assert.Equal(t, config.DefaultProbeTimeout, cfg.Health.ProbeTimeout)
	assert.Equal(t, config.DefaultDegradedThreshold, cfg.Health.DegradedThreshold)

	// Log defaults
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestServerConfig_Address(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		port     int
		expected string
	}{
		{
			name:     "default address",
			host:     "0.0.0.0",
			port:     8000,
			expected: "0.0.0.0:8000",
		},
		{
			name:     "localhost",
			host:     "localhost",
			port:     3000,
			expected: "localhost:3000",
		},
		{
			name:     "custom host and port",
			host:     "192.168.1.100",
			port:     9090,
			expected: "192.168.1.100:9090",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.ServerConfig{
				Host: tt.host,
				Port: tt.port,
			}
			assert.Equal(t, tt.expected, cfg.Address())
		})
	}
}

func TestConfig_Validate_Valid(t *testing.T) {
	cfg := config.DefaultConfig()
	err := cfg.Validate()
	assert.NoError(t, err)
}

func TestConfig_Validate_InvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"negative port", -1},
		{"zero port", 0},
		{"port too high", 65536},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Server.Port = tt.port
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "server.port")
		})
	}
}

func TestConfig_Validate_InvalidEnvironment(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.App.Environment = "sandbox"

	err := cfg.Validate()
	require.Error(t, err)
	require.ErrorIs(t, err, config.ErrInvalidEnvironment)
}

func TestConfig_Validate_DegradedThresholdAboveProbeTimeout(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Health.ProbeTimeout = 100 * time.Millisecond
	cfg.Health.DegradedThreshold = 200 * time.Millisecond

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "health.degraded_threshold must not exceed health.probe_timeout")
}

func TestConfig_Validate_NonPositiveTimeouts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		substr string
	}{
		{
			name:   "zero probe timeout",
			mutate: func(c *config.Config) { c.Health.ProbeTimeout = 0 },
			substr: "health.probe_timeout",
		},
		{
			name:   "zero cache ttl",
			mutate: func(c *config.Config) { c.Cache.TTL = 0 },
			substr: "cache.ttl",
		},
		{
			name:   "zero read timeout",
			mutate: func(c *config.Config) { c.Server.ReadTimeout = 0 },
			substr: "server.read_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.substr)
		})
	}
}

func TestConfig_Validate_InvalidLog(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Log.Level = "verbose"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	require.ErrorIs(t, err, config.ErrInvalidLogLevel)
	require.ErrorIs(t, err, config.ErrInvalidLogFormat)
}

func TestLoader_LoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := []byte(`
app:
  name: testapp
  environment: staging
server:
  port: 9000
health:
  probe_timeout: 3s
  degraded_threshold: 150ms
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "testapp", cfg.App.Name)
	assert.Equal(t, "staging", cfg.App.Environment)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Health.ProbeTimeout)
	assert.Equal(t, 150*time.Millisecond, cfg.Health.DegradedThreshold)

	// Untouched sections keep their defaults.
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, config.DefaultCacheTTL, cfg.Cache.TTL)
}

func TestLoader_LoadFromMissingExplicitPath(t *testing.T) {
	_, err := config.LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.ErrorIs(t, err, config.ErrConfigNotFound)
}

func TestLoader_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("MONGODB_DATABASE", "papers_test")
	t.Setenv("HEALTH_PROBE_TIMEOUT", "5s")
	t.Setenv("HEALTH_DEGRADED_THRESHOLD", "400ms")
	t.Setenv("LOG_FORMAT", "text")

	loader := config.NewLoader().WithConfigPaths(nil)
	cfg, err := loader.Load("")
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "papers_test", cfg.MongoDB.Database)
	assert.Equal(t, 5*time.Second, cfg.Health.ProbeTimeout)
	assert.Equal(t, 400*time.Millisecond, cfg.Health.DegradedThreshold)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoader_EnvInvalidDuration(t *testing.T) {
	t.Setenv("HEALTH_PROBE_TIMEOUT", "not-a-duration")

	loader := config.NewLoader().WithConfigPaths(nil)
	_, err := loader.Load("")
	require.Error(t, err)
	require.ErrorIs(t, err, config.ErrInvalidDuration)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o600))

	t.Setenv("SERVER_PORT", "9001")

	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Server.Port)
}
