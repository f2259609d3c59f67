package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requiredEnv() map[string]string {
	return map[string]string{
		"LINKEDIN_CLIENT_ID":     "client-id",
		"LINKEDIN_CLIENT_SECRET": "client-secret",
		"LINKEDIN_REDIRECT_URI":  "https://broker.example.com/callback",
		"TOKEN_ENCRYPTION_KEY":   "0123456789abcdef0123456789abcdef",
		"JWT_SECRET":             "jwt-secret",
	}
}

func parse(t *testing.T, overrides map[string]string) (Config, error) {
	t.Helper()
	vars := requiredEnv()
	for k, v := range overrides {
		vars[k] = v
	}
	return Parse(env.Options{Environment: vars})
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := parse(t, nil)
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, PKCEBackendStore, cfg.PKCEBackend)
	assert.Equal(t, 10*time.Minute, cfg.PKCETTL)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 60*time.Second, cfg.SweepInterval)
	assert.Equal(t, time.Hour, cfg.StateCleanupInterval)
	assert.Equal(t, []string{"openid", "profile", "email", "w_member_social"}, cfg.Scopes)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.True(t, cfg.SweepEnabled)
}

func TestParse_MissingRequired(t *testing.T) {
	_, err := Parse(env.Options{Environment: map[string]string{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LINKEDIN_CLIENT_ID")
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := parse(t, map[string]string{
		"STORE_BACKEND":  "Mongo",
		"PKCE_BACKEND":   "redis",
		"REDIS_URL":      "redis://localhost:6379/0",
		"SWEEP_INTERVAL": "5m",
		"PORT":           "9090",
	})
	require.NoError(t, err)
	assert.Equal(t, BackendMongo, cfg.StoreBackend)
	assert.Equal(t, PKCEBackendRedis, cfg.PKCEBackend)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.Equal(t, 9090, cfg.Port)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown store", map[string]string{"STORE_BACKEND": "sqlite"}, "STORE_BACKEND"},
		{"redis without url", map[string]string{"PKCE_BACKEND": "redis"}, "REDIS_URL"},
		{"unknown pkce backend", map[string]string{"PKCE_BACKEND": "memcached"}, "PKCE_BACKEND"},
		{"zero ttl", map[string]string{"PKCE_TTL": "0s"}, "PKCE_TTL"},
		{"bad port", map[string]string{"PORT": "70000"}, "PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.env)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg, err := parse(t, map[string]string{"LOG_LEVEL": "debug", "LOG_FORMAT": "json"})
	require.NoError(t, err)

	logger := cfg.NewLogger()
	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))

	cfg.LogLevel = "nonsense"
	assert.False(t, cfg.NewLogger().Enabled(t.Context(), slog.LevelDebug))
}
