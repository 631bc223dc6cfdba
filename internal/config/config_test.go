package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "5001", cfg.Server.Port)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, "assinei", cfg.MongoDB.Database)
	require.Equal(t, 10*time.Second, cfg.MongoDB.Timeout)
	require.Equal(t, "documents", cfg.MinIO.Bucket)
	require.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL)
	require.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTokenTTL)
	require.Greater(t, cfg.RateLimit.RequestsPerSecond, 0.0)
	require.Greater(t, cfg.RateLimit.Burst, 0)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("MONGODB_DATABASE", "assinei_test")
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "5")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "9999", cfg.Server.Port)
	require.Equal(t, "assinei_test", cfg.MongoDB.Database)
	require.Equal(t, 5*time.Minute, cfg.JWT.AccessTokenTTL)
}
