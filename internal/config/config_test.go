package config_test

import (
	"os"
	"path/filepath"
	"primes/internal/config"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, "/metrics", cfg.HTTP.MetricsPath)
	require.Equal(t, "primes", cfg.Database.DatabaseName)
	require.Equal(t, int64(20), cfg.Scanner.DefaultUpper)
	require.True(t, cfg.Scanner.DefaultInclusive)
	require.Equal(t, int64(10000000), cfg.Scanner.MaxUpper)
	require.Equal(t, 3, cfg.Scanner.MaxAttempts)
	require.Equal(t, 24*time.Hour, cfg.Scanner.ResultCacheTTL)
	require.Equal(t, 10, cfg.Worker.MaxWorkers)
	require.Equal(t, "http://localhost:8080", cfg.Remote.ServerURL)
	require.Equal(t, 30*time.Second, cfg.Remote.Timeout)
	require.Equal(t, 10*time.Second, cfg.GracefulShutdownTimeout)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
environment: production
logLevel: warn
http:
  addr: ":9090"
scanner:
  defaultUpper: 10
  defaultInclusive: false
  maxUpper: 1000
worker:
  maxWorkers: 4
  jobTimeout: 30s
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, ":9090", cfg.HTTP.Addr)
	require.Equal(t, int64(10), cfg.Scanner.DefaultUpper)
	require.False(t, cfg.Scanner.DefaultInclusive)
	require.Equal(t, int64(1000), cfg.Scanner.MaxUpper)
	require.Equal(t, 4, cfg.Worker.MaxWorkers)
	require.Equal(t, 30*time.Second, cfg.Worker.JobTimeout)
	// untouched values keep their defaults
	require.Equal(t, 5432, cfg.Database.Port)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "scanner:\n  defaultUpper: 10\n")
	t.Setenv("SCANNER_DEFAULT_UPPER", "50")
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("REMOTE_TOKEN", "secret")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, int64(50), cfg.Scanner.DefaultUpper)
	require.Equal(t, "db.internal", cfg.Database.Host)
	require.Equal(t, "secret", cfg.Remote.Token)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := writeConfig(t, "scanner: [not, a, map\n")

	_, err := config.Load(path)
	require.Error(t, err)
}
