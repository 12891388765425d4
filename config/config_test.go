package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mortgage-service/service"
)

func newBound(t *testing.T) (*cobra.Command, func() (Config, error)) {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	v := NewViper()
	require.NoError(t, BindFlags(cmd, v))
	return cmd, func() (Config, error) { return Load(v) }
}

func TestLoad_Defaults(t *testing.T) {
	_, load := newBound(t)

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, service.DefaultRates(), cfg.Rates())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5.0, cfg.RateLimit.RPS)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_EnvAndFlags(t *testing.T) {
	t.Setenv("MORTGAGE_PORT", "9090")
	t.Setenv("MORTGAGE_REDIS_ADDR", "localhost:6379")
	t.Setenv("MORTGAGE_RATE_BASE", "11.5")
	t.Setenv("MORTGAGE_HOST", "10.0.0.1")

	cmd, load := newBound(t)
	// flags win over the environment
	require.NoError(t, cmd.Flags().Set("host", "0.0.0.0"))
	require.NoError(t, cmd.Flags().Set("shutdown-timeout", "3s"))

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 11.5, cfg.Rate.Base)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string][2]string{
		"port":     {"port", "0"},
		"rate":     {"rate-military", "-1"},
		"rps":      {"ratelimit-rps", "-2"},
		"burst":    {"ratelimit-burst", "0"},
		"host":     {"host", " "},
		"shutdown": {"shutdown-timeout", "0s"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			cmd, load := newBound(t)
			require.NoError(t, cmd.Flags().Set(kv[0], kv[1]))

			_, err := load()
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MORTGAGE_LOG_FORMAT=json\n"), 0o600))
	t.Setenv("MORTGAGE_LOG_FORMAT", "")
	require.NoError(t, os.Unsetenv("MORTGAGE_LOG_FORMAT"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "json", os.Getenv("MORTGAGE_LOG_FORMAT"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
