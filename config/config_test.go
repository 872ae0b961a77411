package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"UNILOGGER_CONFIG_PATH",
		"UNILOGGER_API_KEY",
		"UNILOGGER_BASE_URL",
		"UNILOGGER_TIMEOUT_MS",
		"UNILOGGER_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "", cfg.APIKey)
	require.Equal(t, DefaultBaseURL, cfg.BaseURL)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("UNILOGGER_API_KEY", "env-key")
	t.Setenv("UNILOGGER_BASE_URL", "http://tracking.internal:9000")
	t.Setenv("UNILOGGER_TIMEOUT_MS", "5000")
	t.Setenv("UNILOGGER_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "env-key", cfg.APIKey)
	require.Equal(t, "http://tracking.internal:9000", cfg.BaseURL)
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "unilogger.yaml")
	content := "api_key: file-key\nbase_url: http://file.example:8000\ntimeout_ms: 2500\nlog_level: warn\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("UNILOGGER_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "file-key", cfg.APIKey)
	require.Equal(t, "http://file.example:8000", cfg.BaseURL)
	require.Equal(t, 2500*time.Millisecond, cfg.Timeout)
	require.Equal(t, slog.LevelWarn, cfg.LogLevel)
}

func TestEnvBeatsFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "unilogger.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: file-key\n"), 0o600))
	t.Setenv("UNILOGGER_CONFIG_PATH", path)
	t.Setenv("UNILOGGER_API_KEY", "env-key")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "env-key", cfg.APIKey)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("UNILOGGER_TIMEOUT_MS", "not-a-number")
	_, err := Load()
	require.Error(t, err)

	clearEnv(t)
	t.Setenv("UNILOGGER_LOG_LEVEL", "loud")
	_, err = Load()
	require.Error(t, err)

	clearEnv(t)
	t.Setenv("UNILOGGER_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	require.Error(t, err)
}
