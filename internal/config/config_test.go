package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CHRONO_CONFIG_PATH", "")
	t.Setenv("CHRONO_DB_PATH", "")
	t.Setenv("CHRONO_LOG_LEVEL", "")
	t.Setenv("CHRONO_FLUSH_INTERVAL", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, time.Second, cfg.Timer.TickInterval)
	require.Equal(t, 5*time.Second, cfg.Timer.FlushInterval)
	require.Contains(t, cfg.DB.Path, "chronotrack.db")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHRONO_CONFIG_PATH", "")
	t.Setenv("CHRONO_DB_PATH", "/tmp/custom.db")
	t.Setenv("CHRONO_LOG_LEVEL", "debug")
	t.Setenv("CHRONO_FLUSH_INTERVAL", "30")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom.db", cfg.DB.Path)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 30*time.Second, cfg.Timer.FlushInterval)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "db:\n  path: /data/track.db\nlog:\n  level: warn\ntimer:\n  flush_interval: 10s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CHRONO_CONFIG_PATH", path)
	t.Setenv("CHRONO_DB_PATH", "")
	t.Setenv("CHRONO_LOG_LEVEL", "")
	t.Setenv("CHRONO_FLUSH_INTERVAL", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/data/track.db", cfg.DB.Path)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, 10*time.Second, cfg.Timer.FlushInterval)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db:\n  path: /file.db\n"), 0o600))

	t.Setenv("CHRONO_CONFIG_PATH", path)
	t.Setenv("CHRONO_DB_PATH", "/env.db")
	t.Setenv("CHRONO_LOG_LEVEL", "")
	t.Setenv("CHRONO_FLUSH_INTERVAL", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/env.db", cfg.DB.Path)
}

func TestLoad_BadFlushInterval(t *testing.T) {
	t.Setenv("CHRONO_CONFIG_PATH", "")
	t.Setenv("CHRONO_FLUSH_INTERVAL", "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("CHRONO_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
}
