package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/run/user/test/vitcat/daemon.sock", cfg.SocketPath)
	assert.Equal(t, "/run/user/test/vitcat/daemon.pid", cfg.PIDFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.CatalogDir)
	assert.False(t, cfg.Development)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vitcat.yaml")
	content := "catalog_dir: /srv/catalog\nlog_level: debug\ndevelopment: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/catalog", cfg.CatalogDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Development)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vitcat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))
	t.Setenv("VITCAT_LOG_LEVEL", "warn")
	t.Setenv("VITCAT_SOCKET_PATH", "/tmp/vitcat-test.sock")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "/tmp/vitcat-test.sock", cfg.SocketPath)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
