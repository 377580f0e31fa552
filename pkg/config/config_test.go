package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "/nonexistent/config.yaml")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "./data", cfg.DataDirectory)
	assert.Equal(t, "127.0.0.1", cfg.ServerHost)
	assert.Equal(t, 4271, cfg.ServerPort)
	assert.Equal(t, "LIB001", cfg.LibraryID)
	assert.Equal(t, 30, cfg.SyncIntervalMinutes)
	assert.Equal(t, 60, cfg.SyncStartupDelaySeconds)
	assert.Equal(t, 10, cfg.SyncTimeoutSeconds)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestNew_WithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
data_directory: /data/library
server_port: 8080
library_id: LIB042
sync_url: https://sync.example.com/api/sync
sync_interval_minutes: 5
jwt_secret: test-secret-from-file
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	t.Setenv("CONFIG_FILE", configPath)

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "/data/library", cfg.DataDirectory)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "LIB042", cfg.LibraryID)
	assert.Equal(t, "https://sync.example.com/api/sync", cfg.SyncURL)
	assert.Equal(t, 5, cfg.SyncIntervalMinutes)
	assert.Equal(t, "test-secret-from-file", cfg.JWTSecret)
}

func TestNew_EnvVarOverridesConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
data_directory: /data/from-file
server_port: 8080
jwt_secret: test-secret-from-file
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	t.Setenv("CONFIG_FILE", configPath)
	t.Setenv("DATA_DIRECTORY", "/data/from-env")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "/data/from-env", cfg.DataDirectory)
	assert.Equal(t, 9090, cfg.ServerPort)
}

func TestNewForTest(t *testing.T) {
	cfg := NewForTest()
	assert.Equal(t, "127.0.0.1", cfg.ServerHost)
	assert.Equal(t, 30, cfg.SyncIntervalMinutes)
	assert.Equal(t, "test-jwt-secret", cfg.JWTSecret)
}

func TestDurationHelpers(t *testing.T) {
	cfg := NewForTest()
	assert.Equal(t, 30*time.Minute, cfg.SyncInterval())
	assert.Equal(t, time.Minute, cfg.SyncStartupDelay())
	assert.Equal(t, 10*time.Second, cfg.SyncTimeout())
}
