package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "serverConfig.toml"), []byte(body), 0644))
	return dir
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.ListenAddrPort)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, 5, cfg.MetricsInterval)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 20, cfg.SamplesPage)
	assert.False(t, cfg.AuthRequired)
	assert.Equal(t, ":8000", cfg.ListenAddr())
}

func TestLoadFromFile(t *testing.T) {
	dir := writeConfig(t, `
[serverConfig]
ServerAddr = "127.0.0.1"
ServerPort = "9100"

[database]
Type = "Postgres"
ConnString = "host=localhost dbname=lims sslmode=disable"

[auth]
Required = true
TokenTTL = "2h"

[frontend]
SamplesPerPage = 0
`)
	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9100", cfg.ListenAddr())
	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, "host=localhost dbname=lims sslmode=disable", cfg.DatabaseConnString)
	assert.True(t, cfg.AuthRequired)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 20, cfg.SamplesPage)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("LIMS_SERVERCONFIG_SERVERPORT", "9999")
	t.Setenv("LIMS_SCHEDULING_METRICSINTERVAL", "0")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.ListenAddrPort)
	assert.Equal(t, 1, cfg.MetricsInterval)
}

func TestLoadRejectsUnknownDatabase(t *testing.T) {
	dir := writeConfig(t, "[database]\nType = \"mysql\"\n")
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadRejectsBadTokenTTL(t *testing.T) {
	dir := writeConfig(t, "[auth]\nTokenTTL = \"soon\"\n")
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("Debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelError, ParseLevel("ERROR"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("unknown"))
}
