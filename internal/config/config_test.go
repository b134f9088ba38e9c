package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.MetricsPort)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 500*time.Millisecond, cfg.Engine.StageDelayMin)
	assert.Equal(t, 50, cfg.Engine.StageHistoryLimit)
	assert.Equal(t, 200, cfg.Engine.IncidentHistoryLimit)
	assert.Equal(t, 15*time.Second, cfg.Engine.Heartbeat)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9999"
log:
  level: debug
  format: text
engine:
  stage_delay_min: 10ms
  stage_delay_max: 20ms
  seed: 42
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 10*time.Millisecond, cfg.Engine.StageDelayMin)
	assert.Equal(t, 20*time.Millisecond, cfg.Engine.StageDelayMax)
	assert.Equal(t, int64(42), cfg.Engine.Seed)
	// Untouched sections keep defaults.
	assert.Equal(t, "9090", cfg.Server.MetricsPort)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9999\"\n"), 0o600))

	t.Setenv("CONDUCTOR_SERVER__PORT", "7777")
	t.Setenv("CONDUCTOR_ENGINE__STAGE_HISTORY_LIMIT", "5")
	t.Setenv("CONDUCTOR_CORS__ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7777", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Engine.StageHistoryLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	t.Setenv("CONDUCTOR_LOG__FORMAT", "xml")
	_, err := Load("")
	assert.ErrorContains(t, err, "log format")
}

func TestLoad_InvalidDelayBounds(t *testing.T) {
	t.Setenv("CONDUCTOR_ENGINE__STAGE_DELAY_MIN", "2s")
	t.Setenv("CONDUCTOR_ENGINE__STAGE_DELAY_MAX", "1s")
	_, err := Load("")
	assert.ErrorContains(t, err, "stage delay")
}
