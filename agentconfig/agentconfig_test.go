package agentconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, defaultLogLevel, cfg.LogLevel)
	assert.Equal(t, defaultControlBaseURL, cfg.ControlBaseURL)
	assert.Equal(t, defaultRTURL, cfg.RTURL)
	assert.Equal(t, defaultSQPBindAddress, cfg.SQPBindAddress)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleetsdk.yaml")
	content := "log_level: debug\ncontrol_base_url: http://127.0.0.1:9000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.ControlBaseURL)
	assert.Equal(t, defaultRTURL, cfg.RTURL, "unset fields still fall back to defaults")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleetsdk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))

	t.Setenv("FLEETSDK_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}
