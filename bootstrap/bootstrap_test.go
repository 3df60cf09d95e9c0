package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempBootstrap(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFrom_NumberForm(t *testing.T) {
	path := writeTempBootstrap(t, `{"serverID":12345, "allocatedUUID":"X", "queryPort":7778, "port":7777, "serverLogDir":"/home"}`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, int64(12345), cfg.ServerID)
	assert.Equal(t, "X", cfg.AllocationID)
	assert.Equal(t, uint16(7778), cfg.QueryPort)
	assert.Equal(t, uint16(7777), cfg.GamePort)
	assert.Equal(t, "/home", cfg.ServerLogDir)
	assert.True(t, cfg.Valid())
}

func TestLoadFrom_StringForm(t *testing.T) {
	numeric := writeTempBootstrap(t, `{"serverID":12345, "allocatedUUID":"X", "queryPort":7778, "port":7777, "serverLogDir":"/home"}`)
	stringy := writeTempBootstrap(t, `{"serverID":"12345", "allocatedUUID":"X", "queryPort":"7778", "port":"7777", "serverLogDir":"/home"}`)

	fromNumber, err := LoadFrom(numeric)
	require.NoError(t, err)
	fromString, err := LoadFrom(stringy)
	require.NoError(t, err)

	assert.Equal(t, fromNumber, fromString)
}

func TestLoadFrom_MissingAllocatedUUID(t *testing.T) {
	path := writeTempBootstrap(t, `{"serverID":12345, "queryPort":7778, "port":7777, "serverLogDir":"/home"}`)

	cfg, err := LoadFrom(path)
	assert.Error(t, err)
	assert.Equal(t, ServerConfig{}, cfg)
	assert.False(t, cfg.Valid())
}

func TestLoadFrom_PortOutOfRange(t *testing.T) {
	path := writeTempBootstrap(t, `{"serverID":12345, "allocatedUUID":"X", "queryPort":70000, "port":7777, "serverLogDir":"/home"}`)

	cfg, err := LoadFrom(path)
	assert.Error(t, err)
	assert.Equal(t, ServerConfig{}, cfg)
}

func TestLoadFrom_MalformedNumber(t *testing.T) {
	path := writeTempBootstrap(t, `{"serverID":"not-a-number", "allocatedUUID":"X", "queryPort":7778, "port":7777, "serverLogDir":"/home"}`)

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestLoadFrom_FileMissing(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.json"))
	assert.Error(t, err)
	assert.False(t, cfg.Valid())
}
