// Package bootstrap reads the server identity file a fleet orchestrator
// drops next to a dedicated game server process before it starts.
package bootstrap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ServerConfig is the identity and port assignment a fleet orchestrator
// hands to a dedicated server process. It is immutable once loaded: nothing
// in this SDK mutates a ServerConfig after Load returns.
type ServerConfig struct {
	ServerID     int64
	AllocationID string
	QueryPort    uint16
	GamePort     uint16
	ServerLogDir string
}

// FileName is the bootstrap file's name inside the home directory.
const FileName = "server.json"

// rawConfig mirrors the on-disk schema. serverID, queryPort, and port may
// arrive as a JSON number or as a JSON string containing a decimal integer,
// depending on which fleet back-end wrote the file, so they are decoded
// through flexibleInt rather than a plain int64/uint16.
type rawConfig struct {
	ServerID     flexibleInt `json:"serverID"`
	AllocatedUID string      `json:"allocatedUUID"`
	QueryPort    flexibleInt `json:"queryPort"`
	Port         flexibleInt `json:"port"`
	ServerLogDir string      `json:"serverLogDir"`
}

// flexibleInt decodes a JSON number or a JSON string holding a decimal
// integer into the same value. Any other JSON representation is an error.
type flexibleInt int64

func (f *flexibleInt) UnmarshalJSON(data []byte) error {
	var asNumber int64
	if err := json.Unmarshal(data, &asNumber); err == nil {
		*f = flexibleInt(asNumber)
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return fmt.Errorf("value %s is neither a JSON number nor a string", string(data))
	}

	parsed, err := strconv.ParseInt(asString, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing %q as decimal integer: %w", asString, err)
	}
	*f = flexibleInt(parsed)
	return nil
}

// Load reads and parses the bootstrap file at $HOME/server.json (or the
// platform equivalent resolved by os.UserHomeDir). On any failure it
// returns the zero ServerConfig alongside a non-nil error describing what
// went wrong; callers that only care about "do I have a valid bootstrap"
// can check ServerConfig.Valid() and ignore the error, but the error is
// useful for logging at the call site.
func Load() (ServerConfig, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return ServerConfig{}, fmt.Errorf("resolving home directory: %w", err)
	}
	return LoadFrom(filepath.Join(home, FileName))
}

// LoadFrom reads and parses the bootstrap file at an explicit path. It
// exists mainly so tests and alternate hosting environments don't have to
// fake $HOME.
func LoadFrom(path string) (ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("reading bootstrap file %s: %w", path, err)
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return ServerConfig{}, fmt.Errorf("parsing bootstrap file %s: %w", path, err)
	}

	if raw.AllocatedUID == "" {
		return ServerConfig{}, fmt.Errorf("bootstrap file %s: allocatedUUID is required", path)
	}
	if raw.ServerLogDir == "" {
		return ServerConfig{}, fmt.Errorf("bootstrap file %s: serverLogDir is required", path)
	}

	queryPort, err := toPort(raw.QueryPort)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("bootstrap file %s: queryPort: %w", path, err)
	}
	gamePort, err := toPort(raw.Port)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("bootstrap file %s: port: %w", path, err)
	}

	return ServerConfig{
		ServerID:     int64(raw.ServerID),
		AllocationID: raw.AllocatedUID,
		QueryPort:    queryPort,
		GamePort:     gamePort,
		ServerLogDir: raw.ServerLogDir,
	}, nil
}

func toPort(v flexibleInt) (uint16, error) {
	if v < 0 || v > 65535 {
		return 0, fmt.Errorf("value %d out of range 0-65535", v)
	}
	return uint16(v), nil
}

// Valid reports whether cfg looks like a successfully loaded bootstrap
// rather than the zero value returned on failure.
func (c ServerConfig) Valid() bool {
	return c.ServerID != 0 && c.QueryPort != 0
}
