// Package agentconfig holds optional operator-tunable overrides layered on
// top of the mandatory bootstrap file: log level and the local endpoints
// the SDK talks to. Nothing here is required; every field has a default
// matching the fleet's standard local sidecar wiring.
package agentconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigPath is where Load looks for the operator override file
	// when no explicit path is given.
	DefaultConfigPath = "/etc/hathora/fleetsdk.yaml"

	defaultLogLevel         = "info"
	defaultControlBaseURL   = "http://localhost:8086"
	defaultRTURL            = "ws://localhost:8086/v1/connection/websocket"
	defaultSQPBindAddress   = "0.0.0.0"
)

// Config holds the operator-tunable overrides for a running fleet-SDK
// process.
type Config struct {
	// LogLevel controls slog verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// ControlBaseURL overrides the control-plane HTTP base URL.
	ControlBaseURL string `mapstructure:"control_base_url" yaml:"control_base_url"`

	// RTURL overrides the real-time WebSocket URL.
	RTURL string `mapstructure:"rt_url" yaml:"rt_url"`

	// SQPBindAddress overrides the address the SQP responder binds; the
	// port still comes from the bootstrap file's queryPort.
	SQPBindAddress string `mapstructure:"sqp_bind_address" yaml:"sqp_bind_address"`
}

// Load reads operator overrides from configPath, falling back to
// DefaultConfigPath if empty. A missing file is not an error: every field
// falls back to its documented default. Environment variables (prefixed
// FLEETSDK_) take precedence over the file.
func Load(configPath string) (Config, error) {
	v := viper.New()

	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("control_base_url", defaultControlBaseURL)
	v.SetDefault("rt_url", defaultRTURL)
	v.SetDefault("sqp_bind_address", defaultSQPBindAddress)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(DefaultConfigPath)
	}

	v.SetEnvPrefix("FLEETSDK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range map[string]string{
		"log_level":        "FLEETSDK_LOG_LEVEL",
		"control_base_url": "FLEETSDK_CONTROL_BASE_URL",
		"rt_url":           "FLEETSDK_RT_URL",
		"sqp_bind_address": "FLEETSDK_SQP_BIND_ADDRESS",
	} {
		_ = v.BindEnv(key, env)
	}

	if err := v.ReadInConfig(); err != nil {
		if !isFileNotFound(err) {
			return Config{}, fmt.Errorf("agentconfig: reading override file: %w", err)
		}
		// No override file; defaults and env vars still apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("agentconfig: unmarshalling overrides: %w", err)
	}

	return cfg, nil
}

func isFileNotFound(err error) bool {
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}
	// With an explicit SetConfigFile path, viper reports a missing file as
	// the underlying filesystem error rather than ConfigFileNotFoundError.
	return errors.Is(err, fs.ErrNotExist)
}
