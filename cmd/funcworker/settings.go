package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings are the file-configurable knobs of the worker. The host controls
// connection parameters through command line flags; the settings file covers
// everything the host does not pass.
type Settings struct {
	// HeartbeatInterval between keep-alive frames, for example "30s".
	HeartbeatInterval Duration `yaml:"heartbeatInterval"`
	// MaxConcurrentInvocations caps parallel handler executions.
	MaxConcurrentInvocations int `yaml:"maxConcurrentInvocations"`
	// ReloadQuiesceTimeout bounds the drain wait of environment reloads.
	ReloadQuiesceTimeout Duration `yaml:"reloadQuiesceTimeout"`
	// MinimumHostVersion rejects hosts older than this semantic version.
	MinimumHostVersion string `yaml:"minimumHostVersion"`
	// RequiredHostCapabilities rejects hosts missing any listed capability.
	RequiredHostCapabilities []string `yaml:"requiredHostCapabilities"`
	// Capabilities to advertise on top of the worker defaults.
	Capabilities map[string]string `yaml:"capabilities"`
	// ProbeAddress is the HTTP health probe listen address, for example
	// ":8781". Empty disables the probe server.
	ProbeAddress string `yaml:"probeAddress"`
}

// Duration wraps [time.Duration] so settings files can use forms like "90s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// LoadSettings reads a YAML settings file. An empty path yields zero
// settings, leaving every knob at the engine's defaults.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}
