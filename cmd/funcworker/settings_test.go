package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
heartbeatInterval: 45s
maxConcurrentInvocations: 8
reloadQuiesceTimeout: 1m30s
minimumHostVersion: 4.20.0
requiredHostCapabilities:
  - RpcStreaming
capabilities:
  TypedDataCollection: "true"
probeAddress: ":8781"
`), 0o600))

	settings, err := LoadSettings(path)
	require.NoError(t, err)
	require.Equal(t, Settings{
		HeartbeatInterval:        Duration(45 * time.Second),
		MaxConcurrentInvocations: 8,
		ReloadQuiesceTimeout:     Duration(90 * time.Second),
		MinimumHostVersion:       "4.20.0",
		RequiredHostCapabilities: []string{"RpcStreaming"},
		Capabilities:             map[string]string{"TypedDataCollection": "true"},
		ProbeAddress:             ":8781",
	}, settings)
}

func TestLoadSettings_EmptyPath(t *testing.T) {
	settings, err := LoadSettings("")
	require.NoError(t, err)
	require.Equal(t, Settings{}, settings)
}

func TestLoadSettings_MissingFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorContains(t, err, "read settings")
}

func TestDuration_Invalid(t *testing.T) {
	var settings Settings
	err := yaml.Unmarshal([]byte("heartbeatInterval: fast\n"), &settings)
	require.ErrorContains(t, err, `invalid duration "fast"`)
}
