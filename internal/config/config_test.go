package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"estatedash/internal/layout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"ESTATEDASH_STORAGE", "ESTATEDASH_DATA_DIR", "ESTATEDASH_WORKSPACE",
		"ESTATEDASH_LAYOUT", "ESTATEDASH_PERSIST", "ESTATEDASH_MIN_PANEL_WIDTH",
		"ESTATEDASH_MIN_PANEL_HEIGHT", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.True(t, filepath.IsAbs(cfg.Storage.DataDir))
	assert.Equal(t, "default", cfg.Workspace.Name)
	assert.Equal(t, layout.Dual, cfg.LayoutType())
	assert.True(t, cfg.Workspace.Persist)
	assert.Equal(t, defaultMinWidth, cfg.Workspace.MinPanelWidth)
	assert.Empty(t, cfg.Telemetry.Endpoint)
	assert.Equal(t, "estatedash", cfg.Telemetry.ServiceName)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeConfig(t, `
[storage]
backend = "SQLite"
data_dir = "`+filepath.ToSlash(dir)+`"

[workspace]
name = "austin"
default_layout = "quad"
persist = false
min_panel_width = 20

[telemetry]
otlp_endpoint = "localhost:4318"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, dir, cfg.Storage.DataDir)
	assert.Equal(t, filepath.Join(dir, "estatedash.db"), cfg.SQLitePath())
	assert.Equal(t, filepath.Join(dir, "estatedash.log"), cfg.LogPath())
	assert.Equal(t, "austin", cfg.Workspace.Name)
	assert.Equal(t, layout.Quad, cfg.LayoutType())
	assert.False(t, cfg.Workspace.Persist)
	assert.Equal(t, 20, cfg.Workspace.MinPanelWidth)
	assert.Equal(t, defaultMinHeight, cfg.Workspace.MinPanelHeight)
	assert.Equal(t, "localhost:4318", cfg.Telemetry.Endpoint)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[storage]
backend = "sqlite"

[workspace]
default_layout = "quad"
`)
	t.Setenv("ESTATEDASH_STORAGE", "memory")
	t.Setenv("ESTATEDASH_LAYOUT", "advanced")
	t.Setenv("ESTATEDASH_PERSIST", "false")
	t.Setenv("OTEL_SERVICE_NAME", "estatedash-dev")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, layout.Advanced, cfg.LayoutType())
	assert.False(t, cfg.Workspace.Persist)
	assert.Equal(t, "estatedash-dev", cfg.Telemetry.ServiceName)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		env     map[string]string
		wantMsg string
	}{
		{name: "bad toml", body: "[storage\n", wantMsg: "parse config"},
		{name: "unknown backend", body: "[storage]\nbackend = \"redis\"\n", wantMsg: "unknown storage backend"},
		{name: "unknown layout", body: "[workspace]\ndefault_layout = \"hexa\"\n", wantMsg: "unknown default layout"},
		{name: "bad env", env: map[string]string{"ESTATEDASH_MIN_PANEL_WIDTH": "wide"}, wantMsg: "parse env:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/x/y")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x", "y"), got)

	_, err = expandPath("  ")
	assert.Error(t, err)
}
