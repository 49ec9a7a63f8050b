// Package config loads estatedash settings from a TOML file and the
// environment. Environment variables override the file; the file overrides
// built-in defaults. A missing file is not an error.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"estatedash/internal/kv"
	"estatedash/internal/layout"

	toml "github.com/pelletier/go-toml/v2"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

const (
	defaultConfigPath  = "~/.config/estatedash/config.toml"
	defaultServiceName = "estatedash"
	defaultMinWidth    = 12
	defaultMinHeight   = 4
)

// Config is the complete runtime configuration.
type Config struct {
	Storage   Storage   `toml:"storage"`
	Workspace Workspace `toml:"workspace"`
	Telemetry Telemetry `toml:"telemetry"`
}

// Storage selects where panel state, filters and saved layouts live.
type Storage struct {
	Backend string `toml:"backend" env:"ESTATEDASH_STORAGE"`
	DataDir string `toml:"data_dir" env:"ESTATEDASH_DATA_DIR"`
}

// Workspace holds defaults for the panel workspace.
type Workspace struct {
	Name          string `toml:"name" env:"ESTATEDASH_WORKSPACE"`
	DefaultLayout string `toml:"default_layout" env:"ESTATEDASH_LAYOUT"`
	Persist       bool   `toml:"persist" env:"ESTATEDASH_PERSIST"`
	// Minimum panel size in cells when resizing freeform panels.
	MinPanelWidth  int `toml:"min_panel_width" env:"ESTATEDASH_MIN_PANEL_WIDTH"`
	MinPanelHeight int `toml:"min_panel_height" env:"ESTATEDASH_MIN_PANEL_HEIGHT"`
}

// Telemetry configures opt-in OTLP tracing. Tracing is off while Endpoint
// is empty.
type Telemetry struct {
	Endpoint    string `toml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `toml:"service_name" env:"OTEL_SERVICE_NAME"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Storage: Storage{Backend: BackendFile},
		Workspace: Workspace{
			Name:           "default",
			DefaultLayout:  string(layout.Dual),
			Persist:        true,
			MinPanelWidth:  defaultMinWidth,
			MinPanelHeight: defaultMinHeight,
		},
		Telemetry: Telemetry{ServiceName: defaultServiceName},
	}
}

// Load reads the config file at path (the default location when empty),
// applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := readFile(resolved, &cfg); err != nil {
		return Config{}, err
	}
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) normalize() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case "":
		c.Storage.Backend = BackendFile
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("config: unknown storage backend %q (want file, sqlite or memory)", c.Storage.Backend)
	}

	if strings.TrimSpace(c.Storage.DataDir) == "" {
		c.Storage.DataDir = "~/" + kv.DefaultDataBase
	}
	dir, err := expandPath(c.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("config: data dir: %w", err)
	}
	c.Storage.DataDir = dir

	if strings.TrimSpace(c.Workspace.Name) == "" {
		c.Workspace.Name = "default"
	}
	t, ok := layout.ParseType(c.Workspace.DefaultLayout)
	if !ok {
		return fmt.Errorf("config: unknown default layout %q", c.Workspace.DefaultLayout)
	}
	c.Workspace.DefaultLayout = string(t)

	if c.Workspace.MinPanelWidth <= 0 {
		c.Workspace.MinPanelWidth = defaultMinWidth
	}
	if c.Workspace.MinPanelHeight <= 0 {
		c.Workspace.MinPanelHeight = defaultMinHeight
	}
	if strings.TrimSpace(c.Telemetry.ServiceName) == "" {
		c.Telemetry.ServiceName = defaultServiceName
	}
	return nil
}

// LayoutType returns the validated default layout type.
func (c Config) LayoutType() layout.Type {
	t, _ := layout.ParseType(c.Workspace.DefaultLayout)
	return t
}

// LogPath returns the file estatedash logs to while the TUI owns the terminal.
func (c Config) LogPath() string {
	return filepath.Join(c.Storage.DataDir, "estatedash.log")
}

// SQLitePath returns the database file used by the sqlite backend.
func (c Config) SQLitePath() string {
	return filepath.Join(c.Storage.DataDir, "estatedash.db")
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
