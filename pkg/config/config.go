// Package config handles loading and saving pf configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/permitflow/config.yaml
//   - State:   ~/.local/state/permitflow/ (debug log)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/permitflow/pkg/model"

	"gopkg.in/yaml.v3"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "permitflow"

// UIConfig holds UI preference settings.
type UIConfig struct {
	DefaultView  string `yaml:"default_view,omitempty"`  // workflows, tests, documents
	SidebarWidth int    `yaml:"sidebar_width,omitempty"` // Sidebar width in cells
	CardWidth    int    `yaml:"card_width,omitempty"`    // Carousel card width in cells
}

// DataConfig controls where workflow data comes from.
type DataConfig struct {
	Dir   string `yaml:"dir,omitempty"`   // Override directory; empty uses the embedded set
	Watch bool   `yaml:"watch,omitempty"` // Reload when files in Dir change
}

// Config is the top-level configuration for pf.
type Config struct {
	UI   UIConfig   `yaml:"ui,omitempty"`
	Data DataConfig `yaml:"data,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			DefaultView:  "workflows",
			SidebarWidth: 32,
			CardWidth:    34,
		},
	}
}

// ConfigDir returns the XDG config directory for pf.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.normalize()
	cfg.Data.Dir = expandHome(cfg.Data.Dir)
	return cfg, nil
}

// normalize clamps out-of-range values back to defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.UI.SidebarWidth < 16 || c.UI.SidebarWidth > 60 {
		c.UI.SidebarWidth = def.UI.SidebarWidth
	}
	if c.UI.CardWidth < 20 || c.UI.CardWidth > 80 {
		c.UI.CardWidth = def.UI.CardWidth
	}
	if _, ok := model.ParseView(c.UI.DefaultView); !ok {
		c.UI.DefaultView = def.UI.DefaultView
	}
}

// StartView returns the configured initial view.
func (c Config) StartView() model.View {
	v, _ := model.ParseView(c.UI.DefaultView)
	return v
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
