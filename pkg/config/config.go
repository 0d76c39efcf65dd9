// Package config loads and saves the ledcostume YAML configuration
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// PreviewConfig configures clock-driven previews
type PreviewConfig struct {
	FrameRate int `yaml:"frame_rate"`
	// Audio plays the pattern's track and lets it drive time when available
	Audio bool `yaml:"audio"`
}

// ExportConfig configures MIDI export
type ExportConfig struct {
	Resolution uint16  `yaml:"resolution"`
	Tempo      float64 `yaml:"tempo"`
}

// Config is the main configuration structure
type Config struct {
	// DataDir holds the patterns/, costumes/ and music/ directories
	DataDir   string        `yaml:"data_dir"`
	Server    ServerConfig  `yaml:"server"`
	Preview   PreviewConfig `yaml:"preview"`
	Export    ExportConfig  `yaml:"export"`
	CacheSize int           `yaml:"cache_size"`
	Debug     bool          `yaml:"debug"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	dataDir := "."
	if dir, err := Dir(); err == nil {
		dataDir = filepath.Join(dir, "data")
	}
	return &Config{
		DataDir: dataDir,
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Preview: PreviewConfig{
			FrameRate: 60,
			Audio:     true,
		},
		Export: ExportConfig{
			Resolution: 500,
			Tempo:      120,
		},
		CacheSize: 64,
	}
}

// Dir returns the config directory path
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ledcostume"), nil
}

// Path returns the full path to config.yaml
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config at path, or the default location when path is empty.
// A missing file yields the defaults; fields absent from the file keep them.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Preview.FrameRate <= 0 || c.Preview.FrameRate > 240 {
		return fmt.Errorf("preview.frame_rate %d out of range 1-240", c.Preview.FrameRate)
	}
	if c.Export.Tempo < 0 {
		return fmt.Errorf("export.tempo %v must not be negative", c.Export.Tempo)
	}
	return nil
}

// Save writes the config to path, or the default location when path is empty
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// FrameInterval returns the preview tick period
func (c *Config) FrameInterval() time.Duration {
	if c.Preview.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.Preview.FrameRate)
}

// Addr returns the server listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// MusicDir returns the directory audio tracks are read from
func (c *Config) MusicDir() string {
	return filepath.Join(c.DataDir, "music")
}
