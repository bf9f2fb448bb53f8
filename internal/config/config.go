package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all user-facing configuration for fitment.
type Config struct {
	Data       DataConfig       `toml:"data"`
	Server     ServerConfig     `toml:"server"`
	Catalog    CatalogConfig    `toml:"catalog"`
	Graph      GraphConfig      `toml:"graph"`
	Visualizer VisualizerConfig `toml:"visualizer"`
	Log        LogConfig        `toml:"log"`
}

type DataConfig struct {
	Dir string `toml:"dir"`
	// Sources holds one <vehicle>.json array of examples per vehicle.
	Sources  string `toml:"sources"`
	Vehicles string `toml:"vehicles"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// CatalogConfig selects where built example shards are read from.
type CatalogConfig struct {
	// Source is "dir", "http" or "sql".
	Source    string  `toml:"source"`
	Dir       string  `toml:"dir"`
	BaseURL   string  `toml:"base_url"`
	RateLimit float64 `toml:"rate_limit"`
	Driver    string  `toml:"driver"`
	DSN       string  `toml:"dsn"`
	Strict    bool    `toml:"strict"`
}

type GraphConfig struct {
	Width             int  `toml:"width"`
	Height            int  `toml:"height"`
	ZeroWidthOnSpacer bool `toml:"zero_width_on_spacer"`
}

type VisualizerConfig struct {
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	Scale  float64 `toml:"scale"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	return &Config{
		Data: DataConfig{
			Dir:      "data",
			Sources:  "examples",
			Vehicles: "vehicles.toml",
		},
		Server: ServerConfig{Host: "localhost", Port: 8080},
		Catalog: CatalogConfig{
			Source:    "dir",
			Dir:       "build/examples",
			RateLimit: 5.0,
			Driver:    "duckdb",
		},
		Graph:      GraphConfig{Width: 720, Height: 400, ZeroWidthOnSpacer: true},
		Visualizer: VisualizerConfig{Width: 480, Height: 320, Scale: 0.333},
		Log:        LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a TOML config file. If the file does not exist, built-in
// defaults are returned without error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later and obscurely.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case "dir", "sql":
	case "http":
		if c.Catalog.BaseURL == "" {
			return fmt.Errorf("catalog.base_url is required for the http source")
		}
	default:
		return fmt.Errorf("unknown catalog.source %q", c.Catalog.Source)
	}
	if c.Graph.Width <= 0 || c.Graph.Height <= 0 {
		return fmt.Errorf("graph size must be positive")
	}
	if c.Visualizer.Width <= 0 || c.Visualizer.Height <= 0 {
		return fmt.Errorf("visualizer size must be positive")
	}
	return nil
}

// VehiclesPath resolves the vehicle table path against the data dir.
func (c *Config) VehiclesPath() string {
	return c.resolve(c.Data.Vehicles)
}

// SourcesPath resolves the example source directory against the data dir.
func (c *Config) SourcesPath() string {
	return c.resolve(c.Data.Sources)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Data.Dir, p)
}
