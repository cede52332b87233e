// Package config loads dockerconsole settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rusenback/dockerconsole/internal/docker"
)

// Duration decodes TOML strings such as "2s" or "400ms"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Docker struct {
	Host      string   `toml:"host"`
	TLSVerify bool     `toml:"tls_verify"`
	CertPath  string   `toml:"cert_path"`
	Timeout   Duration `toml:"timeout"`
	Refresh   Duration `toml:"refresh"`
}

// Grid sizes container cards, in terminal cells
type Grid struct {
	MinCardWidth int `toml:"min_card_width"`
	MaxCardWidth int `toml:"max_card_width"`
	MarginX      int `toml:"margin_x"`
	MarginY      int `toml:"margin_y"`
	// Count is the visible card hint, 0 shows all cards
	Count int `toml:"count"`
	// PopIn is how long a newly placed card stays highlighted
	PopIn Duration `toml:"pop_in"`
}

type Stats struct {
	GaugeDiameter int `toml:"gauge_diameter"`
	TrafficPoints int `toml:"traffic_points"`
}

type Storage struct {
	Enabled   bool     `toml:"enabled"`
	Path      string   `toml:"path"`
	Retention Duration `toml:"retention"`
}

type Metrics struct {
	// Addr enables the Prometheus endpoint when set, e.g. ":9187"
	Addr string `toml:"addr"`
}

type Log struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type Config struct {
	Docker  Docker  `toml:"docker"`
	Grid    Grid    `toml:"grid"`
	Stats   Stats   `toml:"stats"`
	Storage Storage `toml:"storage"`
	Metrics Metrics `toml:"metrics"`
	Log     Log     `toml:"log"`
}

// Default returns the built-in configuration
func Default() Config {
	d := docker.DefaultConfig()
	return Config{
		Docker: Docker{
			Host:    d.Host,
			Timeout: Duration{d.Timeout},
			Refresh: Duration{2 * time.Second},
		},
		Grid: Grid{
			MinCardWidth: 30,
			MaxCardWidth: 44,
			MarginX:      1,
			MarginY:      1,
			PopIn:        Duration{400 * time.Millisecond},
		},
		Stats: Stats{
			GaugeDiameter: 20,
			TrafficPoints: 120,
		},
		Storage: Storage{
			Enabled:   true,
			Retention: Duration{7 * 24 * time.Hour},
		},
		Log: Log{
			File:  DefaultLogPath(),
			Level: "info",
		},
	}
}

// DefaultLogPath returns ~/.dockerconsole/dockerconsole.log, next to the
// stats database. It is empty when the home directory is unknown.
func DefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".dockerconsole", "dockerconsole.log")
}

// DefaultPath returns ~/.config/dockerconsole/config.toml
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "dockerconsole", "config.toml")
}

// Load decodes the file at path over the defaults. A missing file is not an
// error when path is the default location.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	return Parse(string(data))
}

// Parse decodes TOML text over the defaults and validates the result
func Parse(text string) (Config, error) {
	cfg := Default()

	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}

	return cfg, cfg.Validate()
}

// Validate checks values that would make the console unusable
func (c Config) Validate() error {
	if c.Grid.MinCardWidth < 1 {
		return fmt.Errorf("grid.min_card_width must be positive, got %d", c.Grid.MinCardWidth)
	}
	if c.Grid.MaxCardWidth != 0 && c.Grid.MaxCardWidth < c.Grid.MinCardWidth {
		return fmt.Errorf("grid.max_card_width %d is below min_card_width %d", c.Grid.MaxCardWidth, c.Grid.MinCardWidth)
	}
	if c.Grid.MarginX < 0 || c.Grid.MarginY < 0 {
		return errors.New("grid margins cannot be negative")
	}
	if c.Grid.Count < 0 {
		return fmt.Errorf("grid.count cannot be negative, got %d", c.Grid.Count)
	}
	if c.Docker.Refresh.Duration <= 0 {
		return errors.New("docker.refresh must be positive")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// Encode writes c as TOML
func (c Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
