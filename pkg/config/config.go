// Package config loads the map screen settings from YAML and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kass/go-city-map/pkg/location"
	"github.com/kass/go-city-map/pkg/models"
	"gopkg.in/yaml.v3"
)

// Search order when no file is named explicitly
var DefaultFiles = []string{"config.yaml", "config.yaml.example"}

// Provider names accepted in location.provider
const (
	ProviderStatic = "static"
	ProviderHTTP   = "http"
	ProviderNone   = "none"
)

// Config structure for YAML configuration
type Config struct {
	Location struct {
		RequirePermission bool   `yaml:"require_permission"`
		HighAccuracy      bool   `yaml:"high_accuracy"`
		TimeoutMs         int    `yaml:"timeout_ms"`
		MaxCacheAgeMs     int    `yaml:"max_cache_age_ms"`
		Provider          string `yaml:"provider"`
		Static            struct {
			Lat       float64 `yaml:"lat"`
			Lon       float64 `yaml:"lon"`
			LatencyMs int     `yaml:"latency_ms"`
		} `yaml:"static"`
		HTTP struct {
			URL string `yaml:"url"`
		} `yaml:"http"`
	} `yaml:"location"`
	Data struct {
		File            string `yaml:"file"`
		MarkersSnapshot string `yaml:"markers_snapshot"`
	} `yaml:"data"`
	PostGIS struct {
		URL string `yaml:"url"`
	} `yaml:"postgis"`
	Surface struct {
		Addr string `yaml:"addr"`
	} `yaml:"surface"`
	Log struct {
		File  string `yaml:"file"`
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the settings used when no file is found
func Default() Config {
	var c Config
	c.Location.RequirePermission = true
	c.Location.HighAccuracy = true
	c.Location.TimeoutMs = 15000
	c.Location.MaxCacheAgeMs = 10000
	c.Location.Provider = ProviderStatic
	c.Location.Static.Lat = -15.7801
	c.Location.Static.Lon = -47.9292
	c.Location.Static.LatencyMs = 800
	c.Location.HTTP.URL = location.DefaultGeoIPURL
	c.Data.MarkersSnapshot = "markers.gob"
	c.Surface.Addr = "127.0.0.1:8765"
	c.Log.File = "mapscreen.log"
	c.Log.Level = "info"
	return c
}

// Load reads path, or the first of DefaultFiles that exists, over the
// defaults, then applies environment overrides. .env is loaded first when
// present. The returned source names the file used, empty for defaults.
func Load(path string) (Config, string, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, "", fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	source := ""

	candidates := DefaultFiles
	if path != "" {
		candidates = []string{path}
	}
	for _, name := range candidates {
		data, err := os.ReadFile(name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == "" {
				continue
			}
			return Config{}, "", fmt.Errorf("read config: %w", err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, "", fmt.Errorf("parse config %q: %w", name, err)
		}
		source = name
		break
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, source, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("MAPSCREEN_DATABASE_URL"); v != "" {
		c.PostGIS.URL = v
	}
	if v := os.Getenv("MAPSCREEN_GEOIP_URL"); v != "" {
		c.Location.HTTP.URL = v
	}
	if v := os.Getenv("MAPSCREEN_SURFACE_ADDR"); v != "" {
		c.Surface.Addr = v
	}
}

// Validate checks values the screens cannot work around
func (c Config) Validate() error {
	switch c.Location.Provider {
	case ProviderStatic, ProviderHTTP, ProviderNone:
	default:
		return fmt.Errorf("config: unknown location provider %q", c.Location.Provider)
	}
	if c.Location.TimeoutMs <= 0 {
		return fmt.Errorf("config: location.timeout_ms must be positive, got %d", c.Location.TimeoutMs)
	}
	if c.Location.MaxCacheAgeMs < 0 {
		return fmt.Errorf("config: location.max_cache_age_ms must not be negative, got %d", c.Location.MaxCacheAgeMs)
	}
	if c.Location.Provider == ProviderStatic {
		if err := c.StaticCoordinate().Validate(); err != nil {
			return fmt.Errorf("config: location.static: %w", err)
		}
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LocationOptions converts the location section into positioning options
func (c Config) LocationOptions() location.Options {
	return location.Options{
		HighAccuracy: c.Location.HighAccuracy,
		Timeout:      time.Duration(c.Location.TimeoutMs) * time.Millisecond,
		MaxCacheAge:  time.Duration(c.Location.MaxCacheAgeMs) * time.Millisecond,
	}
}

// StaticCoordinate is the position reported by the static provider
func (c Config) StaticCoordinate() models.Coordinate {
	return models.Coordinate{Lat: c.Location.Static.Lat, Lon: c.Location.Static.Lon}
}

// StaticLatency is the simulated fix delay of the static provider
func (c Config) StaticLatency() time.Duration {
	return time.Duration(c.Location.Static.LatencyMs) * time.Millisecond
}

// LogLevel parses log.level
func (c Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("config: log.level: %w", err)
	}
	return l, nil
}
