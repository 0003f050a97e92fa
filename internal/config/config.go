// Package config loads the application configuration.
//
// Sources are layered in this order, later ones winning: built-in defaults, a config file
// (citywalk.yaml, citywalk.yml or citywalk.toml), a .env file, then the process environment.
// Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/citywalk/pkg/domain"
)

// Location providers.
const (
	ProviderIP     = "ip"
	ProviderStatic = "static"
	ProviderNone   = "none"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// ErrMissingAPIKey is returned by Validate when generation is required without a key.
var ErrMissingAPIKey = errors.New("missing API key: set GEMINI_API_KEY (or API_KEY)")

// Config is the complete application configuration.
type Config struct {
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
	AllowCustom bool          `mapstructure:"allow_custom_preferences"`

	Location LocationConfig `mapstructure:"location"`
	Maps     MapsConfig     `mapstructure:"maps"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	MCP      MCPConfig      `mapstructure:"mcp"`
	Log      LogConfig      `mapstructure:"log"`
}

// LocationConfig selects how the user's position is acquired.
type LocationConfig struct {
	Provider  string  `mapstructure:"provider"`
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
	Endpoint  string  `mapstructure:"endpoint"`
}

// MapsConfig controls map deep links.
type MapsConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Open launches links in the system browser; otherwise they are printed.
	Open bool `mapstructure:"open"`
}

// HTTPConfig configures the HTTP host.
type HTTPConfig struct {
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigin        string        `mapstructure:"cors_origin"`
}

// MCPConfig configures the MCP host.
type MCPConfig struct {
	Transport string `mapstructure:"transport"`
	Addr      string `mapstructure:"addr"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	// Redact lists key patterns whose values are masked in the logs.
	Redact []string `mapstructure:"redact"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model:   "gemini-3-flash-preview",
		Timeout: 60 * time.Second,
		Location: LocationConfig{
			Provider: ProviderIP,
		},
		Maps: MapsConfig{
			BaseURL: "https://www.google.com/maps/dir/",
			Open:    true,
		},
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   5 * time.Second,
			CORSOrigin:        "*",
		},
		MCP: MCPConfig{
			Transport: TransportStdio,
			Addr:      ":8081",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks the configuration. requireKey is set by commands that call the generation service.
func (c *Config) Validate(requireKey bool) error {
	var errs []error
	if requireKey && strings.TrimSpace(c.APIKey) == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	switch c.Location.Provider {
	case ProviderIP, ProviderNone:
	case ProviderStatic:
		if err := c.StaticLocation().Validate(); err != nil {
			errs = append(errs, fmt.Errorf("location: %w", err))
		}
	default:
		errs = append(errs, fmt.Errorf("location: unknown provider %q", c.Location.Provider))
	}
	switch c.MCP.Transport {
	case TransportStdio, TransportSSE:
	default:
		errs = append(errs, fmt.Errorf("mcp: unknown transport %q", c.MCP.Transport))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	for _, p := range c.Log.Redact {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("log: invalid redact pattern %q: %w", p, err))
		}
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must be non-negative, got %s", c.Timeout))
	}
	return errors.Join(errs...)
}

// StaticLocation returns the configured fixed position.
func (c *Config) StaticLocation() domain.Coordinates {
	return domain.Coordinates{Latitude: c.Location.Latitude, Longitude: c.Location.Longitude}
}

// SetStaticLocation switches the provider to a fixed position.
func (c *Config) SetStaticLocation(loc domain.Coordinates) {
	c.Location.Provider = ProviderStatic
	c.Location.Latitude = loc.Latitude
	c.Location.Longitude = loc.Longitude
}

// LogLevel returns the slog level; unknown names fall back to info.
func (c *Config) LogLevel() slog.Level {
	lvl, err := ParseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log: invalid level %q", s)
	}
	return lvl, nil
}

// ParseCoordinates parses "lat,lng".
func ParseCoordinates(s string) (domain.Coordinates, error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("%w: expected \"lat,lng\", got %q", domain.ErrInvalidCoordinates, s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: latitude: %v", domain.ErrInvalidCoordinates, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: longitude: %v", domain.ErrInvalidCoordinates, err)
	}
	c := domain.Coordinates{Latitude: lat, Longitude: lng}
	return c, c.Validate()
}
