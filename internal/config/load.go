package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFiles are probed, in order, when no config file is given.
var DefaultFiles = []string{"citywalk.yaml", "citywalk.yml", "citywalk.toml"}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// File is an explicit config file; it must exist. Empty probes DefaultFiles in Dir.
	File string
	// Dir is the directory probed for default files and .env. Empty means the working directory.
	Dir string
	// EnvFile overrides the .env path. Missing files are ignored.
	EnvFile string
	// Getenv reads the process environment; nil means os.Getenv.
	Getenv func(string) string
}

// Load builds the configuration from every source.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	path, err := resolveFile(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = filepath.Join(opts.Dir, ".env")
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	lookup := func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveFile(opts LoadOptions) (string, error) {
	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return opts.File, nil
	}
	for _, name := range DefaultFiles {
		p := filepath.Join(opts.Dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// decodeFile reads a YAML or TOML file into a generic map and decodes it onto cfg,
// so keys absent from the file keep their defaults.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid config in %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) string) error {
	for _, key := range []string{"CITYWALK_API_KEY", "GEMINI_API_KEY", "API_KEY"} {
		if v := lookup(key); v != "" {
			cfg.APIKey = v
			break
		}
	}
	if v := lookup("CITYWALK_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := lookup("CITYWALK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CITYWALK_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if v := lookup("CITYWALK_ALLOW_CUSTOM"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CITYWALK_ALLOW_CUSTOM: %w", err)
		}
		cfg.AllowCustom = b
	}
	if v := lookup("CITYWALK_LOCATION_PROVIDER"); v != "" {
		cfg.Location.Provider = v
	}
	if v := lookup("CITYWALK_LOCATION"); v != "" {
		loc, err := ParseCoordinates(v)
		if err != nil {
			return fmt.Errorf("CITYWALK_LOCATION: %w", err)
		}
		cfg.SetStaticLocation(loc)
	}
	if v := lookup("CITYWALK_MAPS_BASE_URL"); v != "" {
		cfg.Maps.BaseURL = v
	}
	if v := lookup("CITYWALK_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := lookup("CITYWALK_MCP_ADDR"); v != "" {
		cfg.MCP.Addr = v
	}
	if v := lookup("CITYWALK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := lookup("CITYWALK_LOG_REDACT"); v != "" {
		cfg.Log.Redact = strings.Split(v, ",")
	}
	return nil
}
