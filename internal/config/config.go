// Package config loads the board configuration from a YAML file. Values may reference environment
// variables as ${VAR}, which are expanded before parsing.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid marks every configuration validation failure
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Display DisplayConfig `yaml:"display"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// SourceConfig describes the published sheet. Format is how it is published, "csv" or "html".
// MaxBodySize is the largest accepted payload in bytes
type SourceConfig struct {
	URL            string        `yaml:"url"`
	Format         string        `yaml:"format"`
	CacheBustParam string        `yaml:"cache_bust_param"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RetryNum       uint64        `yaml:"retry_num"`
	RetryDuration  time.Duration `yaml:"retry_duration"`
	MaxBodySize    int64         `yaml:"max_body_size"`
}

type DisplayConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	SlideDuration   time.Duration `yaml:"slide_duration"`
	// Timezone of the last updated label, an IANA name or "Local"
	Timezone string `yaml:"timezone"`
	// Layout is an optional path to a custom board HTML document
	Layout string `yaml:"layout"`
	// Reload is the browser reload period of the served page. The page has no script, so viewers
	// only see slide changes and new rates on reload. Defaults to the shorter of SlideDuration and
	// RefreshInterval and may not exceed SlideDuration
	Reload time.Duration `yaml:"reload"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// SourceURL returns the parsed source address
func (c *Config) SourceURL() (*url.URL, error) {
	u, err := url.Parse(c.Source.URL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}

	return u, nil
}

// Location returns the configured display timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load location: %w", err)
	}

	return loc, nil
}

// Default returns a configuration built only from default values
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()

	return &cfg
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config and applies default values.
func LoadWithDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies defaults, and validates.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadEnv populates the process environment from a dotenv file. Variables that are already set win.
// A missing file is not an error unless required is set
func LoadEnv(path string, required bool) error {
	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("load env file: %w", err)
	}

	return nil
}
