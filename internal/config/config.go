// Package config loads application configuration from an optional YAML
// file with environment-variable overrides. Environment takes precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nameclear/nameclear/internal/logging"
	"github.com/nameclear/nameclear/internal/source"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Sources SourcesConfig  `yaml:"sources"`
	Logging logging.Config `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int    `yaml:"port"`
	BasePath string `yaml:"base_path"`
}

// SourcesConfig holds per-catalog settings.
type SourcesConfig struct {
	LastFMAPIKey   string         `yaml:"lastfm_api_key"`
	TimeoutSeconds map[string]int `yaml:"timeout_seconds,omitempty"`
	Disabled       []string       `yaml:"disabled,omitempty"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8080,
			BasePath: "",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads config from a YAML file (if it exists) and overrides with
// environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("NC_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("NC_BASE_PATH"); v != "" {
		c.Server.BasePath = v
	}
	if v := os.Getenv("NC_LASTFM_API_KEY"); v != "" {
		c.Sources.LastFMAPIKey = v
	}
	if v := os.Getenv("NC_DISABLED_SOURCES"); v != "" {
		c.Sources.Disabled = nil
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				c.Sources.Disabled = append(c.Sources.Disabled, name)
			}
		}
	}
	if v := os.Getenv("NC_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("NC_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("NC_LOG_FILE"); v != "" {
		c.Logging.FilePath = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	if !logging.ValidFormat(c.Logging.Format) {
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}
	for name, secs := range c.Sources.TimeoutSeconds {
		if secs <= 0 {
			return fmt.Errorf("invalid timeout for source %q: %d", name, secs)
		}
	}
	for _, name := range c.Sources.Disabled {
		if !knownSource(name) {
			return fmt.Errorf("unknown source in disabled list: %q", name)
		}
	}
	c.Server.BasePath = strings.TrimRight(c.Server.BasePath, "/")
	return nil
}

func knownSource(name string) bool {
	for _, n := range source.AllNames() {
		if string(n) == name {
			return true
		}
	}
	return false
}

// SourceEnabled reports whether a catalog survived the disabled list.
func (c *Config) SourceEnabled(name source.Name) bool {
	for _, d := range c.Sources.Disabled {
		if d == string(name) {
			return false
		}
	}
	return true
}

// Timeouts converts the configured per-source timeouts to durations.
// Catalogs without an entry fall back to their built-in defaults.
func (c *Config) Timeouts() map[source.Name]time.Duration {
	if len(c.Sources.TimeoutSeconds) == 0 {
		return nil
	}
	out := make(map[source.Name]time.Duration, len(c.Sources.TimeoutSeconds))
	for name, secs := range c.Sources.TimeoutSeconds {
		out[source.Name(name)] = time.Duration(secs) * time.Second
	}
	return out
}
