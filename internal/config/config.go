// ABOUTME: Configuration loading and parsing for openclaw-assistant
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete openclaw-assistant configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Endpoint EndpointConfig `yaml:"endpoint"`
	Stores   []StoreConfig  `yaml:"stores"`
	Mail     MailConfig     `yaml:"mail"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds the local API server address
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// EndpointConfig holds the remote tool-execution endpoint configuration
type EndpointConfig struct {
	URL             string `yaml:"url"`
	ProtocolVersion string `yaml:"protocol_version"`

	Timeout     time.Duration `yaml:"-"`
	BackoffBase time.Duration `yaml:"-"`
	MaxRetries  int           `yaml:"max_retries"`

	// Raw string values for YAML unmarshaling
	TimeoutRaw     string `yaml:"timeout"`
	BackoffBaseRaw string `yaml:"backoff_base"`
}

// StoreConfig holds one message-store backend
type StoreConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// MailConfig holds the mail backend configuration
type MailConfig struct {
	// Channel is the backend's identifier in search results; defaults to "mail"
	Channel string `yaml:"channel"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in the optional fields the rest of the program assumes.
func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "127.0.0.1:8080"
	}
	if c.Mail.Channel == "" {
		c.Mail.Channel = "mail"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Metrics.Enabled && c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Endpoint.URL == "" {
		return fmt.Errorf("endpoint.url is required")
	}
	if _, err := url.ParseRequestURI(c.Endpoint.URL); err != nil {
		return fmt.Errorf("endpoint.url is not a valid URL: %w", err)
	}
	if c.Endpoint.MaxRetries < 0 {
		return fmt.Errorf("endpoint.max_retries must not be negative")
	}

	seen := make(map[string]bool)
	for i, store := range c.Stores {
		if store.Name == "" {
			return fmt.Errorf("stores[%d].name is required", i)
		}
		if store.URL == "" {
			return fmt.Errorf("stores[%d].url is required", i)
		}
		if seen[store.Name] {
			return fmt.Errorf("stores[%d].name %q is duplicated", i, store.Name)
		}
		seen[store.Name] = true
		if store.Name == c.Mail.Channel {
			return fmt.Errorf("stores[%d].name %q collides with the mail channel", i, store.Name)
		}
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Endpoint.TimeoutRaw != "" {
		cfg.Endpoint.Timeout, err = time.ParseDuration(cfg.Endpoint.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing endpoint.timeout %q: %w", cfg.Endpoint.TimeoutRaw, err)
		}
	}

	if cfg.Endpoint.BackoffBaseRaw != "" {
		cfg.Endpoint.BackoffBase, err = time.ParseDuration(cfg.Endpoint.BackoffBaseRaw)
		if err != nil {
			return fmt.Errorf("parsing endpoint.backoff_base %q: %w", cfg.Endpoint.BackoffBaseRaw, err)
		}
	}

	return nil
}
