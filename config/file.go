package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/lorkit/combatcards/extract"
	"github.com/lorkit/combatcards/transport"
	"github.com/lorkit/combatcards/walker"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "combatscrape.yaml"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// CatalogConfig describes the catalog being scraped.
type CatalogConfig struct {
	URL      string            `yaml:"url"`
	Origin   string            `yaml:"origin"`
	MaxPages int               `yaml:"max_pages"`
	Workers  int               `yaml:"workers"`
	Query    map[string]string `yaml:"query"`
}

// TransportConfig describes how pages are fetched.
type TransportConfig struct {
	Timeout           string  `yaml:"timeout"`
	UserAgent         string  `yaml:"user_agent"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// OutputConfig describes where card files are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// IndexConfig describes the run index database. An empty DSN disables it.
type IndexConfig struct {
	DSN string `yaml:"dsn"`
}

// FileConfig represents the structure of combatscrape.yaml.
type FileConfig struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Transport TransportConfig `yaml:"transport"`
	Output    OutputConfig    `yaml:"output"`
	Index     IndexConfig     `yaml:"index"`
}

// Default returns the configuration used when no file is present.
func Default() *FileConfig {
	return &FileConfig{
		Catalog: CatalogConfig{
			URL:      "https://tiphereth.zasz.su/cards/",
			Origin:   "https://tiphereth.zasz.su",
			MaxPages: 200,
			Workers:  4,
		},
		Transport: TransportConfig{
			Timeout:           "30s",
			UserAgent:         "combatcards/1.0 (+catalog scraper)",
			RequestsPerSecond: 2,
		},
		Output: OutputConfig{
			Dir: "out/combat",
		},
		Index: IndexConfig{
			DSN: "out/index.db",
		},
	}
}

// LoadConfigFile loads configuration from path. Keys missing from the file
// keep their defaults. Returns the defaults if the file doesn't exist (not an
// error). Returns error if the file exists but cannot be parsed.
func LoadConfigFile(path string) (*FileConfig, error) {
	cfg := Default()

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // File doesn't exist -- not an error
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML over the defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration can drive a scrape.
func (c *FileConfig) Validate() error {
	u, err := url.Parse(c.Catalog.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: catalog.url must be an http or https URL, got %q", ErrInvalidConfig, c.Catalog.URL)
	}

	if _, err := url.Parse(c.Catalog.Origin); err != nil {
		return fmt.Errorf("%w: catalog.origin: %v", ErrInvalidConfig, err)
	}

	if c.Catalog.MaxPages < 0 {
		return fmt.Errorf("%w: catalog.max_pages must not be negative", ErrInvalidConfig)
	}

	if c.Catalog.Workers < 1 {
		return fmt.Errorf("%w: catalog.workers must be at least 1", ErrInvalidConfig)
	}

	timeout, err := time.ParseDuration(c.Transport.Timeout)
	if err != nil {
		return fmt.Errorf("%w: transport.timeout: %v", ErrInvalidConfig, err)
	}
	if timeout <= 0 {
		return fmt.Errorf("%w: transport.timeout must be positive", ErrInvalidConfig)
	}

	if c.Transport.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: transport.requests_per_second must not be negative", ErrInvalidConfig)
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("%w: output.dir is required", ErrInvalidConfig)
	}

	return nil
}

// TransportConfig converts the transport section. Call Validate first; an
// unparsable timeout falls back to the default.
func (c *FileConfig) TransportConfig() transport.Config {
	cfg := transport.DefaultConfig()
	if timeout, err := time.ParseDuration(c.Transport.Timeout); err == nil && timeout > 0 {
		cfg.Timeout = timeout
	}
	if c.Transport.UserAgent != "" {
		cfg.UserAgent = c.Transport.UserAgent
	}
	cfg.RequestsPerSecond = c.Transport.RequestsPerSecond
	return cfg
}

// WalkerConfig converts the catalog section.
func (c *FileConfig) WalkerConfig() walker.Config {
	return walker.Config{
		URL:      c.Catalog.URL,
		MaxPages: c.Catalog.MaxPages,
		Extract: extract.Config{
			Origin:  c.Catalog.Origin,
			Workers: c.Catalog.Workers,
		},
	}
}

// BaseQuery returns the configured base query parameters.
func (c *FileConfig) BaseQuery() url.Values {
	query := url.Values{}
	for key, value := range c.Catalog.Query {
		query.Set(key, value)
	}
	return query
}
