package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap/zapcore"
)

// Config holds all configuration for rhizomer.
// Configuration can come from a YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Dataset profiling defaults and blacklists
	Profiling ProfilingConfig `yaml:"profiling"`

	// Endpoint client policy shared by every endpoint type
	Endpoint EndpointConfig `yaml:"endpoint"`

	// Direct dereferencing of external URIs
	Browse BrowseConfig `yaml:"browse"`

	// PrefixesFile is a YAML map of prefix to namespace used for CURIEs.
	// The built-in vocabularies are always available.
	PrefixesFile string `yaml:"prefixes_file" env:"PREFIXES_FILE" env-default:""`

	// Credential encryption key for endpoint passwords.
	// Must be a 32-byte key, base64 encoded. Generate with: openssl rand -base64 32
	CredentialsKey string `yaml:"-" env:"CREDENTIALS_KEY"` // Secret - not in YAML
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"rhizomer"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"rhizomer"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// ProfilingConfig holds class and facet detection settings.
type ProfilingConfig struct {
	// ClassBlacklistStr is a comma-separated list of substrings. Classes whose
	// URI contains any of them are never detected.
	ClassBlacklistStr string `yaml:"class_blacklist" env:"PROFILING_CLASS_BLACKLIST" env-default:"http://www.w3.org/2002/07/owl#,http://www.w3.org/2000/01/rdf-schema#,http://www.w3.org/1999/02/22-rdf-syntax-ns#"`

	// PropertyBlacklistStr is the same for facets.
	PropertyBlacklistStr string `yaml:"property_blacklist" env:"PROFILING_PROPERTY_BLACKLIST" env-default:"http://www.w3.org/1999/02/22-rdf-syntax-ns#type"`

	// Parsed from the strings above (not from config file).
	ClassBlacklist    []string `yaml:"-"`
	PropertyBlacklist []string `yaml:"-"`

	// Defaults applied to datasets created without explicit settings.
	DefaultSampleSize int     `yaml:"default_sample_size" env:"PROFILING_DEFAULT_SAMPLE_SIZE" env-default:"100"`
	DefaultCoverage   float64 `yaml:"default_coverage" env:"PROFILING_DEFAULT_COVERAGE" env-default:"0.3"`

	// MaxConcurrentEndpoints bounds per-call endpoint fan-out. 0 is unbounded.
	MaxConcurrentEndpoints int `yaml:"max_concurrent_endpoints" env:"PROFILING_MAX_CONCURRENT_ENDPOINTS" env-default:"4"`
}

// EndpointConfig holds the call policy applied around every endpoint client.
type EndpointConfig struct {
	TimeoutSeconds    int     `yaml:"timeout_seconds" env:"ENDPOINT_TIMEOUT_SECONDS" env-default:"120"`
	MaxRetries        int     `yaml:"max_retries" env:"ENDPOINT_MAX_RETRIES" env-default:"0"`
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"ENDPOINT_REQUESTS_PER_SECOND" env-default:"0"` // 0 disables rate limiting
	Burst             int     `yaml:"burst" env:"ENDPOINT_BURST" env-default:"1"`
	UserAgent         string  `yaml:"user_agent" env:"ENDPOINT_USER_AGENT" env-default:"rhizomer"`
}

// Timeout returns the per-call timeout, 0 when disabled.
func (c *EndpointConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BrowseConfig holds external URI dereferencing settings.
type BrowseConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"BROWSE_TIMEOUT_SECONDS" env-default:"15"`
	MaxBytes       int64  `yaml:"max_bytes" env:"BROWSE_MAX_BYTES" env-default:"10485760"`
	UserAgent      string `yaml:"user_agent" env:"BROWSE_USER_AGENT" env-default:"rhizomer"`
}

// Timeout returns the dereference timeout.
func (c *BrowseConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load reads configuration from path with environment variable overrides.
// A missing file is not an error: the environment and defaults are used.
// The version parameter is injected at build time and set on the returned Config.
func Load(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	cfg.parseComplexFields()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.Database.Host = ResolveHostForDocker(cfg.Database.Host)
	return cfg, nil
}

// parseComplexFields handles fields that need post-processing after loading.
func (c *Config) parseComplexFields() {
	c.Profiling.ClassBlacklist = parseList(c.Profiling.ClassBlacklistStr)
	c.Profiling.PropertyBlacklist = parseList(c.Profiling.PropertyBlacklistStr)
}

func (c *Config) validate() error {
	if c.Profiling.DefaultCoverage < 0 || c.Profiling.DefaultCoverage > 1 {
		return fmt.Errorf("profiling.default_coverage must be between 0 and 1, got %v", c.Profiling.DefaultCoverage)
	}
	if c.Profiling.DefaultSampleSize < 0 {
		return fmt.Errorf("profiling.default_sample_size must not be negative")
	}
	if c.Endpoint.MaxRetries < 0 {
		return fmt.Errorf("endpoint.max_retries must not be negative")
	}
	if _, err := c.ZapLevel(); err != nil {
		return err
	}
	return nil
}

// ZapLevel parses LogLevel.
func (c *Config) ZapLevel() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// parseList splits a comma-separated list, dropping blank entries.
// Format: "a,b,c"
func parseList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
