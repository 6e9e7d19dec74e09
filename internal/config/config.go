// Package config loads the application configuration from an optional
// YAML file with environment variable expansion, then applies environment
// overrides for the deployment-specific values.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Site     SiteConfig     `yaml:"site"`
	Auth     AuthConfig     `yaml:"auth"`
	S3       S3Config       `yaml:"s3"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
}

type AppConfig struct {
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// Address returns the HTTP listen address.
func (c AppConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Level maps the configured log level name onto slog; unknown names fall
// back to info.
func (c AppConfig) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Duration decodes YAML strings like "2h" or "30m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SiteConfig carries the static channel data for pages and the RSS feed.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	BaseURL     string `yaml:"base_url"`
}

type AuthConfig struct {
	SessionTTL Duration `yaml:"session_ttl"`
}

type S3Config struct {
	Bucket     string `yaml:"bucket"`
	Region     string `yaml:"region"`
	Endpoint   string `yaml:"endpoint"`
	CDNBaseURL string `yaml:"cdn_base_url"`
}

// Enabled reports whether inline-image extraction should run.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

type RabbitMQConfig struct {
	URL string `yaml:"url"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Port:     8080,
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			DSN:    "scribe.db",
		},
		Site: SiteConfig{
			Title:       "scribe",
			Description: "a personal blog",
			BaseURL:     "http://localhost:8080",
		},
		Auth: AuthConfig{
			SessionTTL: Duration(24 * time.Hour),
		},
		S3: S3Config{
			Region: "us-east-1",
		},
	}
}

// Load reads the YAML file at path into the defaults. Environment
// variables referenced as ${VAR} in the file are expanded first, and a
// handful of env overrides apply either way. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Database.DSN = getEnv("DATABASE_DSN", c.Database.DSN)
	c.Database.Driver = getEnv("DATABASE_DRIVER", c.Database.Driver)
	c.RabbitMQ.URL = getEnv("RABBITMQ_URL", c.RabbitMQ.URL)
	c.S3.Bucket = getEnv("S3_BUCKET", c.S3.Bucket)
	c.S3.Region = getEnv("AWS_REGION", c.S3.Region)
	c.S3.Endpoint = getEnv("S3_ENDPOINT", c.S3.Endpoint)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.App,
		validation.Field(&c.App.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return err
	}
	if err := validation.ValidateStruct(&c.Database,
		validation.Field(&c.Database.Driver, validation.Required, validation.In(DriverPostgres, DriverSQLite)),
		validation.Field(&c.Database.DSN, validation.Required),
	); err != nil {
		return err
	}
	return validation.ValidateStruct(&c.Site,
		validation.Field(&c.Site.Title, validation.Required),
		validation.Field(&c.Site.BaseURL, validation.Required),
	)
}
