// Package config handles configuration for the server component: defaults,
// an optional JSON file, environment variables and command-line flags,
// applied in that order.
package config

import (
	"errors"
	"time"
)

// Config holds runtime settings for the InsightDesk server.
//
// SessionSecret signs session tokens (HS256). It is read once at start and
// never rotated while the process runs. DemoAccountEnabled turns on the
// built-in demonstration account and must stay off in production.
type Config struct {
	HTTPAddr        string
	BaseURL         string
	DatabaseDSN     string
	ShutdownTimeout time.Duration

	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	DemoAccountEnabled bool

	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string

	GeminiAPIKey    string
	GeminiModel     string
	GeminiBaseURL   string
	CaptionEndpoint string
	UpstreamTimeout time.Duration
	URLFetchLimit   int
	MaxUploadBytes  int64

	AllowedOrigins []string

	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
}

// LoadDefaults populates Config with development defaults. SessionSecret is
// intentionally left empty and must be provided.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.BaseURL = "http://localhost:8080"
	c.ShutdownTimeout = 10 * time.Second
	c.SessionTTL = 30 * 24 * time.Hour
	c.GeminiModel = "gemini-1.5-flash"
	c.GeminiBaseURL = "https://generativelanguage.googleapis.com"
	c.UpstreamTimeout = 60 * time.Second
	c.URLFetchLimit = 8000
	c.MaxUploadBytes = 10 << 20
	c.AllowedOrigins = []string{"http://localhost:3000"}
	c.S3Region = "us-east-1"
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("session secret is required"))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database DSN is required"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if c.URLFetchLimit <= 0 {
		errs = append(errs, errors.New("url fetch limit must be positive"))
	}
	return errors.Join(errs...)
}

// ArchiveEnabled reports whether relayed payloads should be copied to S3.
func (c *Config) ArchiveEnabled() bool {
	return c.S3Bucket != ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
