package config

import "time"

// Config holds runtime settings for the InsightDesk CLI.
//
// ServerURL is the base URL of the HTTP API. DataDir holds the local SQLite
// metadata store and may start with "~/".
type Config struct {
	ServerURL string
	DataDir   string
	Timeout   time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.DataDir = "~/.insightdesk"
	c.Timeout = 90 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), environment and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
