package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/insightdesk/internal/flagx"
	"github.com/dmitrijs2005/insightdesk/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Duration fields
// accept "30s" style strings or integer nanoseconds. Fields left out of the
// file keep their previous values.
type JsonConfig struct {
	HTTPAddr           string          `json:"http_addr"`
	BaseURL            string          `json:"base_url"`
	DatabaseDSN        string          `json:"database_dsn"`
	ShutdownTimeout    *timex.Duration `json:"shutdown_timeout"`
	SessionSecret      string          `json:"session_secret"`
	SessionTTL         *timex.Duration `json:"session_ttl"`
	CookieSecure       *bool           `json:"cookie_secure"`
	DemoAccountEnabled *bool           `json:"demo_account_enabled"`
	GoogleClientID     string          `json:"google_client_id"`
	GoogleClientSecret string          `json:"google_client_secret"`
	GitHubClientID     string          `json:"github_client_id"`
	GitHubClientSecret string          `json:"github_client_secret"`
	GeminiAPIKey       string          `json:"gemini_api_key"`
	GeminiModel        string          `json:"gemini_model"`
	GeminiBaseURL      string          `json:"gemini_base_url"`
	CaptionEndpoint    string          `json:"caption_endpoint"`
	UpstreamTimeout    *timex.Duration `json:"upstream_timeout"`
	URLFetchLimit      int             `json:"url_fetch_limit"`
	MaxUploadBytes     int64           `json:"max_upload_bytes"`
	AllowedOrigins     []string        `json:"allowed_origins"`
	S3AccessKey        string          `json:"s3_access_key"`
	S3SecretKey        string          `json:"s3_secret_key"`
	S3Bucket           string          `json:"s3_bucket"`
	S3Region           string          `json:"s3_region"`
	S3BaseEndpoint     string          `json:"s3_base_endpoint"`
}

// parseJson loads the file named by -c/-config (or $CONFIG) into config.
// Nothing happens when no path is given. Unreadable or invalid files panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.BaseURL, c.BaseURL)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SessionSecret, c.SessionSecret)
	setString(&config.GoogleClientID, c.GoogleClientID)
	setString(&config.GoogleClientSecret, c.GoogleClientSecret)
	setString(&config.GitHubClientID, c.GitHubClientID)
	setString(&config.GitHubClientSecret, c.GitHubClientSecret)
	setString(&config.GeminiAPIKey, c.GeminiAPIKey)
	setString(&config.GeminiModel, c.GeminiModel)
	setString(&config.GeminiBaseURL, c.GeminiBaseURL)
	setString(&config.CaptionEndpoint, c.CaptionEndpoint)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.SessionTTL != nil {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.UpstreamTimeout != nil {
		config.UpstreamTimeout = c.UpstreamTimeout.Duration
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.DemoAccountEnabled != nil {
		config.DemoAccountEnabled = *c.DemoAccountEnabled
	}
	if c.URLFetchLimit > 0 {
		config.URLFetchLimit = c.URLFetchLimit
	}
	if c.MaxUploadBytes > 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
