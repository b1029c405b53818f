package config

import "github.com/dmitrijs2005/insightdesk/internal/flagx"

// parseEnv overlays settings from environment variables. Names follow the
// web front end's deployment (NEXTAUTH_*, GOOGLE_*, GEMINI_API_KEY,
// DATABASE_URL) so the same environment file serves both.
//
// Malformed boolean or duration values panic, matching parseJson.
func parseEnv(c *Config) {
	flagx.EnvString(&c.HTTPAddr, "ADDRESS")
	flagx.EnvString(&c.BaseURL, "NEXTAUTH_URL")
	flagx.EnvString(&c.DatabaseDSN, "DATABASE_URL")
	flagx.EnvString(&c.SessionSecret, "NEXTAUTH_SECRET")
	flagx.EnvString(&c.GoogleClientID, "GOOGLE_CLIENT_ID")
	flagx.EnvString(&c.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	flagx.EnvString(&c.GitHubClientID, "GITHUB_ID")
	flagx.EnvString(&c.GitHubClientSecret, "GITHUB_SECRET")
	flagx.EnvString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	flagx.EnvString(&c.GeminiModel, "GEMINI_MODEL")
	flagx.EnvString(&c.GeminiBaseURL, "GEMINI_BASE_URL")
	flagx.EnvString(&c.CaptionEndpoint, "CAPTION_ENDPOINT")
	flagx.EnvList(&c.AllowedOrigins, "ALLOWED_ORIGINS")
	flagx.EnvString(&c.S3AccessKey, "S3_ACCESS_KEY")
	flagx.EnvString(&c.S3SecretKey, "S3_SECRET_KEY")
	flagx.EnvString(&c.S3Bucket, "S3_BUCKET")
	flagx.EnvString(&c.S3Region, "S3_REGION")
	flagx.EnvString(&c.S3BaseEndpoint, "S3_ENDPOINT")

	for _, err := range []error{
		flagx.EnvDuration(&c.SessionTTL, "SESSION_TTL"),
		flagx.EnvDuration(&c.UpstreamTimeout, "UPSTREAM_TIMEOUT"),
		flagx.EnvBool(&c.CookieSecure, "COOKIE_SECURE"),
		flagx.EnvBool(&c.DemoAccountEnabled, "DEMO_ACCOUNT_ENABLED"),
	} {
		if err != nil {
			panic(err)
		}
	}
}
