package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/insightdesk/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
//	-a string          HTTP bind address (e.g., ":8080")
//	-base-url string   public base URL used in OAuth redirect URLs
//	-d string          PostgreSQL DSN
//	-s string          session signing secret
//	-session-ttl dur   session lifetime (e.g., "720h")
//	-cookie-secure     mark session cookies Secure
//	-demo              enable the built-in demonstration account
//	-b string          S3 archive bucket (empty disables the archive)
//	-e string          S3 base endpoint
//
// os.Args is filtered first so flags owned by other parts of the program do
// not break parsing. A parse error panics.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-base-url", "-d", "-s", "-session-ttl", "-cookie-secure", "-demo", "-b", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.BaseURL, "base-url", config.BaseURL, "public base URL")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SessionSecret, "s", config.SessionSecret, "session signing secret")
	fs.DurationVar(&config.SessionTTL, "session-ttl", config.SessionTTL, "session lifetime")
	fs.BoolVar(&config.CookieSecure, "cookie-secure", config.CookieSecure, "mark session cookies Secure")
	fs.BoolVar(&config.DemoAccountEnabled, "demo", config.DemoAccountEnabled, "enable demonstration account")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 archive bucket")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
