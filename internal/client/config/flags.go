package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/insightdesk/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string     base URL of the server
//	-data string  local data directory
//	-t duration   request timeout
//
// os.Args is filtered with flagx.FilterArgs so unrelated flags are ignored.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-data", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the InsightDesk server")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "local data directory")
	fs.DurationVar(&cfg.Timeout, "t", cfg.Timeout, "request timeout")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
