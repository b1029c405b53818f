// Package config loads runtime configuration for the InsightDesk CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c, -config or CONFIG.
//  3. Environment: INSIGHTDESK_SERVER, INSIGHTDESK_DATA_DIR, INSIGHTDESK_TIMEOUT.
//  4. Command-line flags -a, -data and -t.
//
// # JSON schema
//
//	{
//	  "server_url": "http://localhost:8080",
//	  "data_dir": "~/.insightdesk",
//	  "timeout": "90s"
//	}
package config
