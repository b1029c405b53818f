package config

import "github.com/dmitrijs2005/insightdesk/internal/flagx"

const (
	EnvServerURL = "INSIGHTDESK_SERVER"
	EnvDataDir   = "INSIGHTDESK_DATA_DIR"
	EnvTimeout   = "INSIGHTDESK_TIMEOUT"
)

func parseEnv(cfg *Config) {
	flagx.EnvString(&cfg.ServerURL, EnvServerURL)
	flagx.EnvString(&cfg.DataDir, EnvDataDir)
	if err := flagx.EnvDuration(&cfg.Timeout, EnvTimeout); err != nil {
		panic(err)
	}
}
