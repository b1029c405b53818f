package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:8080", c.ServerURL)
	assert.Equal(t, "~/.insightdesk", c.DataDir)
	assert.Equal(t, 90*time.Second, c.Timeout)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	t.Setenv("CONFIG", "")

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
}

func TestLoadConfig_EnvThenFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Setenv("CONFIG", "")
	t.Setenv(EnvServerURL, "http://env:1")
	t.Setenv(EnvDataDir, "/tmp/env")
	os.Args = []string{"testbin", "-a", "http://flag:2"}

	cfg := LoadConfig()

	assert.Equal(t, "http://flag:2", cfg.ServerURL)
	assert.Equal(t, "/tmp/env", cfg.DataDir)
}

func TestParseEnv_BadTimeoutPanics(t *testing.T) {
	t.Setenv(EnvTimeout, "soon")
	assert.Panics(t, func() { parseEnv(&Config{}) })
}
