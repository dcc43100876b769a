package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8402
  log_level: debug
  enable_metrics: true
network: testnet
oracle:
  kind: stacks
  stacks_api_url: https://api.testnet.hiro.so
  timeout: 5s
verification:
  timeout: 45s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8402, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.True(t, cfg.Server.EnableMetrics)
	assert.Equal(t, "testnet", cfg.Network)
	assert.Equal(t, "stacks", cfg.Oracle.Kind)
	assert.Equal(t, 5*time.Second, cfg.OracleTimeout)
	assert.Equal(t, 45*time.Second, cfg.VerifyTimeout)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8402
oracle:
  kind: static
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mainnet", cfg.Network)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 15*time.Second, cfg.OracleTimeout)
	assert.Equal(t, 30*time.Second, cfg.VerifyTimeout)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := map[string]string{
		"missing port": `
oracle:
  kind: static
`,
		"unknown oracle kind": `
server:
  port: 8402
oracle:
  kind: carrier-pigeon
`,
		"stacks without url": `
server:
  port: 8402
oracle:
  kind: stacks
`,
		"bad timeout": `
server:
  port: 8402
oracle:
  kind: static
  timeout: soon
`,
		"bad network": `
server:
  port: 8402
network: devnet
oracle:
  kind: static
`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
