package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
redis:
  addr: "localhost:6379"
backend:
  base_url: "http://localhost:9000/api"
security:
  jwt_secret: "test-secret"
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	return dir
}

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := writeConfig(t, "base.yaml", baseYAML)

	cfg, err := Load(dir, "test")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.Checkout.ProofWindow)
	assert.Equal(t, int64(5<<20), cfg.Checkout.SlipMaxBytes)
	assert.Equal(t, 30*time.Minute, cfg.Checkout.SessionTTL)
	assert.Equal(t, 20, cfg.Redis.PoolSize)
	assert.Equal(t, 2, cfg.Redis.MinIdleConns)
	assert.Equal(t, 5*time.Second, cfg.Redis.DialTimeout)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := writeConfig(t, "base.yaml", `
redis:
  addr: "localhost:6379"
  pool_size: 50
  dial_timeout: 2s
backend:
  base_url: "http://localhost:9000/api"
security:
  jwt_secret: "test-secret"
checkout:
  proof_window: 10m
`)

	cfg, err := Load(dir, "test")
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Redis.PoolSize)
	assert.Equal(t, 2*time.Second, cfg.Redis.DialTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Checkout.ProofWindow)
}

func TestLoad_MissingRequiredSettings(t *testing.T) {
	dir := writeConfig(t, "base.yaml", `
redis:
  addr: "localhost:6379"
`)

	_, err := Load(dir, "test")
	assert.Error(t, err)
}
