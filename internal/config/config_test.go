package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "meter-codec", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "auto", cfg.Codec.Direction)
	assert.Equal(t, -1, cfg.Codec.HardwareType)
	assert.Equal(t, 1024, cfg.Codec.MaxFrameLen)
	assert.True(t, cfg.API.RateLimit.Enabled)
	assert.Equal(t, int64(1<<20), cfg.API.MaxBodyBytes)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meter.yaml")
	content := `
codec:
  direction: uplink
  aesKey: "000102030405060708090a0b0c0d0e0f"
  sevenBit: true
api:
  auth:
    enabled: true
    apiKeys: ["k1", "k2"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("METER_CODEC_MAXFRAMELEN", "2048")
	t.Setenv("METER_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "uplink", cfg.Codec.Direction)
	assert.Equal(t, "000102030405060708090a0b0c0d0e0f", cfg.Codec.AESKey)
	assert.True(t, cfg.Codec.SevenBit)
	assert.Equal(t, 2048, cfg.Codec.MaxFrameLen)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.API.Auth.Enabled)
	assert.Equal(t, []string{"k1", "k2"}, cfg.API.Auth.APIKeys)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
