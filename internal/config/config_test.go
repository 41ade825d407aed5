package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "WaterBilling.config")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Port, cfg.Server.Port)
	assert.Equal(t, 20*time.Second, cfg.AuthTimeout())
	assert.Equal(t, 60*time.Second, cfg.UploadTimeout())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<WaterBilling>")
	assert.Contains(t, string(data), "<AuthTimeoutMs>20000</AuthTimeoutMs>")
}

func TestLoadConfig_XMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "WaterBilling.config")

	want := DefaultConfig()
	want.Relay.AuthTimeoutMs = 1500
	want.Relay.MaxConcurrentUploads = 4
	require.NoError(t, want.Save(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, cfg.AuthTimeout())
	assert.Equal(t, 4, cfg.Relay.MaxConcurrentUploads)
}

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billing.yaml")
	content := `
server:
  port: 8080
relay:
  provider: s3
  uploadTimeoutMs: 90000
s3:
  endpoint: minio.local:9000
  bucket: records
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "s3", cfg.Relay.Provider)
	assert.Equal(t, 90*time.Second, cfg.UploadTimeout())
	// Unset fields keep their defaults.
	assert.Equal(t, 20*time.Second, cfg.AuthTimeout())
	assert.Equal(t, "records", cfg.S3.Bucket)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RELAY_AUTH_TIMEOUT_MS", "50")
	t.Setenv("RELAY_UPLOAD_TIMEOUT_MS", "75")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "WaterBilling.config"))
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 50*time.Millisecond, cfg.AuthTimeout())
	assert.Equal(t, 75*time.Millisecond, cfg.UploadTimeout())
	assert.Equal(t, "debug", cfg.Advanced.LogLevel)
	assert.Equal(t, "0.0.0.0:9090", cfg.GetServerAddr())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed", content: "relay: [unterminated"},
		{name: "zero auth timeout", content: "relay:\n  authTimeoutMs: 0\n"},
		{name: "unknown provider", content: "relay:\n  provider: dropbox\n"},
		{name: "s3 without bucket", content: "relay:\n  provider: s3\ns3:\n  endpoint: localhost:9000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "billing.yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}
