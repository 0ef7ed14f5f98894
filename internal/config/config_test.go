package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1.0, cfg.Scan.TimeoutSeconds)
	assert.Equal(t, 500, cfg.Scan.Concurrency)
	assert.Equal(t, "1-1024", cfg.Scan.Ports)
	assert.False(t, cfg.Scan.Banner)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults pass",
			modify:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "zero timeout rejected",
			modify:  func(c *Config) { c.Scan.TimeoutSeconds = 0 },
			wantErr: true,
		},
		{
			name:    "negative timeout rejected",
			modify:  func(c *Config) { c.Scan.TimeoutSeconds = -1 },
			wantErr: true,
		},
		{
			name:    "zero concurrency rejected",
			modify:  func(c *Config) { c.Scan.Concurrency = 0 },
			wantErr: true,
		},
		{
			name:    "empty ports rejected",
			modify:  func(c *Config) { c.Scan.Ports = "" },
			wantErr: true,
		},
		{
			name:    "bad log level rejected",
			modify:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: true,
		},
		{
			name:    "bad log format rejected",
			modify:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
		},
		{
			name:    "fractional timeout accepted",
			modify:  func(c *Config) { c.Scan.TimeoutSeconds = 0.25 },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
scan:
  timeout: 0.5
  concurrency: 32
  banner: true
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Scan.TimeoutSeconds)
	assert.Equal(t, 32, cfg.Scan.Concurrency)
	assert.True(t, cfg.Scan.Banner)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, "1-1024", cfg.Scan.Ports)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadInvalidFile(t *testing.T) {
	dir := t.TempDir()

	badYAML := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badYAML, []byte("scan: [not a map"), 0o644))
	_, err := Load(badYAML)
	assert.Error(t, err)

	badValues := filepath.Join(dir, "values.yaml")
	require.NoError(t, os.WriteFile(badValues, []byte("scan:\n  timeout: -3\n"), 0o644))
	_, err = Load(badValues)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := Default()
	cfg.Scan.Concurrency = 64
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestTimeoutConversion(t *testing.T) {
	cfg := Default()
	assert.Equal(t, time.Second, cfg.Timeout())

	cfg.Scan.TimeoutSeconds = 0.5
	assert.Equal(t, 500*time.Millisecond, cfg.Timeout())
}

func TestLoggingSettings(t *testing.T) {
	cfg := Default()
	settings := cfg.LoggingSettings()
	assert.False(t, settings.AddSource)

	cfg.Logging.Level = "debug"
	assert.True(t, cfg.LoggingSettings().AddSource)
}
