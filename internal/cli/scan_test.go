package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portreach/internal/errors"
)

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		format  string
		wantErr bool
	}{
		{name: "json extension", path: "results.json", wantErr: false},
		{name: "csv extension", path: "results.csv", wantErr: false},
		{name: "uppercase extension", path: "RESULTS.JSON", wantErr: false},
		{name: "unknown extension", path: "results.xml", wantErr: true},
		{name: "no extension", path: "results", wantErr: true},
		{name: "format override wins", path: "results.dat", format: "json", wantErr: false},
		{name: "csv format override", path: "results", format: "csv", wantErr: false},
		{name: "bad format override", path: "results.json", format: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateOutputPath(tt.path, tt.format)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.CodeConfiguration))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	assert.True(t, names["scan"], "scan command should be registered")
	assert.True(t, names["version"], "version command should be registered")
}

func TestScanFlagDefaults(t *testing.T) {
	flags := scanCmd.Flags()

	ports, err := flags.GetString("ports")
	require.NoError(t, err)
	assert.Equal(t, "1-1024", ports)

	timeout, err := flags.GetFloat64("timeout")
	require.NoError(t, err)
	assert.Equal(t, 1.0, timeout)

	concurrency, err := flags.GetInt("concurrency")
	require.NoError(t, err)
	assert.Equal(t, 500, concurrency)

	banner, err := flags.GetBool("banner")
	require.NoError(t, err)
	assert.False(t, banner)
}

// readScanConfig points viper at a config file and binds a fresh flag set,
// mirroring what runScan sees after cobra initialization.
func readScanConfig(t *testing.T, content string) *pflag.FlagSet {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	flags := pflag.NewFlagSet("scan", pflag.ContinueOnError)
	bindScanFlags(flags)
	return flags
}

func TestBuildScanConfigUsesConfigFile(t *testing.T) {
	flags := readScanConfig(t, "scan:\n  ports: \"22\"\n  timeout: 2.5\n")

	cfg := buildScanConfig(flags)

	assert.Equal(t, "22", cfg.Scan.Ports)
	assert.Equal(t, 2.5, cfg.Scan.TimeoutSeconds)
	// Untouched knobs keep their defaults.
	assert.Equal(t, 500, cfg.Scan.Concurrency)
	assert.False(t, cfg.Scan.Banner)
}

func TestBuildScanConfigFlagsBeatConfigFile(t *testing.T) {
	flags := readScanConfig(t, "scan:\n  ports: \"22\"\n  timeout: 2.5\n  concurrency: 16\n")

	require.NoError(t, flags.Set("ports", "80,443"))
	require.NoError(t, flags.Set("timeout", "0.25"))

	cfg := buildScanConfig(flags)

	assert.Equal(t, "80,443", cfg.Scan.Ports)
	assert.Equal(t, 0.25, cfg.Scan.TimeoutSeconds)
	// Knobs not set on the command line still come from the file.
	assert.Equal(t, 16, cfg.Scan.Concurrency)
}

func TestSetVersion(t *testing.T) {
	SetVersion("1.2.3", "abc1234", "2026-01-01")
	assert.Contains(t, rootCmd.Version, "1.2.3")
	assert.Contains(t, rootCmd.Version, "abc1234")
}
