package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "localhost:50061", cfg.GRPC.Address)
	assert.True(t, cfg.GRPC.Enabled)
	assert.Equal(t, 256, cfg.Handler.CommandBuffer)
	assert.Equal(t, 2*time.Second, cfg.Handler.NotifyTimeout)
	assert.Equal(t, "/tmp/launcher/apps.json", cfg.Store.Path)
	assert.Equal(t, "default", cfg.Directory.Account)
	assert.Equal(t, "sha256", cfg.Directory.HashAlgorithm)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":               "9000",
		"HOST":               "127.0.0.1",
		"GRPC_ADDR":          "0.0.0.0:7000",
		"GRPC_ENABLED":       "false",
		"COMMAND_BUFFER":     "16",
		"NOTIFY_TIMEOUT":     "250ms",
		"STORE_PATH":         "/var/lib/launcher/apps.yaml.zst",
		"ACCOUNT":            "alice",
		"IDENTITY_HASH":      "blake2b",
		"LOG_LEVEL":          "debug",
		"LOG_DEV":            "true",
		"RATE_LIMIT_RPS":     "500",
		"RATE_LIMIT_BURST":   "1000",
		"RATE_LIMIT_ENABLED": "false",
		"WEBHOOKS":           "added=http://a.example/hook,removed=http://b.example/hook",
		"RATE_LIMIT_GLOBAL":  "true",
		"DIRECTORY_ALIASES":  "nvim=app-editor",
		"LAUNCH_ENV":         "LANG=C",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "0.0.0.0:7000", cfg.GRPC.Address)
	assert.False(t, cfg.GRPC.Enabled)
	assert.Equal(t, 16, cfg.Handler.CommandBuffer)
	assert.Equal(t, 250*time.Millisecond, cfg.Handler.NotifyTimeout)
	assert.Equal(t, "/var/lib/launcher/apps.yaml.zst", cfg.Store.Path)
	assert.Equal(t, "alice", cfg.Directory.Account)
	assert.Equal(t, "blake2b", cfg.Directory.HashAlgorithm)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.True(t, cfg.RateLimit.Global)
	assert.Equal(t, []string{"LANG=C"}, cfg.Handler.LaunchEnv)

	aliases, err := cfg.Directory.ParseAliases()
	require.NoError(t, err)
	assert.Equal(t, []DirectoryAlias{{BinaryName: "nvim", Target: "app-editor"}}, aliases)

	targets, err := cfg.Webhooks.Parse()
	require.NoError(t, err)
	assert.Equal(t, []WebhookTarget{
		{Category: types.CategoryAdded, URL: "http://a.example/hook"},
		{Category: types.CategoryRemoved, URL: "http://b.example/hook"},
	}, targets)
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("COMMAND_BUFFER", "many")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")

	cfg := LoadOrDefault()
	assert.Equal(t, 256, cfg.Handler.CommandBuffer)
}

func TestWebhookParse(t *testing.T) {
	tests := []struct {
		name    string
		targets []string
		want    int
		wantErr bool
	}{
		{name: "empty", targets: nil, want: 0},
		{name: "blank entries skipped", targets: []string{" ", "modified=http://x/y"}, want: 1},
		{name: "missing url", targets: []string{"added="}, wantErr: true},
		{name: "missing separator", targets: []string{"http://x/y"}, wantErr: true},
		{name: "unknown category", targets: []string{"crashed=http://x/y"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WebhookConfig{Targets: tt.targets}.Parse()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestParseAliases(t *testing.T) {
	got, err := DirectoryConfig{Aliases: []string{" ", " vim = app-editor "}}.ParseAliases()
	require.NoError(t, err)
	assert.Equal(t, []DirectoryAlias{{BinaryName: "vim", Target: "app-editor"}}, got)

	for _, raw := range []string{"vim", "vim=", "=app-editor"} {
		_, err := DirectoryConfig{Aliases: []string{raw}}.ParseAliases()
		assert.Error(t, err, raw)
	}
}
