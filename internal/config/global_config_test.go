package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultGlobalConfig(t *testing.T) {
	cfg := NewDefaultGlobalConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, "info", cfg.LogConfig.LogLevel)
	assert.Equal(t, 10, cfg.FetcherConfig.TimeoutSecs)
	assert.Equal(t, "curl/8.0", cfg.FetcherConfig.PrimaryUserAgent)
	assert.Equal(t, 5, cfg.DiscoveryConfig.SitemapCap)
	assert.Equal(t, 4, cfg.DiscoveryConfig.Fanout)
	assert.False(t, cfg.DiscoveryConfig.SameSiteOnly)
	assert.Equal(t, 2, cfg.RendererConfig.PoolSize)
	assert.Equal(t, "places", cfg.HarvesterConfig.Provider)
	assert.False(t, cfg.HistoryConfig.Enabled)
	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadGlobalConfig_NoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnv, "")

	cfg, err := LoadGlobalConfig("")

	require.NoError(t, err)
	assert.Equal(t, DefaultEngineConcurrency, cfg.EngineConfig.Concurrency)
}

func TestLoadGlobalConfig_NonExistentFile(t *testing.T) {
	cfg, err := LoadGlobalConfig("/nonexistent/config.json")

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config file does not exist")
}

func TestLoadGlobalConfig_JSONFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.json")
	configData := `{
		"log_config": {"log_level": "debug"},
		"discovery_config": {"sitemap_cap": 3, "same_site_only": true},
		"engine_config": {"concurrency": 8}
	}`
	require.NoError(t, os.WriteFile(configFile, []byte(configData), 0644))

	cfg, err := LoadGlobalConfig(configFile)

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogConfig.LogLevel)
	assert.Equal(t, 3, cfg.DiscoveryConfig.SitemapCap)
	assert.True(t, cfg.DiscoveryConfig.SameSiteOnly)
	assert.Equal(t, 8, cfg.EngineConfig.Concurrency)
	// untouched sections keep defaults
	assert.Equal(t, DefaultFetcherAltUserAgent, cfg.FetcherConfig.AltUserAgent)
}

func TestLoadGlobalConfig_YAMLFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	configData := `
renderer_config:
  enabled: false
  pool_size: 1
harvester_config:
  provider: maps
history_config:
  enabled: true
  sqlite_db_path: runs.db
`
	require.NoError(t, os.WriteFile(configFile, []byte(configData), 0644))

	cfg, err := LoadGlobalConfig(configFile)

	require.NoError(t, err)
	assert.False(t, cfg.RendererConfig.Enabled)
	assert.Equal(t, 1, cfg.RendererConfig.PoolSize)
	assert.Equal(t, "maps", cfg.HarvesterConfig.Provider)
	assert.True(t, cfg.HistoryConfig.Enabled)
	assert.Equal(t, "runs.db", cfg.HistoryConfig.SQLiteDBPath)
	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(configFile, []byte("engine_config: [unclosed"), 0644))

	_, err := LoadGlobalConfig(configFile)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal YAML")
}

func TestGetConfigPath_EnvVariable(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("{}"), 0644))
	t.Setenv(ConfigPathEnv, configFile)

	assert.Equal(t, configFile, GetConfigPath(""))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *GlobalConfig)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *GlobalConfig) {},
		},
		{
			name:    "unknown log level",
			mutate:  func(cfg *GlobalConfig) { cfg.LogConfig.LogLevel = "verbose" },
			wantErr: "loglevel",
		},
		{
			name:    "unknown log format",
			mutate:  func(cfg *GlobalConfig) { cfg.LogConfig.LogFormat = "xml" },
			wantErr: "logformat",
		},
		{
			name:    "unknown harvester",
			mutate:  func(cfg *GlobalConfig) { cfg.HarvesterConfig.Provider = "bing" },
			wantErr: "oneof",
		},
		{
			name:    "common path without leading slash",
			mutate:  func(cfg *GlobalConfig) { cfg.DiscoveryConfig.CommonPaths = []string{"contact"} },
			wantErr: "startswith",
		},
		{
			name: "history enabled without database",
			mutate: func(cfg *GlobalConfig) {
				cfg.HistoryConfig.Enabled = true
				cfg.HistoryConfig.SQLiteDBPath = ""
			},
			wantErr: "required_if",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultGlobalConfig()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
