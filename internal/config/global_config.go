package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleister1102/contacthound/internal/common/errorwrapper"
	"gopkg.in/yaml.v3"
)

const maxConfigFileSize = 10 * 1024 * 1024

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	LogConfig             LogConfig             `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	FetcherConfig         FetcherConfig         `json:"fetcher_config,omitempty" yaml:"fetcher_config,omitempty"`
	DiscoveryConfig       DiscoveryConfig       `json:"discovery_config,omitempty" yaml:"discovery_config,omitempty"`
	RendererConfig        RendererConfig        `json:"renderer_config,omitempty" yaml:"renderer_config,omitempty"`
	EngineConfig          EngineConfig          `json:"engine_config,omitempty" yaml:"engine_config,omitempty"`
	HarvesterConfig       HarvesterConfig       `json:"harvester_config,omitempty" yaml:"harvester_config,omitempty"`
	OutputConfig          OutputConfig          `json:"output_config,omitempty" yaml:"output_config,omitempty"`
	HistoryConfig         HistoryConfig         `json:"history_config,omitempty" yaml:"history_config,omitempty"`
	ResourceLimiterConfig ResourceLimiterConfig `json:"resource_limiter_config,omitempty" yaml:"resource_limiter_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		LogConfig:             NewDefaultLogConfig(),
		FetcherConfig:         NewDefaultFetcherConfig(),
		DiscoveryConfig:       NewDefaultDiscoveryConfig(),
		RendererConfig:        NewDefaultRendererConfig(),
		EngineConfig:          NewDefaultEngineConfig(),
		HarvesterConfig:       NewDefaultHarvesterConfig(),
		OutputConfig:          NewDefaultOutputConfig(),
		HistoryConfig:         NewDefaultHistoryConfig(),
		ResourceLimiterConfig: NewDefaultResourceLimiterConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// Sections absent from the file keep their defaults. YAML is used for .yaml/.yml,
// JSON otherwise.
func LoadGlobalConfig(providedPath string) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		if providedPath != "" {
			return nil, errorwrapper.NewValidationError("config_file", providedPath, "config file does not exist")
		}
		return cfg, nil
	}

	data, err := readConfigFile(filePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse config content")
	}

	return cfg, nil
}

func readConfigFile(filePath string) ([]byte, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigFileSize {
		return nil, errorwrapper.NewValidationError("config_file", filePath, "config file is too large")
	}
	return os.ReadFile(filePath)
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	if isYAMLFile(filepath.Ext(filePath)) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errorwrapper.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}

func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}
