package config

import (
	"encoding/json"
	"path/filepath"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	Mode               string             `json:"mode,omitempty" yaml:"mode,omitempty" validate:"required,mode"`
	LogConfig          LogConfig          `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	StorageConfig      StorageConfig      `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
	HTTPClientConfig   HTTPClientConfig   `json:"http_client_config,omitempty" yaml:"http_client_config,omitempty"`
	BrowserConfig      BrowserConfig      `json:"browser_config,omitempty" yaml:"browser_config,omitempty"`
	ScannerConfig      ScannerConfig      `json:"scanner_config,omitempty" yaml:"scanner_config,omitempty"`
	NotificationConfig NotificationConfig `json:"notification_config,omitempty" yaml:"notification_config,omitempty"`
	SchedulerConfig    SchedulerConfig    `json:"scheduler_config,omitempty" yaml:"scheduler_config,omitempty"`
	MetricsConfig      MetricsConfig      `json:"metrics_config,omitempty" yaml:"metrics_config,omitempty"`
	Subjects           []SubjectConfig    `json:"subjects" yaml:"subjects" validate:"unique=Name,dive"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Mode:               ModeOnetime,
		LogConfig:          NewDefaultLogConfig(),
		StorageConfig:      NewDefaultStorageConfig(),
		HTTPClientConfig:   NewDefaultHTTPClientConfig(),
		BrowserConfig:      NewDefaultBrowserConfig(),
		ScannerConfig:      NewDefaultScannerConfig(),
		NotificationConfig: NewDefaultNotificationConfig(),
		SchedulerConfig:    NewDefaultSchedulerConfig(),
		MetricsConfig:      NewDefaultMetricsConfig(),
		Subjects:           []SubjectConfig{},
	}
}

// SubjectsByName returns the subjects whose names are in names, in config order.
// An empty names slice returns every subject.
func (c *GlobalConfig) SubjectsByName(names []string) ([]SubjectConfig, error) {
	if len(names) == 0 {
		return c.Subjects, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var selected []SubjectConfig
	for _, s := range c.Subjects {
		if wanted[s.Name] {
			selected = append(selected, s)
			delete(wanted, s.Name)
		}
	}

	for n := range wanted {
		return nil, common.NewValidationError("subject", n, "no subject with this name is configured")
	}
	return selected, nil
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// YAML is used for .yaml/.yml files, JSON otherwise. When no file is found the
// defaults are returned.
func LoadGlobalConfig(providedPath string, logger zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		logger.Warn().Msg("No configuration file found, using defaults")
		return cfg, nil
	}

	fileManager := common.NewFileManager(logger)
	if !fileManager.FileExists(filePath) {
		return nil, common.NewValidationError("config_file", filePath, "config file does not exist")
	}

	data, err := loadConfigFileContent(fileManager, filePath)
	if err != nil {
		return nil, common.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, common.WrapError(err, "failed to parse config content")
	}

	logger.Debug().Str("path", filePath).Int("subjects", len(cfg.Subjects)).Msg("Configuration loaded")
	return cfg, nil
}

func loadConfigFileContent(fileManager *common.FileManager, filePath string) ([]byte, error) {
	opts := common.DefaultFileReadOptions()
	opts.MaxSize = 10 * 1024 * 1024
	return fileManager.ReadFile(filePath, opts)
}

func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	if isYAMLFile(filepath.Ext(filePath)) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return common.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}

func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}
