package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/prodcfg/internal/check"
	"github.com/mesh-intelligence/prodcfg/internal/telemetry"
	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
)

// Config is the content of config.yaml.
type Config struct {
	Backend    string                  `mapstructure:"backend" yaml:"backend"`
	DataDir    string                  `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	Validation ValidationConfig        `mapstructure:"validation" yaml:"validation"`
	Delta      DeltaConfig             `mapstructure:"delta" yaml:"delta"`
	Check      CheckConfig             `mapstructure:"check" yaml:"check"`
	Tracing    telemetry.TracingConfig `mapstructure:"tracing" yaml:"tracing"`
}

// ValidationConfig holds the project validation switches.
type ValidationConfig struct {
	ReferencedGenerationValidOnValidFrom bool   `mapstructure:"referenced_generation_valid_on_valid_from" yaml:"referenced_generation_valid_on_valid_from"`
	NullPresentation                     string `mapstructure:"null_presentation" yaml:"null_presentation"`
}

// DeltaConfig holds delta fix options.
type DeltaConfig struct {
	DefaultLocale string `mapstructure:"default_locale" yaml:"default_locale"`
}

// CheckConfig holds check service options.
type CheckConfig struct {
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// defaultConfig returns the values used for keys missing from config.yaml.
func defaultConfig() Config {
	settings := types.DefaultProjectSettings()
	return Config{
		Backend:    types.BackendSQLite,
		Validation: ValidationConfig{NullPresentation: settings.NullPresentation},
		Delta:      DeltaConfig{DefaultLocale: settings.DefaultLocale},
		Check:      CheckConfig{Concurrency: check.DefaultConcurrency},
		Tracing:    telemetry.TracingConfig{Exporter: "stdout"},
	}
}

// Settings returns the project settings the config selects.
func (c Config) Settings() types.ProjectSettings {
	return types.ProjectSettings{
		ReferencedGenerationValidOnValidFrom: c.Validation.ReferencedGenerationValidOnValidFrom,
		NullPresentation:                     c.Validation.NullPresentation,
		DefaultLocale:                        c.Delta.DefaultLocale,
	}
}

// loadConfig reads config.yaml from configDir. A missing file yields the
// defaults.
func loadConfig(configDir string) (Config, error) {
	def := defaultConfig()
	v := viper.New()
	v.SetDefault("backend", def.Backend)
	v.SetDefault("validation.referenced_generation_valid_on_valid_from", false)
	v.SetDefault("validation.null_presentation", def.Validation.NullPresentation)
	v.SetDefault("delta.default_locale", def.Delta.DefaultLocale)
	v.SetDefault("check.concurrency", def.Check.Concurrency)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", def.Tracing.Exporter)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// writeConfigIfMissing writes cfg to config.yaml unless the file exists.
// It reports whether it wrote the file.
func writeConfigIfMissing(configDir string, cfg Config) (bool, error) {
	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
