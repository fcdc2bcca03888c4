// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/premium-dashboard/pkg/constants"
	"github.com/iwvelando/premium-dashboard/pkg/validation"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. PREMIUM_DASHBOARD_DATA_PATH.
const EnvPrefix = "PREMIUM_DASHBOARD"

// Configuration holds all configuration for premium-dashboard.
type Configuration struct {
	Data     DataConfig     `yaml:"data,omitempty"`
	Analysis AnalysisConfig `yaml:"analysis,omitempty"`
	Trend    TrendConfig    `yaml:"trend,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
}

// DataConfig locates the period records.
type DataConfig struct {
	Source string `yaml:"source,omitempty"` // json, sqlite
	Path   string `yaml:"path,omitempty"`
}

// AnalysisConfig holds the default analysis request.
type AnalysisConfig struct {
	Period           string   `yaml:"period,omitempty"`
	ComparisonPeriod string   `yaml:"comparisonPeriod,omitempty"`
	Mode             string   `yaml:"mode,omitempty"` // cumulative, pop
	BusinessTypes    []string `yaml:"businessTypes,omitempty"`
}

// TrendConfig tunes trend computation.
type TrendConfig struct {
	Concurrency int `yaml:"concurrency,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Environment variables prefixed with EnvPrefix
// override file values.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.source", constants.SourceJSON)
	v.SetDefault("data.path", constants.DefaultDataFile)
	v.SetDefault("analysis.period", "")
	v.SetDefault("analysis.comparisonPeriod", "")
	v.SetDefault("analysis.mode", constants.ModeCumulative)
	v.SetDefault("trend.concurrency", constants.DefaultTrendConcurrency)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", "")
}

// Validate rejects values no run could use.
func (c *Configuration) Validate() error {
	if err := validation.ValidateSource(c.Data.Source); err != nil {
		return err
	}
	if err := validation.ValidateMode(c.Analysis.Mode); err != nil {
		return err
	}
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			return err
		}
	}
	if c.Trend.Concurrency < 0 {
		return fmt.Errorf("trend concurrency must not be negative, got %d", c.Trend.Concurrency)
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	warnings := validation.ValidateSelection(validation.SelectionConfig{
		Period:           c.Analysis.Period,
		ComparisonPeriod: c.Analysis.ComparisonPeriod,
		BusinessTypes:    c.Analysis.BusinessTypes,
	})
	if c.Data.Path == "" {
		warnings = append(warnings, "No data path configured")
	}
	return warnings
}
