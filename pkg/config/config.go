// Package config loads gitstats settings from a YAML file and GITSTATS_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/gitstats/pkg/aggregate"
	"github.com/Sumatoshi-tech/gitstats/pkg/observability"
	"github.com/Sumatoshi-tech/gitstats/pkg/report"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	envPrefix  = "GITSTATS"
	configName = "gitstats"
)

// Config holds all gitstats settings.
type Config struct {
	Report    ReportConfig    `mapstructure:"report"`
	Collect   CollectConfig   `mapstructure:"collect"`
	Filter    FilterConfig    `mapstructure:"filter"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ReportConfig selects how a report is sorted and printed.
type ReportConfig struct {
	Format string `mapstructure:"format"  validate:"required"`
	SortBy string `mapstructure:"sort_by" validate:"required"`
	Top    int    `mapstructure:"top"     validate:"gte=0"`
}

// CollectConfig tunes commit extraction.
type CollectConfig struct {
	Workers      int    `mapstructure:"workers"       validate:"gte=0,lte=1024"`
	Backend      string `mapstructure:"backend"       validate:"oneof=cli libgit2"`
	GitBinary    string `mapstructure:"git_binary"    validate:"required"`
	Fetch        bool   `mapstructure:"fetch"`
	CacheEntries int    `mapstructure:"cache_entries" validate:"gte=0"`
}

// FilterConfig selects commits. Times accept a duration back from now
// ("720h"), RFC 3339 or YYYY-MM-DD.
type FilterConfig struct {
	Since         string `mapstructure:"since"`
	Until         string `mapstructure:"until"`
	Author        string `mapstructure:"author"`
	ExcludeAuthor string `mapstructure:"exclude_author"`
	Branch        string `mapstructure:"branch"`
	ExcludeMerges bool   `mapstructure:"exclude_merges"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"required"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig configures OpenTelemetry export and the metrics endpoint.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint" validate:"omitempty,hostname_port"`
	OTLPHeaders  string `mapstructure:"otlp_headers"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
	MetricsAddr  string `mapstructure:"metrics_addr"  validate:"omitempty,hostname_port"`
}

// LoadConfig reads configPath, or gitstats.yaml from the working directory,
// the user config directory or /etc/gitstats when configPath is empty. A
// missing default file is not an error. GITSTATS_<SECTION>_<KEY> environment
// variables override the file.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")

		if dir, err := os.UserConfigDir(); err == nil {
			viperCfg.AddConfigPath(filepath.Join(dir, configName))
		}

		viperCfg.AddConfigPath("/etc/gitstats")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := config.Validate()
	if validateErr != nil {
		return nil, validateErr
	}

	return &config, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Report: ReportConfig{
			Format: DefaultReportFormat,
			SortBy: DefaultReportSortBy,
			Top:    DefaultReportTop,
		},
		Collect: CollectConfig{
			Workers:      DefaultCollectWorkers,
			Backend:      DefaultCollectBackend,
			GitBinary:    DefaultCollectGitBinary,
			CacheEntries: DefaultCollectCacheEntries,
		},
		Logging: LoggingConfig{
			Level: DefaultLoggingLevel,
			JSON:  DefaultLoggingJSON,
		},
	}
}

// setDefaults registers every key so that environment variables bind even
// without a config file.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("report.format", DefaultReportFormat)
	viperCfg.SetDefault("report.sort_by", DefaultReportSortBy)
	viperCfg.SetDefault("report.top", DefaultReportTop)

	viperCfg.SetDefault("collect.workers", DefaultCollectWorkers)
	viperCfg.SetDefault("collect.backend", DefaultCollectBackend)
	viperCfg.SetDefault("collect.git_binary", DefaultCollectGitBinary)
	viperCfg.SetDefault("collect.fetch", false)
	viperCfg.SetDefault("collect.cache_entries", DefaultCollectCacheEntries)

	viperCfg.SetDefault("filter.since", "")
	viperCfg.SetDefault("filter.until", "")
	viperCfg.SetDefault("filter.author", "")
	viperCfg.SetDefault("filter.exclude_author", "")
	viperCfg.SetDefault("filter.branch", "")
	viperCfg.SetDefault("filter.exclude_merges", false)

	viperCfg.SetDefault("logging.level", DefaultLoggingLevel)
	viperCfg.SetDefault("logging.json", DefaultLoggingJSON)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.metrics_addr", "")
}

// Validate checks struct tags first, then the values that need parsing.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	_, err = report.ParseFormat(c.Report.Format)
	if err != nil {
		return fmt.Errorf("%w: report.format: %w", ErrInvalidConfig, err)
	}

	_, err = aggregate.ParseSortStatsBy(c.Report.SortBy)
	if err != nil {
		return fmt.Errorf("%w: report.sort_by: %w", ErrInvalidConfig, err)
	}

	_, err = observability.ParseLogLevel(c.Logging.Level)
	if err != nil {
		return fmt.Errorf("%w: logging.level: %w", ErrInvalidConfig, err)
	}

	_, err = c.Filter.ToFilter()
	if err != nil {
		return fmt.Errorf("%w: filter: %w", ErrInvalidConfig, err)
	}

	return nil
}
