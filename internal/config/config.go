package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Pricing  PricingConfig  `yaml:"pricing" mapstructure:"pricing"`
	Runs     RunsConfig     `yaml:"runs" mapstructure:"runs"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the on-disk data tree: per-vertical master CSVs at the
// root plus the tier subdirectories holding partitioned products.
type DataConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// PipelineConfig configures the generate/merge/partition pipeline.
type PipelineConfig struct {
	BackfillDays int `yaml:"backfill_days" mapstructure:"backfill_days"`
	Workers      int `yaml:"workers" mapstructure:"workers"`
}

// PricingConfig holds the per-tier product pricing tables.
type PricingConfig struct {
	Tiers map[string]TierPricing `yaml:"tiers" mapstructure:"tiers"`
}

// TierPricing prices one partition tier: a base price in whole USD, an
// increment per 10k rows, and a hard cap.
type TierPricing struct {
	Base   int `yaml:"base" mapstructure:"base"`
	Per10K int `yaml:"per_10k" mapstructure:"per_10k"`
	Cap    int `yaml:"cap" mapstructure:"cap"`
}

// RunsConfig configures the run-history database.
type RunsConfig struct {
	DatabasePath string `yaml:"database_path" mapstructure:"database_path"`
}

// ServerConfig configures the catalog/download server.
type ServerConfig struct {
	Port          int  `yaml:"port" mapstructure:"port"`
	UpdateOnStart bool `yaml:"update_on_start" mapstructure:"update_on_start"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DATAMART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.dir", "data")
	v.SetDefault("pipeline.backfill_days", 365)
	v.SetDefault("pipeline.workers", 5)
	v.SetDefault("runs.database_path", "datamart_runs.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.update_on_start", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("pricing.tiers.monthly.base", 99)
	v.SetDefault("pricing.tiers.monthly.per_10k", 5)
	v.SetDefault("pricing.tiers.monthly.cap", 299)
	v.SetDefault("pricing.tiers.quarterly.base", 249)
	v.SetDefault("pricing.tiers.quarterly.per_10k", 10)
	v.SetDefault("pricing.tiers.quarterly.cap", 699)
	v.SetDefault("pricing.tiers.yearly.base", 899)
	v.SetDefault("pricing.tiers.yearly.per_10k", 20)
	v.SetDefault("pricing.tiers.yearly.cap", 1999)
	v.SetDefault("pricing.tiers.bundle.base", 2999)
	v.SetDefault("pricing.tiers.bundle.per_10k", 50)
	v.SetDefault("pricing.tiers.bundle.cap", 4999)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
