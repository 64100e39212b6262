package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/visa-movement/bulletin-cli/internal/bulletin"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic  AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Fetch      FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Scrape     ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Forecast   ForecastConfig  `yaml:"forecast" mapstructure:"forecast"`
	Categories CategoryConfig  `yaml:"categories" mapstructure:"categories"`
	JSONBin    JSONBinConfig   `yaml:"jsonbin" mapstructure:"jsonbin"`
	DOL        DOLConfig       `yaml:"dol" mapstructure:"dol"`
	Server     ServerConfig    `yaml:"server" mapstructure:"server"`
	Log        LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the ingest ledger backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings for the relay server.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// FetchConfig configures the HTTP document fetcher.
type FetchConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// ScrapeConfig configures the bulletin backfill.
type ScrapeConfig struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	StartFY   int    `yaml:"start_fy" mapstructure:"start_fy"`
	EndFY     int    `yaml:"end_fy" mapstructure:"end_fy"`
	HTMLDir   string `yaml:"html_dir" mapstructure:"html_dir"`
	RecordDir string `yaml:"record_dir" mapstructure:"record_dir"`
}

// ForecastConfig configures the projection engine.
type ForecastConfig struct {
	HorizonMonths int    `yaml:"horizon_months" mapstructure:"horizon_months"`
	MinPoints     int    `yaml:"min_points" mapstructure:"min_points"`
	OutputDir     string `yaml:"output_dir" mapstructure:"output_dir"`
}

// CategoryConfig configures visa category label mapping.
type CategoryConfig struct {
	MappingFile string `yaml:"mapping_file" mapstructure:"mapping_file"`
}

// JSONBinConfig holds jsonbin.io credentials and bin IDs for publishing.
type JSONBinConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	BulletinBinID string `yaml:"bulletin_bin_id" mapstructure:"bulletin_bin_id"`
	DOLBinID      string `yaml:"dol_bin_id" mapstructure:"dol_bin_id"`
}

// DOLConfig configures the DOL processing-times scrape.
type DOLConfig struct {
	URL       string `yaml:"url" mapstructure:"url"`
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// ServerConfig configures the relay server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("BULLETIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "bulletin.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 1)
	v.SetDefault("scrape.base_url", bulletin.DefaultBaseURL)
	v.SetDefault("scrape.start_fy", 2016)
	v.SetDefault("scrape.end_fy", 2026)
	v.SetDefault("scrape.html_dir", "data/html")
	v.SetDefault("scrape.record_dir", "data/records")
	v.SetDefault("forecast.horizon_months", 36)
	v.SetDefault("forecast.min_points", 24)
	v.SetDefault("forecast.output_dir", "data/forecasts")
	v.SetDefault("jsonbin.base_url", "https://api.jsonbin.io")
	v.SetDefault("dol.url", "https://flag.dol.gov/processingtimes")
	v.SetDefault("dol.output_dir", "data/dol")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1024)

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

// Validate checks that the fields required for the given command are set.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "scrape", "update":
		if c.Scrape.BaseURL == "" {
			problems = append(problems, "scrape.base_url is required")
		}
		if c.Scrape.HTMLDir == "" {
			problems = append(problems, "scrape.html_dir is required")
		}
		if c.Scrape.RecordDir == "" {
			problems = append(problems, "scrape.record_dir is required")
		}
		if c.Scrape.StartFY > c.Scrape.EndFY {
			problems = append(problems, "scrape.start_fy must not exceed scrape.end_fy")
		}
	case "forecast":
		if c.Scrape.RecordDir == "" {
			problems = append(problems, "scrape.record_dir is required")
		}
		if c.Forecast.HorizonMonths <= 0 {
			problems = append(problems, "forecast.horizon_months must be > 0")
		}
		if c.Forecast.MinPoints < 2 {
			problems = append(problems, "forecast.min_points must be >= 2")
		}
		if c.Forecast.OutputDir == "" {
			problems = append(problems, "forecast.output_dir is required")
		}
	case "publish":
		if c.JSONBin.Key == "" {
			problems = append(problems, "jsonbin.key is required")
		}
		if c.JSONBin.BulletinBinID == "" {
			problems = append(problems, "jsonbin.bulletin_bin_id is required")
		}
	case "dol":
		if c.DOL.URL == "" {
			problems = append(problems, "dol.url is required")
		}
		if c.DOL.OutputDir == "" {
			problems = append(problems, "dol.output_dir is required")
		}
	case "serve":
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required")
		}
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
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
