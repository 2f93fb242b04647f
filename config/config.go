package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Account   AccountConfig   `mapstructure:"account"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Refresh   RefreshConfig   `mapstructure:"refresh"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Stream    StreamConfig    `mapstructure:"stream"`
}

type AccountConfig struct {
	InitialCash float64 `mapstructure:"initial_cash"`
	Watch       string  `mapstructure:"watch"` // symbol refreshed every cycle
}

type ProvidersConfig struct {
	TWSE  ProviderConfig `mapstructure:"twse"`
	MIS   ProviderConfig `mapstructure:"mis"`
	Yahoo ProviderConfig `mapstructure:"yahoo"`
}

type ProviderConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RefreshConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

type StorageConfig struct {
	Driver   string         `mapstructure:"driver"` // "csv" or "postgres"
	CSV      CSVConfig      `mapstructure:"csv"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type CSVConfig struct {
	Dir string `mapstructure:"dir"`
}

type StreamConfig struct {
	Addr string `mapstructure:"addr"` // empty disables the WebSocket feed
}

// Load loads application configuration using Viper.
// It reads from config.yaml when present and overrides with environment
// variables; every key carries a default so a bare checkout still runs.
func Load() *Config {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	// Support environment variables with dot notation (e.g., PROVIDERS_TWSE_BASE_URL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatalf("failed to read config: %v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("account.initial_cash", 1_000_000)
	v.SetDefault("account.watch", "2330")

	v.SetDefault("providers.twse.base_url", "https://www.twse.com.tw")
	v.SetDefault("providers.twse.timeout", 10*time.Second)
	v.SetDefault("providers.mis.base_url", "https://mis.twse.com.tw")
	v.SetDefault("providers.mis.timeout", 5*time.Second)
	v.SetDefault("providers.yahoo.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("providers.yahoo.timeout", 10*time.Second)

	v.SetDefault("refresh.interval", 5*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.environment", "dev")

	v.SetDefault("storage.driver", "csv")
	v.SetDefault("storage.csv.dir", "data")

	v.SetDefault("stream.addr", "")
}
