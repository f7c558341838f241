package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Scraper  ScraperConfig
	Exchange ExchangeConfig
	Compare  CompareConfig
	Output   OutputConfig
	Cache    CacheConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ScraperConfig holds store scraping configuration
type ScraperConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	RequestDelay time.Duration `mapstructure:"request_delay"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Debug        bool          `mapstructure:"debug"`
}

// ExchangeConfig holds exchange rate source configuration
type ExchangeConfig struct {
	URL          string  `mapstructure:"url"`
	DefaultRate  float64 `mapstructure:"default_rate"`
	SnapshotPath string  `mapstructure:"snapshot_path"`
}

// CompareConfig holds price comparison configuration
type CompareConfig struct {
	FeePercent float64 `mapstructure:"fee_percent"`
}

// OutputConfig holds export location configuration
type OutputConfig struct {
	DataDir string `mapstructure:"data_dir"`
	CSVDir  string `mapstructure:"csv_dir"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricescope/")

	// Environment variable settings
	v.SetEnvPrefix("PRICESCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Scraper defaults
	v.SetDefault("scraper.base_url", "https://www.apple.com")
	v.SetDefault("scraper.request_delay", "1s")
	v.SetDefault("scraper.timeout", "30s")
	v.SetDefault("scraper.debug", false)

	// Exchange rate defaults
	v.SetDefault("exchange.url", "https://accessibility.cathaybk.com.tw/exchange-rate-search.aspx")
	v.SetDefault("exchange.default_rate", 31.5)
	v.SetDefault("exchange.snapshot_path", "src/data/exchange_rate.json")

	// Comparison defaults
	v.SetDefault("compare.fee_percent", 1.5)

	// Output defaults
	v.SetDefault("output.data_dir", "src/data")
	v.SetDefault("output.csv_dir", ".")

	// Cache defaults
	v.SetDefault("cache.ttl", "5m")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Scraper.BaseURL == "" {
		return fmt.Errorf("scraper base URL is required")
	}

	if config.Exchange.DefaultRate <= 0 {
		return fmt.Errorf("default exchange rate must be positive, got: %v", config.Exchange.DefaultRate)
	}

	if config.Compare.FeePercent < 0 {
		return fmt.Errorf("fee percent must not be negative, got: %v", config.Compare.FeePercent)
	}

	if config.Scraper.RequestDelay < 0 {
		return fmt.Errorf("request delay must not be negative, got: %v", config.Scraper.RequestDelay)
	}

	return nil
}
