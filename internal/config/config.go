package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	// Postgres connection string for the directory store. Required; a run
	// never starts without it.
	DatabaseURL string `mapstructure:"database_url"`

	CategoriesFile string `mapstructure:"categories_file"`
	PublishersFile string `mapstructure:"publishers_file"`
	DataDir        string `mapstructure:"data_dir"`

	BaseURL    string `mapstructure:"base_url"`
	ZoneCode   string `mapstructure:"zone_code"`
	ScrapeMode string `mapstructure:"scrape_mode"`
	Headless   bool   `mapstructure:"headless"`
	ChromePath string `mapstructure:"chrome_path"`
	UserAgent  string `mapstructure:"user_agent"`

	MaxPages         int `mapstructure:"max_pages"`
	LimitPerCategory int `mapstructure:"limit_per_category"`

	SettleDelayMs     int64         `mapstructure:"settle_delay_ms"`
	RequestDelayMs    int64         `mapstructure:"request_delay_ms"`
	ImportDelayMs     int64         `mapstructure:"import_delay_ms"`
	NavTimeoutSeconds int64         `mapstructure:"nav_timeout_seconds"`
	SettleDelay       time.Duration `mapstructure:"-"`
	RequestDelay      time.Duration `mapstructure:"-"`
	ImportDelay       time.Duration `mapstructure:"-"`
	NavTimeout        time.Duration `mapstructure:"-"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "mibarrio-listing-harvester")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	// Defaults exist for every key so AutomaticEnv can resolve them during
	// Unmarshal; the empty ones are env-supplied.
	v.SetDefault("database_url", "")
	v.SetDefault("chrome_path", "")
	v.SetDefault("categories_file", "./configs/categories.yaml")
	v.SetDefault("publishers_file", "")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("base_url", "https://1122.com.uy")
	v.SetDefault("zone_code", "Z01000")
	v.SetDefault("scrape_mode", "browser")
	v.SetDefault("headless", true)
	v.SetDefault("user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	v.SetDefault("max_pages", 10)
	v.SetDefault("limit_per_category", 10)
	v.SetDefault("settle_delay_ms", 1000)
	v.SetDefault("request_delay_ms", 800)
	v.SetDefault("import_delay_ms", 100)
	v.SetDefault("nav_timeout_seconds", 30)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/seen.db")
	v.SetDefault("storage_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("missing DATABASE_URL (directory store credentials are required)")
	}

	switch cfg.ScrapeMode {
	case "browser", "http":
	default:
		return nil, fmt.Errorf("invalid scrape_mode %q (expected browser or http)", cfg.ScrapeMode)
	}

	if cfg.MaxPages <= 0 {
		return nil, fmt.Errorf("invalid max_pages (must be positive)")
	}
	if cfg.SettleDelayMs < 0 || cfg.RequestDelayMs < 0 || cfg.ImportDelayMs < 0 {
		return nil, fmt.Errorf("delays must not be negative")
	}
	if cfg.NavTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid nav_timeout_seconds (must be positive)")
	}
	cfg.SettleDelay = time.Duration(cfg.SettleDelayMs) * time.Millisecond
	cfg.RequestDelay = time.Duration(cfg.RequestDelayMs) * time.Millisecond
	cfg.ImportDelay = time.Duration(cfg.ImportDelayMs) * time.Millisecond
	cfg.NavTimeout = time.Duration(cfg.NavTimeoutSeconds) * time.Second

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}
