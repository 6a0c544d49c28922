// Package config provides configuration management for the stocklab tooling.
package config

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	MarketData MarketDataConfig `mapstructure:"market_data" validate:"required"`
	Backtest   BacktestConfig   `mapstructure:"backtest" validate:"required"`
	Ingestion  IngestionConfig  `mapstructure:"ingestion" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// MarketDataConfig represents the daily-bar provider configuration
type MarketDataConfig struct {
	BaseURL           string  `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey            string  `mapstructure:"api_key"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimitPerSec   float64 `mapstructure:"rate_limit_per_sec" validate:"required,gt=0"`
	CacheTTLSeconds   int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CSVDirectory      string  `mapstructure:"csv_directory"`
	PreferLocalSource bool    `mapstructure:"prefer_local_source"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	InitialCapital float64 `mapstructure:"initial_capital" validate:"required,gt=0"`
	Workers        int     `mapstructure:"workers" validate:"gte=0"`
	OutputPath     string  `mapstructure:"output_path" validate:"required"`
}

// IngestionConfig represents scheduled bar ingestion configuration
type IngestionConfig struct {
	Symbols      []string `mapstructure:"symbols"`
	DailySync    string   `mapstructure:"daily_sync" validate:"required"`
	LookbackDays int      `mapstructure:"lookback_days" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
