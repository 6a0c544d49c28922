package config

import (
	"os"
	"testing"
)

const (
	validConfigPath     = "testdata/valid_config.yaml"
	expansionConfigPath = "testdata/expansion_config.yaml"
	missingConfigPath   = "testdata/nonexistent_config.yaml"
	expectedNoErrorMsg  = "expected no error, got %v"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.App.Name != "stocklab" {
		t.Errorf("expected app name 'stocklab', got %q", cfg.App.Name)
	}
	if cfg.App.Environment != "development" {
		t.Errorf("expected environment 'development', got %q", cfg.App.Environment)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("expected database port 5432, got %d", cfg.Database.Port)
	}
	if cfg.Backtest.InitialCapital != 1000000 {
		t.Errorf("expected initial capital 1000000, got %f", cfg.Backtest.InitialCapital)
	}
	if len(cfg.Ingestion.Symbols) != 2 {
		t.Errorf("expected 2 symbols, got %d", len(cfg.Ingestion.Symbols))
	}
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Error("expected development environment checks to hold")
	}
}

// TestLoadConfigFileNotFound tests handling of a missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	if _, err := Load(missingConfigPath); err == nil {
		t.Error("expected error for missing config file")
	}
}

// TestLoadConfigEnvExpansion tests ${VAR} expansion in the YAML file
func TestLoadConfigEnvExpansion(t *testing.T) {
	os.Setenv("TEST_DB_PASSWORD", "expanded_secret_value")
	os.Setenv("TEST_API_KEY", "expanded_api_key")
	defer os.Unsetenv("TEST_DB_PASSWORD")
	defer os.Unsetenv("TEST_API_KEY")

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Database.Password != "expanded_secret_value" {
		t.Errorf("expected expanded password, got %q", cfg.Database.Password)
	}
	if cfg.MarketData.APIKey != "expanded_api_key" {
		t.Errorf("expected expanded API key, got %q", cfg.MarketData.APIKey)
	}
}

// TestLoadWithDefaultsMissingFile tests that defaults apply without a file
func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(missingConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Name != "stocklab" {
		t.Errorf("expected default app name, got %q", cfg.App.Name)
	}
	if cfg.Backtest.InitialCapital != 1000000 {
		t.Errorf("expected default initial capital 1000000, got %f", cfg.Backtest.InitialCapital)
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("expected default metrics port 9090, got %d", cfg.Metrics.Port)
	}
}

// TestLoadWithDefaultsFileOverrides tests that file values override defaults
func TestLoadWithDefaultsFileOverrides(t *testing.T) {
	cfg, err := LoadWithDefaults(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.LogLevel != "debug" {
		t.Errorf("expected file log level 'debug' to override default, got %q", cfg.App.LogLevel)
	}
	if cfg.Backtest.Workers != 4 {
		t.Errorf("expected workers 4 from file, got %d", cfg.Backtest.Workers)
	}
}

// TestValidateValidConfig tests validation of a fully-populated config
func TestValidateValidConfig(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

// TestValidateDefaultsOnlyConfig tests that a file-less development setup
// passes validation, since both binaries validate at startup
func TestValidateDefaultsOnlyConfig(t *testing.T) {
	cfg, err := LoadWithDefaults(missingConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("expected defaults-only config to validate, got %v", err)
	}
}

// TestValidateRejectsBadValues tests individual validation failures
func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"Bad environment", func(c *Config) { c.App.Environment = "invalid" }},
		{"Bad log level", func(c *Config) { c.App.LogLevel = "shouty" }},
		{"Bad port", func(c *Config) { c.Database.Port = 70000 }},
		{"Bad ssl mode", func(c *Config) { c.Database.SSLMode = "maybe" }},
		{"Zero capital", func(c *Config) { c.Backtest.InitialCapital = 0 }},
		{"Blank symbol", func(c *Config) { c.Ingestion.Symbols = []string{"600519", "  "} }},
		{"Local source without directory", func(c *Config) {
			c.MarketData.PreferLocalSource = true
			c.MarketData.CSVDirectory = ""
		}},
		{"API key without base URL", func(c *Config) { c.MarketData.BaseURL = "" }},
		{"Production without SSL", func(c *Config) { c.App.Environment = "production" }},
		{"Production without DB password", func(c *Config) {
			c.App.Environment = "production"
			c.Database.SSLMode = "require"
			c.Database.Password = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(validConfigPath)
			if err != nil {
				t.Fatalf(expectedNoErrorMsg, err)
			}
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
