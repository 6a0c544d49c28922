// Package config provides configuration management for the stocklab tooling.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateCrossField(cfg *Config) error {
	if cfg.MarketData.PreferLocalSource && cfg.MarketData.CSVDirectory == "" {
		return fmt.Errorf("market_data.csv_directory is required when prefer_local_source is set")
	}
	if cfg.MarketData.APIKey != "" && cfg.MarketData.BaseURL == "" {
		return fmt.Errorf("market_data.base_url is required when api_key is set")
	}
	for _, symbol := range cfg.Ingestion.Symbols {
		if strings.TrimSpace(symbol) == "" {
			return fmt.Errorf("ingestion.symbols must not contain empty entries")
		}
	}

	if cfg.IsProduction() {
		if cfg.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, fmt.Sprintf("%s failed on %q", err.Namespace(), err.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}
