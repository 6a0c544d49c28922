package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/stocklab/internal/models"
)

// Source defines the interface for fetching daily bar data from a provider
type Source interface {
	// FetchDailyBars retrieves daily bars for a symbol within the date range, oldest first
	FetchDailyBars(ctx context.Context, symbol string, startDate, endDate time.Time) ([]models.Bar, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// SourceError represents errors from data source operations
type SourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e SourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e SourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// Error constructors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrBarsNotFound         = errors.New("bars not found")
	ErrInvalidData          = errors.New("invalid data format")
)

const sourceDisabledMsg = "data source is disabled"

// NewSourceError creates a new data source error
func NewSourceError(source, code, message string, err error) SourceError {
	return SourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
