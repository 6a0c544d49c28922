package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/stocklab/internal/models"
)

const remoteSourceName = "remote_kline"

// RemoteSource implements Source against a JSON daily-kline HTTP API
type RemoteSource struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *log.Logger
}

// klineRow represents a single daily bar as returned by the provider.
// Prices arrive as strings so they are parsed through decimal before
// conversion to float, avoiding double rounding surprises.
type klineRow struct {
	TradeDate string `json:"trade_date"` // YYYYMMDD
	Open      string `json:"open"`
	High      string `json:"high"`
	Low       string `json:"low"`
	Close     string `json:"close"`
	Volume    string `json:"vol"`
}

type klineResponse struct {
	Code    int        `json:"code"`
	Message string     `json:"msg"`
	Items   []klineRow `json:"items"`
}

// NewRemoteSource creates a new remote kline API client
func NewRemoteSource(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *log.Logger) *RemoteSource {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &RemoteSource{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// Name returns the name of the data source
func (s *RemoteSource) Name() string {
	return remoteSourceName
}

// IsEnabled returns whether this data source is currently enabled
func (s *RemoteSource) IsEnabled() bool {
	return s.enabled
}

// FetchDailyBars retrieves daily bars for a symbol within the date range
func (s *RemoteSource) FetchDailyBars(ctx context.Context, symbol string, startDate, endDate time.Time) ([]models.Bar, error) {
	if !s.enabled {
		return nil, NewSourceError(remoteSourceName, ErrCodeNetworkError, sourceDisabledMsg, nil)
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("start_date", startDate.Format("20060102"))
	q.Set("end_date", endDate.Format("20060102"))
	reqURL := fmt.Sprintf("%s/daily?%s", s.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, NewSourceError(remoteSourceName, ErrCodeNetworkError, "failed to create request", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewSourceError(remoteSourceName, ErrCodeNetworkError, "failed to fetch daily bars", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, NewSourceError(remoteSourceName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewSourceError(remoteSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewSourceError(remoteSourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var payload klineResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewSourceError(remoteSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}

	if payload.Code != 0 {
		return nil, NewSourceError(remoteSourceName, ErrCodeServerError, fmt.Sprintf("provider error %d: %s", payload.Code, payload.Message), nil)
	}

	bars := make([]models.Bar, 0, len(payload.Items))
	for _, row := range payload.Items {
		bar, err := s.convertRow(row)
		if err != nil {
			s.logger.Printf("Skipping malformed bar for %s on %s: %v", symbol, row.TradeDate, err)
			continue
		}
		bars = append(bars, bar)
	}

	// Providers commonly return newest-first; downstream code expects oldest-first.
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	return bars, nil
}

// convertRow parses a provider row into a Bar
func (s *RemoteSource) convertRow(row klineRow) (models.Bar, error) {
	date, err := time.ParseInLocation("20060102", row.TradeDate, time.UTC)
	if err != nil {
		return models.Bar{}, fmt.Errorf("invalid trade_date %q: %w", row.TradeDate, err)
	}

	bar := models.Bar{Date: date}
	fields := []struct {
		name string
		raw  string
		dest *float64
	}{
		{"open", row.Open, &bar.Open},
		{"high", row.High, &bar.High},
		{"low", row.Low, &bar.Low},
		{"close", row.Close, &bar.Close},
		{"vol", row.Volume, &bar.Volume},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return models.Bar{}, fmt.Errorf("invalid %s %q: %w", f.name, f.raw, err)
		}
		v, _ := d.Float64()
		*f.dest = v
	}

	return bar, nil
}
