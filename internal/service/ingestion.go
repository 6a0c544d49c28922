package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stocklab/internal/logger"
	"github.com/yourusername/stocklab/internal/marketdata"
	"github.com/yourusername/stocklab/internal/metrics"
	"github.com/yourusername/stocklab/internal/models"
	"github.com/yourusername/stocklab/internal/repository"
)

// IngestionService pulls daily bars from market data sources and
// persists them through the bar repository
type IngestionService struct {
	sources   []marketdata.Source
	barRepo   repository.BarRepository
	logger    *logrus.Logger
	runLog    *logger.RunLogger
	batchSize int
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(sources []marketdata.Source, barRepo repository.BarRepository, log *logrus.Logger, batchSize int) *IngestionService {
	if batchSize <= 0 {
		batchSize = 500
	}

	return &IngestionService{
		sources:   sources,
		barRepo:   barRepo,
		logger:    log,
		runLog:    logger.NewRunLogger(log),
		batchSize: batchSize,
	}
}

// SyncSymbol fetches daily bars for one symbol and upserts them.
// Returns the number of bars stored.
func (s *IngestionService) SyncSymbol(ctx context.Context, sourceName, symbol string, startDate, endDate time.Time) (int, error) {
	startTime := time.Now()

	source, err := s.findSource(sourceName)
	if err != nil {
		metrics.RecordIngestion(sourceName, 0, time.Since(startTime).Seconds(), err)
		return 0, err
	}

	bars, err := source.FetchDailyBars(ctx, symbol, startDate, endDate)
	if err != nil {
		metrics.RecordIngestion(sourceName, 0, time.Since(startTime).Seconds(), err)
		return 0, fmt.Errorf("failed to fetch bars for %s: %w", symbol, err)
	}

	valid := make([]models.Bar, 0, len(bars))
	dropped := 0
	for _, bar := range bars {
		if err := validateBar(bar); err != nil {
			s.logger.WithFields(logrus.Fields{
				"symbol": symbol,
				"date":   bar.Date.Format("2006-01-02"),
				"error":  err,
			}).Warn("Dropping invalid bar")
			dropped++
			continue
		}
		valid = append(valid, bar)
	}

	stored := 0
	for i := 0; i < len(valid); i += s.batchSize {
		end := i + s.batchSize
		if end > len(valid) {
			end = len(valid)
		}
		n, err := s.barRepo.UpsertBatch(ctx, symbol, valid[i:end])
		stored += n
		if err != nil {
			metrics.RecordIngestion(sourceName, stored, time.Since(startTime).Seconds(), err)
			return stored, fmt.Errorf("failed to store bars for %s: %w", symbol, err)
		}
	}

	metrics.RecordIngestion(sourceName, stored, time.Since(startTime).Seconds(), nil)
	s.runLog.LogIngestion(sourceName, symbol, stored, dropped,
		float64(time.Since(startTime).Microseconds())/1000)

	return stored, nil
}

// SyncSymbols syncs multiple symbols, continuing past per-symbol failures.
// Returns the total number of bars stored and the first error encountered.
func (s *IngestionService) SyncSymbols(ctx context.Context, sourceName string, symbols []string, startDate, endDate time.Time) (int, error) {
	total := 0
	var firstErr error

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			break
		}

		stored, err := s.SyncSymbol(ctx, sourceName, symbol, startDate, endDate)
		total += stored
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"symbol": symbol,
				"error":  err,
			}).Error("Symbol sync failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return total, firstErr
}

// SyncIncremental fetches bars newer than the latest stored date for each
// symbol. Symbols with no stored data fall back to lookbackDays of history.
func (s *IngestionService) SyncIncremental(ctx context.Context, sourceName string, symbols []string, lookbackDays int) (int, error) {
	if lookbackDays <= 0 {
		lookbackDays = 365
	}

	endDate := time.Now().UTC().Truncate(24 * time.Hour)
	total := 0
	var firstErr error

	for _, symbol := range symbols {
		startDate := endDate.AddDate(0, 0, -lookbackDays)

		latest, err := s.barRepo.LatestDate(ctx, symbol)
		switch {
		case err == nil:
			startDate = latest.AddDate(0, 0, 1)
		case errors.Is(err, models.ErrNotFound):
			// No history yet, use the lookback window
		default:
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		if startDate.After(endDate) {
			continue
		}

		stored, err := s.SyncSymbol(ctx, sourceName, symbol, startDate, endDate)
		total += stored
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return total, firstErr
}

func (s *IngestionService) findSource(name string) (marketdata.Source, error) {
	for _, src := range s.sources {
		if src.Name() == name {
			if !src.IsEnabled() {
				return nil, fmt.Errorf("data source is disabled: %s", name)
			}
			return src, nil
		}
	}
	return nil, fmt.Errorf("data source not found: %s", name)
}

// validateBar rejects bars that cannot represent a real trading day
func validateBar(bar models.Bar) error {
	if bar.Date.IsZero() {
		return fmt.Errorf("missing date")
	}
	if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
		return fmt.Errorf("non-positive price")
	}
	if bar.High < bar.Low {
		return fmt.Errorf("high %.4f below low %.4f", bar.High, bar.Low)
	}
	if bar.Close > bar.High || bar.Close < bar.Low {
		return fmt.Errorf("close %.4f outside high/low range", bar.Close)
	}
	if bar.Open > bar.High || bar.Open < bar.Low {
		return fmt.Errorf("open %.4f outside high/low range", bar.Open)
	}
	if bar.Volume < 0 {
		return fmt.Errorf("negative volume")
	}
	return nil
}
