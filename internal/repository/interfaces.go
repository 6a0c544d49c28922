// Package repository provides PostgreSQL persistence for daily bars and
// backtest results.
package repository

import (
	"context"
	"time"

	"github.com/yourusername/stocklab/internal/models"
)

// BarRepository stores and retrieves daily OHLCV bars per symbol.
type BarRepository interface {
	// UpsertBatch inserts bars, replacing existing rows for the same
	// (symbol, date). Ingestion re-runs are idempotent.
	UpsertBatch(ctx context.Context, symbol string, bars []models.Bar) (int, error)

	// GetRange returns the bars for symbol within [start, end], ordered by
	// date ascending.
	GetRange(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error)

	// LatestDate returns the most recent bar date stored for symbol, or
	// models.ErrNotFound when no bars exist.
	LatestDate(ctx context.Context, symbol string) (time.Time, error)
}

// ResultRepository stores and retrieves backtest result records.
type ResultRepository interface {
	SaveResult(ctx context.Context, record *models.BacktestResultRecord) error
	GetByStrategyID(ctx context.Context, strategyID string, limit int) ([]*models.BacktestResultRecord, error)
}
