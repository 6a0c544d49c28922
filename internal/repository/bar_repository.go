package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/stocklab/internal/database"
	"github.com/yourusername/stocklab/internal/models"
)

const errScanBar = "failed to scan bar: %w"

// PostgresBarRepository implements BarRepository for PostgreSQL
type PostgresBarRepository struct {
	db *database.DB
}

// NewPostgresBarRepository creates a new bar repository
func NewPostgresBarRepository(db *database.DB) BarRepository {
	return &PostgresBarRepository{db: db}
}

// UpsertBatch inserts bars for a symbol, replacing rows with the same date
func (r *PostgresBarRepository) UpsertBatch(ctx context.Context, symbol string, bars []models.Bar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO daily_bars (symbol, trade_date, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, trade_date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume
	`

	batch := &pgx.Batch{}
	for _, bar := range bars {
		batch.Queue(query, symbol, bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	stored := 0
	for range bars {
		if _, err := results.Exec(); err != nil {
			return stored, fmt.Errorf("failed to upsert bar: %w", err)
		}
		stored++
	}
	return stored, nil
}

// GetRange returns bars for a symbol within a date range, oldest first
func (r *PostgresBarRepository) GetRange(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error) {
	query := `
		SELECT trade_date, open, high, low, close, volume
		FROM daily_bars
		WHERE symbol = $1 AND trade_date >= $2 AND trade_date <= $3
		ORDER BY trade_date ASC
	`
	rows, err := r.db.GetPool().Query(ctx, query, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query bars: %w", err)
	}
	defer rows.Close()

	var bars []models.Bar
	for rows.Next() {
		var bar models.Bar
		if err := rows.Scan(&bar.Date, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, fmt.Errorf(errScanBar, err)
		}
		bars = append(bars, bar)
	}
	return bars, rows.Err()
}

// LatestDate returns the most recent stored bar date for a symbol
func (r *PostgresBarRepository) LatestDate(ctx context.Context, symbol string) (time.Time, error) {
	query := `SELECT MAX(trade_date) FROM daily_bars WHERE symbol = $1`
	var latest *time.Time
	if err := r.db.GetPool().QueryRow(ctx, query, symbol).Scan(&latest); err != nil {
		return time.Time{}, fmt.Errorf("failed to query latest bar date: %w", err)
	}
	if latest == nil {
		return time.Time{}, models.ErrNotFound
	}
	return *latest, nil
}
