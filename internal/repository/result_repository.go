package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/stocklab/internal/database"
	"github.com/yourusername/stocklab/internal/models"
)

const errScanBacktestResult = "failed to scan backtest result: %w"

// PostgresResultRepository implements ResultRepository for PostgreSQL
type PostgresResultRepository struct {
	db *database.DB
}

// NewPostgresResultRepository creates a new backtest result repository
func NewPostgresResultRepository(db *database.DB) ResultRepository {
	return &PostgresResultRepository{db: db}
}

// SaveResult inserts a backtest result record
func (r *PostgresResultRepository) SaveResult(ctx context.Context, record *models.BacktestResultRecord) error {
	query := `
		INSERT INTO backtest_results (
			id, strategy_id, symbol, run_date, start_date, end_date,
			initial_capital, final_capital, total_return, sharpe_ratio,
			max_drawdown, win_rate, trade_count, params, metrics, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		record.ID, record.StrategyID, record.Symbol, record.RunDate, record.StartDate, record.EndDate,
		record.InitialCapital, record.FinalCapital, record.TotalReturn, record.SharpeRatio,
		record.MaxDrawdown, record.WinRate, record.TradeCount, record.Params, record.Metrics, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save backtest result: %w", err)
	}
	return nil
}

// GetByStrategyID retrieves recent backtest results for a strategy
func (r *PostgresResultRepository) GetByStrategyID(ctx context.Context, strategyID string, limit int) ([]*models.BacktestResultRecord, error) {
	query := `
		SELECT id, strategy_id, symbol, run_date, start_date, end_date,
			initial_capital, final_capital, total_return, sharpe_ratio,
			max_drawdown, win_rate, trade_count, params, metrics, created_at
		FROM backtest_results
		WHERE strategy_id = $1
		ORDER BY run_date DESC
		LIMIT $2
	`
	rows, err := r.db.GetPool().Query(ctx, query, strategyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest results: %w", err)
	}
	defer rows.Close()

	var records []*models.BacktestResultRecord
	for rows.Next() {
		record := &models.BacktestResultRecord{}
		if err := rows.Scan(
			&record.ID, &record.StrategyID, &record.Symbol, &record.RunDate, &record.StartDate, &record.EndDate,
			&record.InitialCapital, &record.FinalCapital, &record.TotalReturn, &record.SharpeRatio,
			&record.MaxDrawdown, &record.WinRate, &record.TradeCount, &record.Params, &record.Metrics, &record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf(errScanBacktestResult, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
