package database

import (
	"context"
	"fmt"

	"github.com/yourusername/stocklab/internal/config"
)

// Schema DDL for the tables the repositories depend on. Bars are keyed by
// (symbol, trade_date) so re-ingesting a range is an idempotent upsert.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS daily_bars (
	symbol      TEXT NOT NULL,
	trade_date  DATE NOT NULL,
	open        DOUBLE PRECISION NOT NULL,
	high        DOUBLE PRECISION NOT NULL,
	low         DOUBLE PRECISION NOT NULL,
	close       DOUBLE PRECISION NOT NULL,
	volume      DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (symbol, trade_date)
);

CREATE TABLE IF NOT EXISTS backtest_results (
	id              UUID PRIMARY KEY,
	strategy_id     TEXT NOT NULL,
	symbol          TEXT NOT NULL,
	run_date        TIMESTAMPTZ NOT NULL,
	start_date      DATE NOT NULL,
	end_date        DATE NOT NULL,
	initial_capital DOUBLE PRECISION NOT NULL,
	final_capital   DOUBLE PRECISION NOT NULL,
	total_return    DOUBLE PRECISION NOT NULL,
	sharpe_ratio    DOUBLE PRECISION NOT NULL,
	max_drawdown    DOUBLE PRECISION NOT NULL,
	win_rate        DOUBLE PRECISION NOT NULL,
	trade_count     INTEGER NOT NULL,
	params          JSONB,
	metrics         JSONB,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_backtest_results_strategy
	ON backtest_results (strategy_id, run_date DESC);
`

// Initialize creates a database connection pool and ensures the schema
// exists.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}
