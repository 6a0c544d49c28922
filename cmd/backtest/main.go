package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/stocklab/internal/backtest"
	"github.com/yourusername/stocklab/internal/config"
	"github.com/yourusername/stocklab/internal/database"
	"github.com/yourusername/stocklab/internal/logger"
	"github.com/yourusername/stocklab/internal/marketdata"
	"github.com/yourusername/stocklab/internal/models"
	"github.com/yourusername/stocklab/internal/repository"
	"github.com/yourusername/stocklab/internal/strategy"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	log        *logrus.Logger
	cfg        *config.Config

	symbol     string
	csvFile    string
	startDate  string
	endDate    string
	capital    float64
	paramFlags []string
	outputJSON string
	outputCSV  string
	save       bool

	strategyList []string
	gridFlags    []string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&symbol, "symbol", "", "Stock symbol to backtest")
	rootCmd.PersistentFlags().StringVar(&csvFile, "csv", "", "Load bars from a CSV file instead of the database")
	rootCmd.PersistentFlags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&endDate, "end", "", "End date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().Float64Var(&capital, "capital", 0, "Initial capital (default from config)")

	runCmd.Flags().StringArrayVarP(&paramFlags, "param", "p", nil, "Strategy parameter override, e.g. -p short_window=5")
	runCmd.Flags().StringVar(&outputJSON, "output-json", "", "Write the full result to a JSON file")
	runCmd.Flags().StringVar(&outputCSV, "output-csv", "", "Write the equity curve to a CSV file")
	runCmd.Flags().BoolVar(&save, "save", false, "Persist the result to the database")

	compareCmd.Flags().StringSliceVar(&strategyList, "strategies", nil, "Strategies to compare (default: all registered)")

	optimizeCmd.Flags().StringArrayVarP(&gridFlags, "grid", "g", nil, "Grid axis, e.g. -g short_window=5,10,15")

	rootCmd.AddCommand(runCmd, compareCmd, optimizeCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run trading strategy backtests over daily bars",
	Long:  `Runs signal strategies over historical daily bars, simulates trades and reports performance statistics.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		log = logger.NewLogger(cfg.App.LogLevel)
		if capital == 0 {
			capital = cfg.Backtest.InitialCapital
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run <strategy>",
	Short: "Run a single strategy backtest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		strategyID := args[0]

		bars, err := loadBars(ctx)
		if err != nil {
			return err
		}

		params, err := parseParams(paramFlags)
		if err != nil {
			return err
		}

		engine, err := backtest.NewEngine(strategy.DefaultRegistry(), log, backtest.WithWorkers(cfg.Backtest.Workers))
		if err != nil {
			return err
		}

		result, err := engine.Run(strategyID, bars, params, capital)
		if err != nil {
			return err
		}

		fmt.Print(backtest.GenerateConsoleReport(result))

		if outputJSON != "" {
			if err := backtest.ExportToJSON(result, outputJSON); err != nil {
				return fmt.Errorf("failed to write JSON output: %w", err)
			}
		}
		if outputCSV != "" {
			if err := backtest.GenerateCSVExport(result, outputCSV); err != nil {
				return fmt.Errorf("failed to write CSV output: %w", err)
			}
		}
		if save {
			if err := saveResult(ctx, result, bars); err != nil {
				return fmt.Errorf("failed to save result: %w", err)
			}
			log.Info("Result saved to database")
		}

		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare strategies over the same price series",
	RunE: func(cmd *cobra.Command, args []string) error {
		bars, err := loadBars(cmd.Context())
		if err != nil {
			return err
		}

		registry := strategy.DefaultRegistry()
		ids := strategyList
		if len(ids) == 0 {
			ids = registry.List()
		}

		engine, err := backtest.NewEngine(registry, log, backtest.WithWorkers(cfg.Backtest.Workers))
		if err != nil {
			return err
		}

		comparison, err := engine.Compare(ids, bars, nil, capital)
		if err != nil {
			return err
		}

		fmt.Print(backtest.GenerateComparisonReport(comparison))
		return nil
	},
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize <strategy>",
	Short: "Grid-search strategy parameters for best total return",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bars, err := loadBars(cmd.Context())
		if err != nil {
			return err
		}

		grid, err := parseGrid(gridFlags)
		if err != nil {
			return err
		}

		engine, err := backtest.NewEngine(strategy.DefaultRegistry(), log, backtest.WithWorkers(cfg.Backtest.Workers))
		if err != nil {
			return err
		}

		opt, err := engine.Optimize(args[0], bars, grid, capital)
		if err != nil {
			return err
		}

		fmt.Printf("Strategy:       %s\n", opt.StrategyID)
		fmt.Printf("Combinations:   %d\n", opt.Combinations)
		fmt.Printf("Best params:    %v\n", opt.BestParams)
		fmt.Printf("Best return:    %.2f%%\n", opt.BestTotalReturn)
		fmt.Printf("Sharpe ratio:   %.4f\n", opt.BestMetrics.SharpeRatio)
		fmt.Printf("Max drawdown:   %.2f%%\n", opt.BestMetrics.MaxDrawdown)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("backtest %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadBars reads the price series either from a CSV file or from the database
func loadBars(ctx context.Context) ([]models.Bar, error) {
	start, end, err := parseDateRange()
	if err != nil {
		return nil, err
	}

	if csvFile != "" {
		f, err := os.Open(csvFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", csvFile, err)
		}
		defer f.Close()

		bars, err := marketdata.ReadBars(f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", csvFile, err)
		}
		return filterRange(bars, start, end), nil
	}

	if symbol == "" {
		return nil, fmt.Errorf("either --symbol or --csv is required")
	}

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return nil, err
	}

	bars, err := repos.Bars.GetRange(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load bars for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars stored for %s in the requested range", symbol)
	}
	return bars, nil
}

func parseDateRange() (time.Time, time.Time, error) {
	start := time.Time{}
	end := time.Now().UTC()

	if startDate != "" {
		t, err := time.ParseInLocation("2006-01-02", startDate, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --start date %q: %w", startDate, err)
		}
		start = t
	}
	if endDate != "" {
		t, err := time.ParseInLocation("2006-01-02", endDate, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end date %q: %w", endDate, err)
		}
		end = t
	}
	if !start.IsZero() && end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("--end must not be before --start")
	}
	return start, end, nil
}

func filterRange(bars []models.Bar, start, end time.Time) []models.Bar {
	filtered := make([]models.Bar, 0, len(bars))
	for _, bar := range bars {
		if !start.IsZero() && bar.Date.Before(start) {
			continue
		}
		if bar.Date.After(end) {
			continue
		}
		filtered = append(filtered, bar)
	}
	return filtered
}

// parseParams converts "key=value" flags into strategy parameters
func parseParams(flags []string) (strategy.Params, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	params := make(strategy.Params, len(flags))
	for _, f := range flags {
		key, raw, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", f)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for parameter %q: %w", key, err)
		}
		params[strings.TrimSpace(key)] = v
	}
	return params, nil
}

// parseGrid converts "key=v1,v2,v3" flags into an ordered parameter grid
func parseGrid(flags []string) (backtest.Grid, error) {
	if len(flags) == 0 {
		return nil, fmt.Errorf("at least one --grid axis is required")
	}
	grid := make(backtest.Grid, 0, len(flags))
	for _, f := range flags {
		key, raw, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid grid axis %q, expected key=v1,v2", f)
		}
		parts := strings.Split(raw, ",")
		values := make([]float64, 0, len(parts))
		for _, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid value in grid axis %q: %w", key, err)
			}
			values = append(values, v)
		}
		grid = append(grid, backtest.GridAxis{Name: strings.TrimSpace(key), Values: values})
	}
	return grid, nil
}

// saveResult persists a completed run to the database
func saveResult(ctx context.Context, result *backtest.Result, bars []models.Bar) error {
	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return err
	}

	paramsJSON, err := json.Marshal(result.Params)
	if err != nil {
		return err
	}
	metricsJSON, err := json.Marshal(result.Metrics)
	if err != nil {
		return err
	}

	record := &models.BacktestResultRecord{
		ID:             uuid.New(),
		StrategyID:     result.StrategyID,
		Symbol:         symbol,
		RunDate:        time.Now().UTC(),
		StartDate:      bars[0].Date,
		EndDate:        bars[len(bars)-1].Date,
		InitialCapital: result.Metrics.InitialCapital,
		FinalCapital:   result.Metrics.FinalCapital,
		TotalReturn:    result.Metrics.TotalReturn,
		SharpeRatio:    result.Metrics.SharpeRatio,
		MaxDrawdown:    result.Metrics.MaxDrawdown,
		WinRate:        result.Metrics.WinRate,
		TradeCount:     result.Metrics.TradeCount,
		Params:         paramsJSON,
		Metrics:        metricsJSON,
		CreatedAt:      time.Now().UTC(),
	}

	return repos.Results.SaveResult(ctx, record)
}
