package main

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/stocklab/internal/config"
	"github.com/yourusername/stocklab/internal/database"
	"github.com/yourusername/stocklab/internal/logger"
	"github.com/yourusername/stocklab/internal/marketdata"
	"github.com/yourusername/stocklab/internal/metrics"
	"github.com/yourusername/stocklab/internal/repository"
	"github.com/yourusername/stocklab/internal/scheduler"
	"github.com/yourusername/stocklab/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile   string
	awsRegion    string
	awsSecret    string
	symbolFlags  []string
	sourceFlag   string
	startDate    string
	endDate      string
	lookbackDays int

	log *logrus.Logger
	cfg *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&awsRegion, "aws-region", "", "AWS region for secrets (production)")
	rootCmd.PersistentFlags().StringVar(&awsSecret, "aws-secret", "", "AWS Secrets Manager secret name")
	rootCmd.PersistentFlags().StringSliceVar(&symbolFlags, "symbols", nil, "Symbols to sync (default from config)")
	rootCmd.PersistentFlags().StringVar(&sourceFlag, "source", "", "Data source name (default: remote, or CSV when prefer_local_source is set)")

	syncCmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD), defaults to lookback window")
	syncCmd.Flags().StringVar(&endDate, "end", "", "End date (YYYY-MM-DD), defaults to today")
	syncCmd.Flags().IntVar(&lookbackDays, "lookback", 0, "Lookback days when no history exists (default from config)")

	rootCmd.AddCommand(syncCmd, serveCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Synchronize daily bar data into the local store",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if cfg.IsProduction() && awsRegion != "" && awsSecret != "" {
			if err := config.LoadSecretsFromAWS(cfg, awsRegion, awsSecret); err != nil {
				return fmt.Errorf("failed to load secrets: %w", err)
			}
		}
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		log = logger.NewLogger(cfg.App.LogLevel)
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a one-shot sync of the configured symbols",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		svc, cleanup, err := buildIngestion(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		symbols, err := resolveSymbols()
		if err != nil {
			return err
		}
		lookback := lookbackDays
		if lookback == 0 {
			lookback = cfg.Ingestion.LookbackDays
		}

		if startDate != "" || endDate != "" {
			start, end, err := parseDateRange()
			if err != nil {
				return err
			}
			stored, err := svc.SyncSymbols(ctx, sourceName(), symbols, start, end)
			log.WithField("bars_stored", stored).Info("Sync complete")
			return err
		}

		stored, err := svc.SyncIncremental(ctx, sourceName(), symbols, lookback)
		log.WithField("bars_stored", stored).Info("Incremental sync complete")
		return err
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daily sync scheduler until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		svc, cleanup, err := buildIngestion(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		symbols, err := resolveSymbols()
		if err != nil {
			return err
		}

		sched := scheduler.NewScheduler(svc, log)
		if err := sched.ScheduleDailySync(cfg.Ingestion.DailySync, sourceName(), symbols, cfg.Ingestion.LookbackDays); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()

		if cfg.Metrics.Enabled {
			go serveMetrics()
		}

		log.WithField("next_run", sched.NextRun().Format(time.RFC3339)).Info("Scheduler running, press Ctrl+C to stop")
		<-ctx.Done()
		log.Info("Shutting down")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ingest %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildIngestion wires the data sources, database and ingestion service
func buildIngestion(ctx context.Context) (*service.IngestionService, func(), error) {
	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	sources, closeSources := buildSources()
	svc := service.NewIngestionService(sources, repos.Bars, log, 0)

	cleanup := func() {
		closeSources()
		db.Close()
	}
	return svc, cleanup, nil
}

// buildSources constructs the configured market data sources
func buildSources() ([]marketdata.Source, func()) {
	md := cfg.MarketData

	httpCfg := marketdata.DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(md.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = md.MaxRetries
	httpCfg.RateLimit = md.RateLimitPerSec

	httpClient := marketdata.NewRateLimitedHTTPClient(httpCfg, stdlog.New(io.Discard, "", 0))
	remote := marketdata.NewRemoteSource(httpClient, md.BaseURL, md.APIKey, md.APIKey != "", nil)
	ttl := time.Duration(md.CacheTTLSeconds) * time.Second

	sources := []marketdata.Source{marketdata.NewCachedSource(remote, ttl)}
	if md.CSVDirectory != "" {
		sources = append(sources, marketdata.NewCSVSource(md.CSVDirectory))
	}

	return sources, func() { httpClient.Close() }
}

// resolveSymbols picks the symbol list from flags or configuration
func resolveSymbols() ([]string, error) {
	symbols := symbolFlags
	if len(symbols) == 0 {
		symbols = cfg.Ingestion.Symbols
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols to sync: set --symbols or ingestion.symbols in the config")
	}
	return symbols, nil
}

// sourceName resolves which source a sync should pull from
func sourceName() string {
	if sourceFlag != "" {
		return sourceFlag
	}
	if cfg.MarketData.PreferLocalSource {
		return "local_csv"
	}
	return "remote_kline"
}

func parseDateRange() (time.Time, time.Time, error) {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -cfg.Ingestion.LookbackDays)

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
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("--end must not be before --start")
	}
	return start, end, nil
}

// serveMetrics exposes the Prometheus registry for scraping
func serveMetrics() {
	addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())

	log.WithField("addr", addr).Info("Metrics endpoint listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Error("Metrics endpoint failed")
	}
}
