package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sgguerra29/tpmScraper/internal/adapters/gprofiler"
	app "github.com/sgguerra29/tpmScraper/internal/app"
	"github.com/sgguerra29/tpmScraper/internal/config"
	"github.com/sgguerra29/tpmScraper/pkg/logger"
	"github.com/sgguerra29/tpmScraper/pkg/metrics"
)

// Metrics server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	// A local .env is optional; absence is not an error.
	_ = godotenv.Load()

	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	manager := metrics.Default()

	// Expose /metrics for the duration of the run when configured.
	if cfg.MetricsAddr != "" {
		srv := startMetricsServer(ctx, cfg.MetricsAddr, manager, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), readTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	enricher := gprofiler.NewClient(
		gprofiler.WithBaseURL(cfg.EnrichmentURL),
		gprofiler.WithTimeout(time.Duration(cfg.RequestTimeoutSec)*time.Second),
	)

	pipeline := app.New(
		app.WithConfig(cfg),
		app.WithLogger(log),
		app.WithMetrics(manager),
		app.WithEnricher(enricher),
	)

	if err := pipeline.Run(ctx); err != nil {
		log.Error(ctx, "pipeline run failed", logger.Error(err))
		return 1
	}
	return 0
}

// startMetricsServer serves the manager's registry on addr until the
// context is cancelled or main returns.
func startMetricsServer(ctx context.Context, addr string, manager *metrics.Manager, log logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", manager.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting metrics server", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(ctx, "metrics server failed", logger.Error(err))
		}
	}()
	return srv
}
