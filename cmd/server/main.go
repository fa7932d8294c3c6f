package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"SheetServe/internal/api"
	"SheetServe/internal/config"
	"SheetServe/internal/db"
	"SheetServe/internal/email"
	"SheetServe/internal/logger"
	"SheetServe/internal/metrics"
	"SheetServe/internal/sheets"
	"SheetServe/internal/source"
	"SheetServe/internal/store"
	"SheetServe/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
	}

	// ------------------------------------------------
	// Config
	// ------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// ------------------------------------------------
	// Logger
	// ------------------------------------------------
	log, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
	log.Info("application shutdown complete")
}

func run(cfg *config.Config, log *zap.Logger) error {
	// ------------------------------------------------
	// Root Context + Shutdown
	// ------------------------------------------------
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ------------------------------------------------
	// Workbook Store
	// ------------------------------------------------
	var st store.WorkbookStore
	switch cfg.StoreDriver {
	case "postgres":
		pg, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pg.Close()

		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		pg.Keep = cfg.KeepRevisions
		st = pg
	default:
		st = store.NewMemory()
	}
	log.Info("workbook store ready", zap.String("driver", cfg.StoreDriver))

	// ------------------------------------------------
	// Metrics
	// ------------------------------------------------
	metrics.Init()

	// ------------------------------------------------
	// File Sources
	// ------------------------------------------------
	fetcher := source.NewFetcher(source.FetcherOptions{
		Timeout:      cfg.FetchTimeout,
		Retries:      cfg.FetchRetries,
		MaxRedirects: cfg.FetchMaxRedirects,
		MaxBytes:     cfg.FetchMaxBytes,
		Limiter:      rate.NewLimiter(rate.Limit(cfg.FetchRateLimit), max(int(cfg.FetchRateLimit), 1)),
		Logger:       log,
	})
	resolver := &source.Resolver{
		Remote:   cfg.RemoteFiles,
		Dir:      cfg.DataDir,
		Fetcher:  fetcher,
		MaxBytes: cfg.FetchMaxBytes,
	}

	// ------------------------------------------------
	// Upload Notifications
	// ------------------------------------------------
	var (
		wg       sync.WaitGroup
		notifier sheets.Notifier
		queue    *worker.Queue
	)
	// Workers outlive the signal context so queued notices can drain.
	poolCtx, cancelPool := context.WithCancel(context.Background())
	defer cancelPool()

	if cfg.NotificationsEnabled() {
		queue = worker.NewQueue(cfg.NotifyQueue, log)
		sender := email.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom, cfg.NotifyTo)
		limiter := rate.NewLimiter(rate.Limit(cfg.NotifyRate), max(cfg.NotifyRate, 1))

		worker.StartPool(poolCtx, &wg, cfg.NotifyWorkers, queue.Events(), sender, limiter, log, cfg.RetryAttempts)
		notifier = queue
	}

	// ------------------------------------------------
	// Sheets Service
	// ------------------------------------------------
	svc := sheets.New(st, resolver, notifier, log, sheets.Config{
		DefaultFilename: cfg.DefaultFilename,
		FixedSchemas:    cfg.FixedSchemas,
		MaxCSVRows:      cfg.MaxCSVRows,
	})
	if err := svc.Seed(ctx); err != nil {
		return err
	}

	// ------------------------------------------------
	// Servers
	// ------------------------------------------------
	apiHandler := &api.Handler{
		Sheets:        svc,
		Log:           log,
		UploadMaxSize: cfg.UploadMaxSize,
		UploadLimiter: rate.NewLimiter(rate.Limit(cfg.UploadRateLimit), max(int(cfg.UploadRateLimit), 1)),
	}
	apiServer := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           api.NewRouter(apiHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("api server started", zap.String("port", cfg.APIPort))
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("metrics server started", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	// ------------------------------------------------
	// Wait for shutdown
	// ------------------------------------------------
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down services...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("api shutdown: %w", err))
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
		}

		if queue != nil {
			queue.Close()
		}
		drained := make(chan struct{})
		go func() {
			wg.Wait()
			close(drained)
		}()
		select {
		case <-drained:
		case <-shutdownCtx.Done():
			log.Warn("notification workers did not drain in time")
			cancelPool()
			<-drained
		}

		return errors.Join(errs...)
	})

	return g.Wait()
}
