package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	exporthandler "rpscreen/internal/export/handler"
	httpapi "rpscreen/internal/http"
	"rpscreen/internal/importer"
	importhandler "rpscreen/internal/importer/handler"
	importmetrics "rpscreen/internal/importer/metrics"
	"rpscreen/internal/platform/config"
	"rpscreen/internal/platform/httpserver"
	"rpscreen/internal/platform/lock"
	"rpscreen/internal/platform/logger"
	"rpscreen/internal/platform/metrics"
	"rpscreen/internal/platform/redis"
	recordshandler "rpscreen/internal/records/handler"
	recordsservice "rpscreen/internal/records/service"
	recordsstore "rpscreen/internal/records/store"
	"rpscreen/internal/screening"
	screeninghandler "rpscreen/internal/screening/handler"
	screeningmetrics "rpscreen/internal/screening/metrics"
	"rpscreen/internal/screening/similarity"
	matchstore "rpscreen/internal/screening/store"
	"rpscreen/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// main loads configuration, wires the stores and services, and runs the HTTP
// server until SIGINT or SIGTERM.
func main() {
	dotenvErr := config.LoadDotEnv()
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if dotenvErr != nil {
		log.Warn("failed to load .env file", "error", dotenvErr)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	dir := cfg.Storage.DataDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	var locker lock.Locker = lock.Nop{}
	var health httpapi.HealthCheck
	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		locker = rdb.Locker()
		health = rdb.Health
		log.Info("distributed collection locks enabled", "lock_ttl", cfg.Redis.LockTTL)
	} else {
		log.Warn("REDIS_URL not set; collection writes are only serialized within this process")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	storeOpts := []storage.Option{storage.WithLocker(locker), storage.WithLogger(log)}
	seq := storage.OpenSequences(dir, storeOpts...)
	customers := recordsstore.NewCustomerStore(dir, seq, storeOpts...)
	parties := recordsstore.NewRestrictedPartyStore(dir, seq, storeOpts...)
	matches := matchstore.New(dir, storeOpts...)

	records := recordsservice.New(customers, parties, recordsservice.WithLogger(log))

	algorithm, err := similarity.ByName(cfg.Screening.Algorithm)
	if err != nil {
		return err
	}
	screener := screening.New(records, matches,
		screening.WithEngine(screening.NewEngine(screening.WithAlgorithm(algorithm))),
		screening.WithThreshold(cfg.Screening.Threshold),
		screening.WithPreserveHolds(cfg.Screening.PreserveHolds),
		screening.WithMetrics(screeningmetrics.New(reg)),
		screening.WithLogger(log),
	)
	imp := importer.New(records,
		importer.WithMetrics(importmetrics.New(reg)),
		importer.WithLogger(log),
	)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:   log,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Health:   health,
		Modules: []httpapi.Module{
			recordshandler.New(records, log),
			importhandler.New(imp, cfg.MaxUploadBytes, log),
			screeninghandler.New(screener, log),
			exporthandler.New(screener, []string{
				customers.Path(),
				parties.Path(),
				matches.Path(),
				seq.Path(),
			}, log),
		},
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting rpscreen",
			"addr", cfg.Addr,
			"data_dir", filepath.Clean(dir),
			"threshold", cfg.Screening.Threshold,
			"algorithm", cfg.Screening.Algorithm,
			"preserve_holds", cfg.Screening.PreserveHolds,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
