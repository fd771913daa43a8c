package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/config"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/infra"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/repository"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/router"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/scan"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/service"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Goroutine worker pool for async jobs. The only job type today is
	// audit re-log: a change record whose append failed after a stock write
	// is retried from Redis until it lands or hits the DLQ.
	changeRepo := repository.NewChangeRecordRepository(db)
	workerHandlers := &worker.WorkerHandlers{
		Relog: worker.NewRelogWorker(changeRepo),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)

	// Scan registry — the resolver is the product service, the camera is the
	// headless stub (server deployments have no capture device; clients use
	// manual entry or POST still frames to /v1/scan/detect).
	productRepo := repository.NewProductRepository(db)
	productSvc := service.NewProductService(productRepo, rdb)
	registry := scan.NewRegistry(
		scan.NewZXingDecoder(),
		scan.UnavailableCamera{},
		productSvc,
		cfg.ScanPollInterval(),
		cfg.ScanSessionTTL(),
	)
	registry.StartJanitor(ctx)

	r := router.New(cfg, db, rdb, registry)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("warehouse backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
