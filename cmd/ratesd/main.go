package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/carrierdesk/rates-tracker/internal/common"
	"github.com/carrierdesk/rates-tracker/internal/export"
	"github.com/carrierdesk/rates-tracker/internal/ingest"
	"github.com/carrierdesk/rates-tracker/internal/lookup"
	"github.com/carrierdesk/rates-tracker/internal/repository"
	"github.com/carrierdesk/rates-tracker/internal/server"
	"github.com/carrierdesk/rates-tracker/internal/source"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("opening rate store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("closing rate store", "error", err)
		}
	}()

	repo, err := repository.NewRateRepository(ctx, db, logger)
	if err != nil {
		logger.Error("initializing rate repository", "error", err)
		os.Exit(1)
	}

	var extractor ingest.Extractor
	if cfg.Extractor.URL != "" {
		extractor = source.NewExtractorClient(cfg.Extractor.URL, cfg.Extractor.Timeout, cfg.Extractor.MaxRetries, logger)
	}

	// Hydration is fatal on failure: the service must never come up and
	// silently serve an empty rate table.
	if err := ingest.NewService(repo, extractor, cfg.Ingest, logger).Hydrate(ctx); err != nil {
		logger.Error("hydrating rate store", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg.Server.HTTPAddr, server.Deps{
		Lookup:   lookup.NewService(repo, logger),
		Zones:    repo,
		Exporter: export.NewService(repo, logger),
	}, logger)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("stopped")
}
