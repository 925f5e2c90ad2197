// ratesingest hydrates the rate store from a source document and exits.
// Useful for seeding a database out of band or re-running ingestion after
// a rate sheet update without restarting the daemon.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/carrierdesk/rates-tracker/internal/common"
	"github.com/carrierdesk/rates-tracker/internal/ingest"
	"github.com/carrierdesk/rates-tracker/internal/repository"
	"github.com/carrierdesk/rates-tracker/internal/source"
)

func main() {
	var (
		flatPath = flag.String("flat", "", "flat-format rate source (overrides RATES_FLAT_PATH)")
		pdfPath  = flag.String("pdf", "", "PDF rate source (overrides RATES_PDF_PATH)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *flatPath != "" {
		cfg.Ingest.FlatPath = *flatPath
	}
	if *pdfPath != "" {
		cfg.Ingest.PDFPath = *pdfPath
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
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
	defer db.Close()

	repo, err := repository.NewRateRepository(ctx, db, logger)
	if err != nil {
		logger.Error("initializing rate repository", "error", err)
		os.Exit(1)
	}

	var extractor ingest.Extractor
	if cfg.Extractor.URL != "" {
		extractor = source.NewExtractorClient(cfg.Extractor.URL, cfg.Extractor.Timeout, cfg.Extractor.MaxRetries, logger)
	}

	if err := ingest.NewService(repo, extractor, cfg.Ingest, logger).Hydrate(ctx); err != nil {
		logger.Error("hydration failed", "error", err)
		os.Exit(1)
	}
}
