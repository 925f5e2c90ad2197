package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/carrierdesk/rates-tracker/constants"
	"github.com/carrierdesk/rates-tracker/internal/common"
	"github.com/carrierdesk/rates-tracker/internal/repository"
	"github.com/carrierdesk/rates-tracker/internal/source"
)

// Extractor is the slice of the sidecar client hydration needs.
type Extractor interface {
	Extract(ctx context.Context, path string, ranges []constants.PageRange) (source.Document, error)
}

// Service runs one-time hydration of the rate store from the configured
// source document.
type Service struct {
	repo      repository.RateRepository
	extractor Extractor
	cfg       common.IngestConfig
	logger    *slog.Logger
}

func NewService(repo repository.RateRepository, extractor Extractor, cfg common.IngestConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, extractor: extractor, cfg: cfg, logger: logger}
}

// Hydrate populates the store unless it already holds data. A flat-file
// source rebuilds the table from scratch; a PDF source merges additively.
// Exhausting a source with zero extractable records is fatal: serving an
// empty table silently is worse than refusing to start.
func (s *Service) Hydrate(ctx context.Context) error {
	runID := uuid.New().String()
	start := time.Now()
	log := s.logger.With("run_id", runID)

	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("check store population: %w", err)
	}
	if count > 0 && s.cfg.FlatPath == "" {
		log.Info("hydrate.skipped", "existing_entries", count)
		return nil
	}

	switch {
	case s.cfg.FlatPath != "":
		if err := s.hydrateFlat(ctx, log); err != nil {
			return err
		}
	case s.cfg.PDFPath != "":
		if err := s.hydratePDF(ctx, log); err != nil {
			return err
		}
	default:
		return common.NewAppError("CONFIG_ERROR", "no rate source configured (set RATES_FLAT_PATH or RATES_PDF_PATH)", common.ErrInvalidInput)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count after hydration: %w", err)
	}
	if total == 0 {
		return common.ErrEmptySource
	}
	log.Info("hydrate.ok", "entries", total, "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

// hydrateFlat rebuilds the whole table from the flat export: parse first,
// then drop and reload, so a malformed file never empties a good store.
func (s *Service) hydrateFlat(ctx context.Context, log *slog.Logger) error {
	f, err := os.Open(s.cfg.FlatPath)
	if err != nil {
		return fmt.Errorf("open flat source: %w", err)
	}
	defer f.Close()

	zones, err := source.ParseFlat(f)
	if err != nil {
		return fmt.Errorf("parse flat source %s: %w", s.cfg.FlatPath, err)
	}
	if err := s.repo.DropAll(ctx); err != nil {
		return fmt.Errorf("drop store before flat rehydration: %w", err)
	}
	merger := NewMerger(s.repo, log)
	for _, z := range zones {
		if err := merger.Merge(ctx, z.AreaZone, z.Services); err != nil {
			return err
		}
	}
	log.Info("hydrate.flat.ok", "path", s.cfg.FlatPath, "zones", len(zones))
	return nil
}

func (s *Service) hydratePDF(ctx context.Context, log *slog.Logger) error {
	if s.extractor == nil {
		return common.NewAppError("CONFIG_ERROR", "PDF source configured but no extractor client", common.ErrInvalidInput)
	}
	doc, err := s.extractor.Extract(ctx, s.cfg.PDFPath, s.cfg.PageRanges)
	if err != nil {
		return fmt.Errorf("extract %s: %w", s.cfg.PDFPath, err)
	}
	walker := NewWalker(NewMerger(s.repo, log), s.cfg.PageRanges, log)
	stats, err := walker.Walk(ctx, doc)
	if err != nil {
		return err
	}
	if stats.Pairs == 0 {
		return fmt.Errorf("pdf %s: %w", s.cfg.PDFPath, common.ErrEmptySource)
	}
	if stats.DroppedWeights > 0 {
		log.Warn("hydrate.pdf.dropped_weights", "count", stats.DroppedWeights)
	}
	log.Info("hydrate.pdf.ok",
		"path", s.cfg.PDFPath,
		"pages", stats.PagesVisited,
		"tables", stats.TablesMerged,
		"pairs", stats.Pairs,
	)
	return nil
}
