package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/carrierdesk/rates-tracker/constants"
	"github.com/carrierdesk/rates-tracker/internal/normalize"
	"github.com/carrierdesk/rates-tracker/internal/source"
	"github.com/carrierdesk/rates-tracker/internal/tabular"
)

// WalkStats aggregates what one document walk produced.
type WalkStats struct {
	PagesVisited   int
	PagesSkipped   int
	TablesMerged   int
	Pairs          int
	DroppedWeights int
}

// Walker drives table reconstruction over a document's pages and hands
// records to the merger one table at a time, keeping memory bounded and
// letting an interrupted ingestion resume safely on retry.
type Walker struct {
	merger *Merger
	ranges []constants.PageRange
	logger *slog.Logger
}

func NewWalker(merger *Merger, ranges []constants.PageRange, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	if len(ranges) == 0 {
		ranges = constants.DefaultPageRanges
	}
	return &Walker{merger: merger, ranges: ranges, logger: logger}
}

// Walk ingests every rate-table page of the document. Pages outside the
// configured ranges, and pages whose text yields no zone context, are
// skipped. The zone label of a "rates to" page is read from the page's
// first table before any data table is processed.
func (w *Walker) Walk(ctx context.Context, doc source.Document) (WalkStats, error) {
	var stats WalkStats

	for _, page := range doc.Pages() {
		if !constants.InRanges(page.Number(), w.ranges) {
			continue
		}
		label, hasTo, ok := normalize.HeaderZone(page.Text())
		if !ok {
			stats.PagesSkipped++
			w.logger.Debug("ingest.page.no_zone_context", "page", page.Number())
			continue
		}
		layout := tabular.LayoutFor(hasTo)
		tables := page.Tables()

		areaZone := label
		if hasTo && len(tables) > 0 {
			if cellLabel, found := tabular.ZoneLabel(tables[0], layout); found {
				areaZone = cellLabel
			}
		}

		stats.PagesVisited++
		pagePairs := 0
		for _, t := range tables {
			services, tstats := tabular.Reconstruct(t, layout, w.logger)
			stats.DroppedWeights += tstats.DroppedWeights
			if len(services) == 0 {
				continue
			}
			if err := w.merger.Merge(ctx, areaZone, services); err != nil {
				return stats, fmt.Errorf("merge page %d: %w", page.Number(), err)
			}
			stats.TablesMerged++
			stats.Pairs += tstats.Pairs
			pagePairs += tstats.Pairs
		}
		w.logger.Info("ingest.page.ok",
			"page", page.Number(),
			"area_zone", areaZone,
			"has_to", hasTo,
			"pairs", pagePairs,
		)
	}
	return stats, nil
}
