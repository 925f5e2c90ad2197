package tabular

import (
	"log/slog"
	"strings"

	"github.com/carrierdesk/rates-tracker/constants"
	"github.com/carrierdesk/rates-tracker/internal/entity"
	"github.com/carrierdesk/rates-tracker/internal/normalize"
)

// serviceMarkers are the glyphs that distinguish a service-name header cell
// from descriptive headers ("Weight", zone captions, footnote text).
const serviceMarkers = "®@"

// Stats records what reconstruction kept and what it skipped, so lossy
// edge cases (a row publishing more weights than prices) are observable
// instead of silently swallowed.
type Stats struct {
	ServiceColumns int
	DataRows       int
	Pairs          int
	SkippedRows    int
	DroppedWeights int
}

// serviceColumn binds a header column index to its canonical service.
type serviceColumn struct {
	col int
	id  constants.ServiceID
}

// Reconstruct recovers (service, weight, price) records from one extracted
// table. Tables without a recognizable service header (legends, commitment
// time grids) contribute nothing. The returned services aggregate every
// successful weight/price pairing per service column.
func Reconstruct(t Table, layout Layout, logger *slog.Logger) ([]entity.Service, Stats) {
	if logger == nil {
		logger = slog.Default()
	}
	var stats Stats

	cols := serviceColumns(t, layout)
	stats.ServiceColumns = len(cols)
	if len(cols) == 0 {
		return nil, stats
	}

	byService := make(map[constants.ServiceID][]entity.PriceEntry, len(cols))
	order := make([]constants.ServiceID, 0, len(cols))
	for _, sc := range cols {
		if _, seen := byService[sc.id]; !seen {
			byService[sc.id] = nil
			order = append(order, sc.id)
		}
	}

	for rowIdx := layout.HeaderRow + 1; rowIdx < len(t); rowIdx++ {
		row := t[rowIdx]
		weights := rowWeights(row, layout)
		if len(weights) == 0 {
			stats.SkippedRows++
			continue
		}
		stats.DataRows++

		for _, sc := range cols {
			cell := row.Cell(sc.col)
			if !cell.Ok {
				continue
			}
			prices := normalize.PricesInCell(cell.Text)
			if len(prices) == 0 {
				continue
			}
			// Stacked weights pair positionally with stacked prices; a
			// short price list truncates the pairing and the excess
			// weights are dropped.
			n := len(weights)
			if len(prices) < n {
				n = len(prices)
				stats.DroppedWeights += len(weights) - n
				logger.Warn("tabular.pairing.truncated",
					"row", rowIdx,
					"col", sc.col,
					"weights", len(weights),
					"prices", len(prices),
				)
			}
			for i := 0; i < n; i++ {
				byService[sc.id] = append(byService[sc.id], entity.PriceEntry{
					Weight: weights[i],
					Price:  prices[i],
				})
				stats.Pairs++
			}
		}
	}

	services := make([]entity.Service, 0, len(order))
	for _, id := range order {
		if len(byService[id]) == 0 {
			continue
		}
		services = append(services, entity.Service{Name: id, Prices: byService[id]})
	}
	return services, stats
}

// ZoneLabel finds the zone label embedded in a table, for pages whose
// header reads "package rates to ...". The label cell sits at a fixed
// offset from the end of the zone row; the offset differs with the number
// of leading descriptive columns, hence the ordered fallbacks.
func ZoneLabel(t Table, layout Layout) (string, bool) {
	if layout.ZoneRow >= len(t) {
		return "", false
	}
	row := t[layout.ZoneRow]
	for _, off := range layout.ZoneCellOffsets {
		cell := row.FromEnd(off)
		if !cell.Ok {
			continue
		}
		label := normalize.CanonicalZone(cell.Text)
		if label != "" {
			return label, true
		}
	}
	return "", false
}

func serviceColumns(t Table, layout Layout) []serviceColumn {
	if layout.HeaderRow >= len(t) {
		return nil
	}
	var cols []serviceColumn
	for col, cell := range t[layout.HeaderRow] {
		if !cell.Ok || !strings.ContainsAny(cell.Text, serviceMarkers) {
			continue
		}
		// Envelope line items carry the marker glyph but are packaging
		// rows, not services.
		if strings.Contains(strings.ToLower(cell.Text), "envelope") {
			continue
		}
		id, ok := normalize.Service(cell.Text)
		if !ok {
			continue
		}
		cols = append(cols, serviceColumn{col: col, id: id})
	}
	return cols
}

// rowWeights reads the weight cell, preferring the secondary column and
// falling back to the first, then parses the stacked values inside it.
// A cell holding currency text means this table variant is not shifted and
// the weight lives in the fallback column.
func rowWeights(row Row, layout Layout) []int {
	cell := row.Cell(layout.WeightCol)
	if !cell.Ok || strings.TrimSpace(cell.Text) == "" || strings.Contains(cell.Text, "$") {
		cell = row.Cell(layout.WeightColFallback)
	}
	if !cell.Ok {
		return nil
	}
	// Header-like rows ("Weight (lbs.)") produce no integers and are
	// skipped naturally.
	if strings.Contains(strings.ToLower(cell.Text), "weight") {
		return nil
	}
	return normalize.WeightsInCell(cell.Text)
}
