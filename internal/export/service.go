package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/carrierdesk/rates-tracker/internal/repository"
)

// Service is a tiny façade over the rate repository that produces XLSX
// bytes for exports.
type Service struct {
	repo   repository.RateRepository
	logger *slog.Logger
}

func NewService(repo repository.RateRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportRatesXLSX returns an XLSX workbook with one row per stored
// (zone, service, weight, price) record, ordered by zone.
func (s *Service) ExportRatesXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	zones, err := s.repo.ListZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Rates"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{"Zone", "Service", "Weight (lbs)", "Price"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	records := 0
	for _, areaZone := range zones {
		zone, err := s.repo.FindZone(ctx, areaZone)
		if err != nil {
			return nil, fmt.Errorf("load zone %q: %w", areaZone, err)
		}
		for _, svc := range zone.Services {
			for _, e := range svc.Prices {
				write := func(col int, v any) {
					cell, _ := excelize.CoordinatesToCellName(col, row)
					_ = f.SetCellValue(sheet, cell, v)
				}
				write(1, areaZone)
				write(2, string(svc.Name))
				write(3, e.Weight)
				write(4, e.Price.String())
				row++
				records++
			}
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 10)
	_ = f.SetColWidth(sheet, "B", "B", 24)
	_ = f.SetColWidth(sheet, "C", "C", 14)
	_ = f.SetColWidth(sheet, "D", "D", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"zones", len(zones),
		"rows", records,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
