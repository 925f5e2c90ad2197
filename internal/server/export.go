package server

import (
	"context"
	"net/http"
)

// RateExporter produces the XLSX rendering of the stored rate table.
type RateExporter interface {
	ExportRatesXLSX(ctx context.Context) ([]byte, error)
}

// HandleExport returns the handler for GET /export.xlsx.
func HandleExport(svc RateExporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := svc.ExportRatesXLSX(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error", nil)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="rates.xlsx"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
