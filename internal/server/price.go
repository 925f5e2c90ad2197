package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/carrierdesk/rates-tracker/internal/lookup"
)

// PriceResolver is the minimal interface needed to answer a rate query.
type PriceResolver interface {
	Price(ctx context.Context, line string) (decimal.Decimal, error)
}

type priceRequest struct {
	Line string `json:"line"`
}

type priceResponse struct {
	Line  string          `json:"line"`
	Price decimal.Decimal `json:"price"`
}

// HandlePrice returns the handler for POST /price.
func HandlePrice(svc PriceResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req priceRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body", nil)
			return
		}
		if strings.TrimSpace(req.Line) == "" {
			writeError(w, http.StatusBadRequest, codeEmptyLine, "line must not be empty", nil)
			return
		}

		price, err := svc.Price(r.Context(), req.Line)
		if err != nil {
			writeLookupError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, priceResponse{Line: req.Line, Price: price})
	}
}

func writeLookupError(w http.ResponseWriter, err error) {
	var qerr *lookup.QueryError
	if errors.As(err, &qerr) {
		if qerr.Kind == lookup.KindValidation {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "query could not be parsed", qerr.Fields)
			return
		}
		writeError(w, http.StatusNotFound, codeRateNotFound, "no rate matches the query", qerr.Fields)
		return
	}
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error", nil)
}
