package server

import (
	"encoding/json"
	"net/http"

	"github.com/carrierdesk/rates-tracker/internal/lookup"
)

const (
	codeInvalidRequestBody = "invalid_request_body"
	codeEmptyLine          = "empty_line"
	codeValidationFailed   = "validation_failed"
	codeRateNotFound       = "rate_not_found"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields []lookup.FieldIssue `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string, fields []lookup.FieldIssue) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error:  msg,
		Code:   code,
		Fields: fields,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
