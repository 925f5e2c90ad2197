package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/carrierdesk/rates-tracker/internal/export"
	"github.com/carrierdesk/rates-tracker/internal/ingest"
	"github.com/carrierdesk/rates-tracker/internal/lookup"
	"github.com/carrierdesk/rates-tracker/internal/repository"
	"github.com/carrierdesk/rates-tracker/internal/server"
	"github.com/carrierdesk/rates-tracker/internal/source"
)

const flatFixture = `Zone 2:
weight;FedEx Ground;FedEx Express Saver
1;10.10;12.50
5;12.20;15.75

Zone 5:
weight;FedEx Ground
10;21.30
`

// newTestHandler hydrates a fresh in-memory store from flatFixture and
// returns the fully routed handler.
func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	repo := repository.NewMemoryRateRepository()
	zones, err := source.ParseFlat(strings.NewReader(flatFixture))
	if err != nil {
		t.Fatalf("ParseFlat: %v", err)
	}
	merger := ingest.NewMerger(repo, nil)
	for _, z := range zones {
		if err := merger.Merge(context.Background(), z.AreaZone, z.Services); err != nil {
			t.Fatalf("merge zone %s: %v", z.AreaZone, err)
		}
	}
	srv := server.New(":0", server.Deps{
		Lookup:   lookup.NewService(repo, nil),
		Zones:    repo,
		Exporter: export.NewService(repo, nil),
	}, nil)
	return srv.Handler()
}

func postPrice(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/price", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHandlePrice(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	t.Run("query between brackets bills the covering weight", func(t *testing.T) {
		rec := postPrice(t, h, `{"line":"ground zone 2 3lb"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Line  string `json:"line"`
			Price string `json:"price"`
		}
		decodeBody(t, rec, &resp)
		if resp.Price != "12.2" {
			t.Fatalf("price = %s, want the weight-5 bracket (12.2)", resp.Price)
		}
	})

	t.Run("unknown zone is 404 with the known zones", func(t *testing.T) {
		rec := postPrice(t, h, `{"line":"ground zone 9 3lb"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Code   string `json:"code"`
			Fields []struct {
				Field string   `json:"field"`
				Known []string `json:"known_values"`
			} `json:"fields"`
		}
		decodeBody(t, rec, &resp)
		if resp.Code != "rate_not_found" {
			t.Fatalf("code = %s", resp.Code)
		}
		if len(resp.Fields) != 1 || resp.Fields[0].Field != "zone" {
			t.Fatalf("fields = %+v, want a single zone issue", resp.Fields)
		}
		if len(resp.Fields[0].Known) != 2 {
			t.Fatalf("known zones = %v, want both stored zones", resp.Fields[0].Known)
		}
	})

	t.Run("unparseable line is 400 validation_failed", func(t *testing.T) {
		rec := postPrice(t, h, `{"line":"send it somewhere"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Code string `json:"code"`
		}
		decodeBody(t, rec, &resp)
		if resp.Code != "validation_failed" {
			t.Fatalf("code = %s", resp.Code)
		}
	})

	t.Run("empty line is rejected before parsing", func(t *testing.T) {
		rec := postPrice(t, h, `{"line":"   "}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp struct {
			Code string `json:"code"`
		}
		decodeBody(t, rec, &resp)
		if resp.Code != "empty_line" {
			t.Fatalf("code = %s", resp.Code)
		}
	})

	t.Run("unknown json field is rejected", func(t *testing.T) {
		rec := postPrice(t, h, `{"line":"ground zone 2 3lb","mode":"fast"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("GET on price route is not routed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/price", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d, want 405", rec.Code)
		}
	})
}

func TestHandleZones(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/zones", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Zones []struct {
			AreaZone string   `json:"area_zone"`
			Services []string `json:"services"`
		} `json:"zones"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Zones) != 2 {
		t.Fatalf("zones = %+v, want 2", resp.Zones)
	}
	byZone := map[string][]string{}
	for _, z := range resp.Zones {
		byZone[z.AreaZone] = z.Services
	}
	if len(byZone["2"]) != 2 {
		t.Fatalf("zone 2 services = %v, want ground and express saver", byZone["2"])
	}
	if len(byZone["5"]) != 1 {
		t.Fatalf("zone 5 services = %v, want ground only", byZone["5"])
	}
}

func TestHandleExport(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/export.xlsx", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("content-type = %s", ct)
	}
	// XLSX is a zip container.
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Fatal("body is not a zip archive")
	}
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
