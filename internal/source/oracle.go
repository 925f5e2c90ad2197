package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/carrierdesk/rates-tracker/constants"
	"github.com/carrierdesk/rates-tracker/internal/tabular"
)

// extractResponseSchema constrains the sidecar payload before we touch it:
// a list of pages, each with a 1-based number, optional text, and tables as
// grids of nullable strings.
const extractResponseSchema = `{
  "type": "object",
  "required": ["pages"],
  "properties": {
    "pages": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["number"],
        "properties": {
          "number": {"type": "integer", "minimum": 1},
          "text": {"type": ["string", "null"]},
          "tables": {
            "type": "array",
            "items": {
              "type": "array",
              "items": {
                "type": "array",
                "items": {"type": ["string", "null"]}
              }
            }
          }
        }
      }
    }
  }
}`

// ExtractorClient calls the table-extraction sidecar over HTTP. The core
// treats table extraction as an opaque oracle; the sidecar does the PDF
// geometry work and returns per-page text and cell grids.
type ExtractorClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint
	schema     *jsonschema.Schema
	logger     *slog.Logger

	// pageCount is swappable in tests; the default asks pdfcpu, which also
	// rejects files that are not valid PDFs before we ship them anywhere.
	pageCount func(path string) (int, error)
}

// NewExtractorClient builds a client for the sidecar at baseURL.
func NewExtractorClient(baseURL string, timeout time.Duration, maxRetries uint, logger *slog.Logger) *ExtractorClient {
	if logger == nil {
		logger = slog.Default()
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("extract.json", strings.NewReader(extractResponseSchema)); err != nil {
		panic(fmt.Sprintf("extract response schema: %v", err))
	}
	return &ExtractorClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		schema:     compiler.MustCompile("extract.json"),
		logger:     logger,
		pageCount:  pdfPageCount,
	}
}

type extractRequest struct {
	Path  string `json:"path"`
	Pages []int  `json:"pages"`
}

type wirePage struct {
	Number int           `json:"number"`
	Text   *string       `json:"text"`
	Tables [][][]*string `json:"tables"`
}

type wireResponse struct {
	Pages []wirePage `json:"pages"`
}

// Extract opens the PDF at path and returns the pages inside the given
// ranges as a Document. The page ranges are clamped to the PDF's actual
// page count so a shorter document never produces a sidecar error.
func (c *ExtractorClient) Extract(ctx context.Context, path string, ranges []constants.PageRange) (Document, error) {
	count, err := c.pageCount(path)
	if err != nil {
		return nil, fmt.Errorf("inspect pdf %s: %w", path, err)
	}

	var pages []int
	for p := 1; p <= count; p++ {
		if constants.InRanges(p, ranges) {
			pages = append(pages, p)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdf %s: no pages fall inside the configured rate-table ranges", path)
	}

	reqID := uuid.New().String()
	body, err := json.Marshal(extractRequest{Path: path, Pages: pages})
	if err != nil {
		return nil, fmt.Errorf("encode extract request: %w", err)
	}

	var raw []byte
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Request-ID", reqID)

			start := time.Now()
			resp, err := c.httpClient.Do(req)
			if err != nil {
				c.logger.Warn("extractor.request_failed", "req_id", reqID, "error", err)
				return err
			}
			defer func() {
				if err := resp.Body.Close(); err != nil {
					c.logger.Warn("extractor.body_close_failed", "req_id", reqID, "error", err)
				}
			}()
			raw, err = io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			c.logger.Info("extractor.response",
				"req_id", reqID,
				"status", resp.StatusCode,
				"bytes", len(raw),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			if resp.StatusCode/100 != 2 {
				return fmt.Errorf("extractor returned status %d", resp.StatusCode)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetries),
		retry.Delay(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("call extractor: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode extractor response: %w", err)
	}
	if err := c.schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("extractor response does not match schema: %w", err)
	}

	var wire wireResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode extractor response: %w", err)
	}
	return docFromWire(wire), nil
}

func pdfPageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return api.PageCount(f, nil)
}

// extractedDoc is the in-memory Document built from a sidecar response.
type extractedDoc struct {
	pages []Page
}

func (d *extractedDoc) Pages() []Page { return d.pages }

type extractedPage struct {
	number int
	text   string
	tables []tabular.Table
}

func (p *extractedPage) Number() int             { return p.number }
func (p *extractedPage) Text() string            { return p.text }
func (p *extractedPage) Tables() []tabular.Table { return p.tables }

func docFromWire(wire wireResponse) Document {
	doc := &extractedDoc{}
	for _, wp := range wire.Pages {
		page := &extractedPage{number: wp.Number}
		if wp.Text != nil {
			page.text = *wp.Text
		}
		for _, wt := range wp.Tables {
			table := make(tabular.Table, 0, len(wt))
			for _, wr := range wt {
				row := make(tabular.Row, 0, len(wr))
				for _, cell := range wr {
					row = append(row, tabular.CellFromPtr(cell))
				}
				table = append(table, row)
			}
			page.tables = append(page.tables, table)
		}
		doc.pages = append(doc.pages, page)
	}
	return doc
}
