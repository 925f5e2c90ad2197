// Package source provides the rate documents ingestion reads from: the
// extractor-sidecar client for PDF sources and a reader for the flat
// semicolon-delimited export format.
package source

import (
	"github.com/carrierdesk/rates-tracker/internal/tabular"
)

// Page is one page of a rate document: its raw text (used to resolve the
// page's zone context) and zero or more extracted tables.
type Page interface {
	Number() int
	Text() string
	Tables() []tabular.Table
}

// Document is a paged rate document. The core never decodes PDFs itself;
// implementations either call the table-extraction sidecar or replay
// pre-extracted fixtures.
type Document interface {
	Pages() []Page
}
