package constants

import (
	"strconv"
	"strings"
)

// PageRange is an inclusive 1-based page interval of the source document.
type PageRange struct {
	First int
	Last  int
}

// DefaultPageRanges covers the pages of the standard list-rates document
// that actually carry rate tables; everything outside is cover pages,
// legends, or terms and is skipped during ingestion.
var DefaultPageRanges = []PageRange{
	{First: 4, Last: 35},
	{First: 38, Last: 51},
}

// InRanges reports whether page (1-based) falls inside any of the ranges.
func InRanges(page int, ranges []PageRange) bool {
	for _, r := range ranges {
		if page >= r.First && page <= r.Last {
			return true
		}
	}
	return false
}

// ParsePageRanges parses a "4-35,38-51,60" style spec. Single numbers are
// one-page ranges. Malformed chunks are ignored rather than rejected so an
// env override never prevents startup.
func ParsePageRanges(spec string) []PageRange {
	var out []PageRange
	for _, chunk := range strings.Split(spec, ",") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		lo, hi, found := strings.Cut(chunk, "-")
		first, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || first < 1 {
			continue
		}
		last := first
		if found {
			last, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || last < first {
				continue
			}
		}
		out = append(out, PageRange{First: first, Last: last})
	}
	return out
}
