// Package normalize turns raw text fragments from rate sheets and lookup
// queries into typed values. Every function here is total: malformed input
// yields (zero, false), never an error or a panic, so ingestion can skip
// bad cells and query handling can report field-level validation failures.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/carrierdesk/rates-tracker/constants"
)

var (
	reQueryZone  = regexp.MustCompile(`(?i)\bz(?:one)?\s*#?\s*(\d+)`)
	reHeaderTo   = regexp.MustCompile(`(?i)package rates to\s+(\S[^\n]*)`)
	reHeaderHere = regexp.MustCompile(`(?i)package rates:\s*(\S[^\n]*)`)
	reBareZone   = regexp.MustCompile(`(?i)\bzone\s+(\w+)`)
	reInteger    = regexp.MustCompile(`\d+`)
	reQueryLbs   = regexp.MustCompile(`(?i)(\d+)\s*lbs?\b`)
	reWeightSpan = regexp.MustCompile(`^(\d+)\s*[-–]\s*(\d+)$`)
	rePunct      = regexp.MustCompile(`[.,;:()®™*†‡]`)
	reSpaces     = regexp.MustCompile(`\s+`)
)

// Clean lower-cases a fragment, strips trademark marks and punctuation,
// drops hyphens, and collapses whitespace, so that "2-Day A.M.®" and
// "2day am" compare equal.
func Clean(text string) string {
	s := strings.ToLower(text)
	s = rePunct.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "–", "")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Service resolves a fragment to a canonical service identifier. Matching
// is substring containment against the closed service set, longest
// identifier first, so "2day am" never collapses to "2Day".
func Service(text string) (constants.ServiceID, bool) {
	return constants.MatchService(Clean(text))
}

// QueryZone extracts a zone from free query text: a number following a
// "z"/"zone" token, e.g. "zone 5", "z5", "Zone #2". The canonical zone key
// is the bare decimal string.
func QueryZone(line string) (string, bool) {
	m := reQueryZone.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}
	return strconv.Itoa(n), true
}

// HeaderZone extracts the zone context from a page's header text during
// ingestion. Two phrasings occur: "... package rates to <label>" means the
// real zone label sits in a data cell further down (hasTo=true, the label
// returned here is only a hint), while "... package rates: <label>" embeds
// the label directly. A bare "Zone <n>" is the next fallback; failing
// everything, the raw trimmed text is returned as the label.
func HeaderZone(text string) (label string, hasTo bool, ok bool) {
	if m := reHeaderTo.FindStringSubmatch(text); m != nil {
		return CanonicalZone(m[1]), true, true
	}
	if m := reHeaderHere.FindStringSubmatch(text); m != nil {
		return CanonicalZone(m[1]), false, true
	}
	if m := reBareZone.FindStringSubmatch(text); m != nil {
		return CanonicalZone(m[1]), false, true
	}
	trimmed := strings.TrimSpace(text)
	return trimmed, false, trimmed != ""
}

// CanonicalZone normalizes a zone label to the store's canonical string
// form: numeric labels (with or without a "Zone" prefix) become their bare
// decimal string, anything else is the trimmed text as-is.
func CanonicalZone(label string) string {
	s := strings.TrimSpace(label)
	lower := strings.ToLower(s)
	lower = strings.TrimSpace(strings.TrimPrefix(lower, "zone"))
	if n, err := strconv.Atoi(lower); err == nil {
		return strconv.Itoa(n)
	}
	return s
}

// LastWeight extracts the last integer-looking token in a fragment; rate
// sheet weight cells read like "5 lbs." or "FedEx Envelope up to 8 oz. 1".
func LastWeight(text string) (int, bool) {
	all := reInteger.FindAllString(text, -1)
	if len(all) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(all[len(all)-1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// QueryWeight extracts the integer preceding a weight-unit token in free
// query text, e.g. "ground zone 2 3lb" -> 3.
func QueryWeight(line string) (int, bool) {
	m := reQueryLbs.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// WeightsInCell parses a table cell that may hold several stacked weight
// values separated by line breaks. A fragment like "1–5" is a published
// span and expands to every integer weight it covers.
func WeightsInCell(text string) []int {
	var out []int
	for _, frag := range splitStacked(text) {
		frag = strings.TrimSuffix(frag, "lbs.")
		frag = strings.TrimSuffix(frag, "lb.")
		frag = strings.TrimSuffix(frag, "lbs")
		frag = strings.TrimSuffix(frag, "lb")
		frag = strings.TrimSpace(frag)
		if m := reWeightSpan.FindStringSubmatch(frag); m != nil {
			lo, err1 := strconv.Atoi(m[1])
			hi, err2 := strconv.Atoi(m[2])
			if err1 != nil || err2 != nil || lo < 1 || hi < lo {
				continue
			}
			for w := lo; w <= hi; w++ {
				out = append(out, w)
			}
			continue
		}
		if w, ok := LastWeight(frag); ok {
			out = append(out, w)
		}
	}
	return out
}

// Price parses a currency amount, tolerating a dollar sign and thousands
// separators. Malformed or negative input yields no value so batch parsing
// can skip bad cells without aborting.
func Price(text string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Decimal{}, false
	}
	return d, true
}

// PricesInCell parses a cell holding one or more stacked prices.
func PricesInCell(text string) []decimal.Decimal {
	var out []decimal.Decimal
	for _, frag := range splitStacked(text) {
		if p, ok := Price(frag); ok {
			out = append(out, p)
		}
	}
	return out
}

func splitStacked(text string) []string {
	var out []string
	for _, frag := range strings.Split(text, "\n") {
		frag = strings.TrimSpace(frag)
		if frag != "" {
			out = append(out, frag)
		}
	}
	return out
}
