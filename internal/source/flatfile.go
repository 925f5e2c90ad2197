package source

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/carrierdesk/rates-tracker/constants"
	"github.com/carrierdesk/rates-tracker/internal/entity"
	"github.com/carrierdesk/rates-tracker/internal/normalize"
)

var reFlatZoneHeader = regexp.MustCompile(`(?i)^zone\s+(\S+)\s*:\s*$`)

// ParseFlat reads the flat delimited rate format: repeating blocks of a
// "Zone <n>:" header, a "weight;<service>;<service>;..." column line, and
// data lines "<weight>;<price>;<price>;..." until the next zone header.
// Unrecognized service columns and unparseable data cells are skipped, the
// same skip-don't-abort policy the table reconstructor follows. A source
// that produces zero zones is an error: flat rehydration replaces the
// whole table and must never silently replace it with nothing.
func ParseFlat(r io.Reader) ([]entity.Zone, error) {
	scanner := bufio.NewScanner(r)

	var zones []entity.Zone
	var cur *entity.Zone
	// services[i] is the canonical service for data column i+1; unknown
	// columns keep a slot so prices stay aligned.
	var cols []serviceSlot

	flush := func() {
		if cur != nil && len(cur.Services) > 0 {
			zones = append(zones, *cur)
		}
		cur = nil
		cols = nil
	}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if m := reFlatZoneHeader.FindStringSubmatch(line); m != nil {
			flush()
			cur = &entity.Zone{AreaZone: normalize.CanonicalZone(m[1])}
			continue
		}
		if cur == nil {
			// Preamble before the first zone header.
			continue
		}

		fields := strings.Split(line, ";")
		if strings.EqualFold(strings.TrimSpace(fields[0]), "weight") {
			cols = make([]serviceSlot, 0, len(fields)-1)
			for _, raw := range fields[1:] {
				id, ok := normalize.Service(raw)
				cols = append(cols, serviceSlot{id: id, ok: ok})
			}
			continue
		}
		if len(cols) == 0 {
			continue
		}

		weights := normalize.WeightsInCell(fields[0])
		if len(weights) == 0 {
			continue
		}
		for i, slot := range cols {
			if !slot.ok || i+1 >= len(fields) {
				continue
			}
			price, ok := normalize.Price(fields[i+1])
			if !ok {
				continue
			}
			svc := ensureService(cur, slot.id)
			for _, w := range weights {
				if _, dup := svc.FindWeight(w); dup {
					continue
				}
				svc.Prices = append(svc.Prices, entity.PriceEntry{Weight: w, Price: price})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read flat source: %w", err)
	}
	flush()

	if len(zones) == 0 {
		return nil, fmt.Errorf("flat source: no zone blocks in %d lines", lineNo)
	}
	return zones, nil
}

type serviceSlot struct {
	id constants.ServiceID
	ok bool
}

func ensureService(z *entity.Zone, id constants.ServiceID) *entity.Service {
	if svc, ok := z.FindService(id); ok {
		return svc
	}
	z.Services = append(z.Services, entity.Service{Name: id})
	return &z.Services[len(z.Services)-1]
}
