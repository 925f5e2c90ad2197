// Package ingest builds the persistent rate table from a source document:
// walking pages, reconstructing tables, and merging records additively.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/carrierdesk/rates-tracker/internal/common"
	"github.com/carrierdesk/rates-tracker/internal/entity"
	"github.com/carrierdesk/rates-tracker/internal/repository"
)

// Merger reconciles freshly reconstructed records against the store. It is
// idempotent: merging the same input twice leaves the store unchanged, and
// existing entries are never overwritten (first write for a weight wins).
type Merger struct {
	repo   repository.RateRepository
	logger *slog.Logger
}

func NewMerger(repo repository.RateRepository, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{repo: repo, logger: logger}
}

// Merge inserts a new zone wholesale, or appends the previously-absent
// services and (service, weight) pairs to an existing one. Empty input is
// a no-op: malformed upstream output must not create empty zones.
func (m *Merger) Merge(ctx context.Context, areaZone string, services []entity.Service) error {
	if areaZone == "" || len(services) == 0 {
		return nil
	}
	services = dedupeWeights(services)

	existing, err := m.repo.FindZone(ctx, areaZone)
	if errors.Is(err, common.ErrNotFound) {
		if err := m.repo.InsertZone(ctx, entity.Zone{AreaZone: areaZone, Services: services}); err != nil {
			return fmt.Errorf("insert zone %q: %w", areaZone, err)
		}
		m.logger.Debug("merge.zone.inserted", "area_zone", areaZone, "services", len(services))
		return nil
	}
	if err != nil {
		return fmt.Errorf("find zone %q: %w", areaZone, err)
	}

	for _, incoming := range services {
		current, ok := existing.FindService(incoming.Name)
		if !ok {
			if err := m.repo.AppendServices(ctx, areaZone, []entity.Service{incoming}); err != nil {
				return fmt.Errorf("append service %s to zone %q: %w", incoming.Name, areaZone, err)
			}
			continue
		}
		var fresh []entity.PriceEntry
		for _, e := range incoming.Prices {
			if _, dup := current.FindWeight(e.Weight); dup {
				continue
			}
			fresh = append(fresh, e)
		}
		if len(fresh) == 0 {
			continue
		}
		if err := m.repo.AppendPrices(ctx, areaZone, incoming.Name, fresh); err != nil {
			return fmt.Errorf("append prices for %s in zone %q: %w", incoming.Name, areaZone, err)
		}
	}
	return nil
}

// dedupeWeights drops repeated weights inside each incoming service so the
// first occurrence wins before anything reaches the store.
func dedupeWeights(services []entity.Service) []entity.Service {
	out := make([]entity.Service, 0, len(services))
	for _, svc := range services {
		seen := make(map[int]struct{}, len(svc.Prices))
		clean := entity.Service{Name: svc.Name}
		for _, e := range svc.Prices {
			if _, dup := seen[e.Weight]; dup {
				continue
			}
			seen[e.Weight] = struct{}{}
			clean.Prices = append(clean.Prices, e)
		}
		if len(clean.Prices) > 0 {
			out = append(out, clean)
		}
	}
	return out
}
