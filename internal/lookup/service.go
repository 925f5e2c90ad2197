// Package lookup answers point queries against the stored rate table:
// free text in, price out.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/carrierdesk/rates-tracker/constants"
	"github.com/carrierdesk/rates-tracker/internal/common"
	"github.com/carrierdesk/rates-tracker/internal/normalize"
	"github.com/carrierdesk/rates-tracker/internal/repository"
)

// Kind separates queries we could not understand from queries we
// understood but have no data for.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
)

// FieldIssue names one query field that failed, with the values the store
// currently knows so a caller can self-correct.
type FieldIssue struct {
	Field   string   `json:"field"`
	Message string   `json:"message"`
	Known   []string `json:"known_values,omitempty"`
}

// QueryError is the structured explanation for a failed lookup.
type QueryError struct {
	Kind   Kind         `json:"kind"`
	Fields []FieldIssue `json:"fields"`
}

func (e *QueryError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return fmt.Sprintf("%s: %s", e.Kind, strings.Join(parts, "; "))
}

// Service resolves free-text rate queries against the populated store.
type Service struct {
	repo   repository.RateRepository
	logger *slog.Logger
}

func NewService(repo repository.RateRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Price normalizes the query line into (service, zone, weight) and
// resolves a price by exact or nearest-ceiling weight match. Failures come
// back as *QueryError; any other error is a store failure.
func (s *Service) Price(ctx context.Context, line string) (decimal.Decimal, error) {
	service, serviceOK := normalize.Service(line)
	zone, zoneOK := normalize.QueryZone(line)
	weight, weightOK := normalize.QueryWeight(line)

	var issues []FieldIssue
	if !serviceOK {
		issues = append(issues, FieldIssue{
			Field:   "service",
			Message: "no recognizable service name",
			Known:   serviceNames(),
		})
	}
	if !zoneOK {
		issues = append(issues, FieldIssue{
			Field:   "zone",
			Message: `no zone token (expected "zone <n>" or "z<n>")`,
			Known:   s.knownZones(ctx),
		})
	}
	if !weightOK {
		issues = append(issues, FieldIssue{
			Field:   "weight",
			Message: `no weight token (expected "<n> lb" or "<n> lbs")`,
		})
	}
	if len(issues) > 0 {
		return decimal.Decimal{}, &QueryError{Kind: KindValidation, Fields: issues}
	}

	z, err := s.repo.FindZone(ctx, zone)
	if errors.Is(err, common.ErrNotFound) {
		return decimal.Decimal{}, &QueryError{Kind: KindNotFound, Fields: []FieldIssue{{
			Field:   "zone",
			Message: fmt.Sprintf("zone %s is not in the rate table", zone),
			Known:   s.knownZones(ctx),
		}}}
	}
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("find zone %q: %w", zone, err)
	}

	svc, ok := z.FindService(service)
	if !ok {
		return decimal.Decimal{}, &QueryError{Kind: KindNotFound, Fields: []FieldIssue{{
			Field:   "service",
			Message: fmt.Sprintf("service %s is not published for zone %s", service, zone),
			Known:   s.knownServices(ctx, zone),
		}}}
	}

	entry, ok := svc.CeilingWeight(weight)
	if !ok {
		return decimal.Decimal{}, &QueryError{Kind: KindNotFound, Fields: []FieldIssue{{
			Field:   "weight",
			Message: fmt.Sprintf("no published weight bracket covers %d lb for %s in zone %s", weight, service, zone),
		}}}
	}

	s.logger.Debug("lookup.ok",
		"service", string(service),
		"area_zone", zone,
		"weight", weight,
		"bracket", entry.Weight,
	)
	return entry.Price, nil
}

func serviceNames() []string {
	ids := constants.AsStringSlice()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func (s *Service) knownZones(ctx context.Context) []string {
	zones, err := s.repo.ListZones(ctx)
	if err != nil {
		s.logger.Warn("lookup.list_zones_failed", "error", err)
		return nil
	}
	return zones
}

func (s *Service) knownServices(ctx context.Context, areaZone string) []string {
	ids, err := s.repo.ListServices(ctx, areaZone)
	if err != nil {
		s.logger.Warn("lookup.list_services_failed", "area_zone", areaZone, "error", err)
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
