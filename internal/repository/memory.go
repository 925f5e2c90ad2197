package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/carrierdesk/rates-tracker/constants"
	"github.com/carrierdesk/rates-tracker/internal/common"
	"github.com/carrierdesk/rates-tracker/internal/entity"
)

// MemoryRateRepository is an in-memory RateRepository. It backs tests and
// is also a usable store for one-shot tooling that has no database at hand.
type MemoryRateRepository struct {
	mu    sync.RWMutex
	zones map[string]*entity.Zone
}

func NewMemoryRateRepository() *MemoryRateRepository {
	return &MemoryRateRepository{zones: make(map[string]*entity.Zone)}
}

func (m *MemoryRateRepository) FindZone(_ context.Context, areaZone string) (*entity.Zone, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	z, ok := m.zones[areaZone]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneZone(z), nil
}

func (m *MemoryRateRepository) InsertZone(_ context.Context, zone entity.Zone) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.zones[zone.AreaZone]
	if !ok {
		m.zones[zone.AreaZone] = cloneZone(&zone)
		return nil
	}
	mergeServices(existing, zone.Services)
	return nil
}

func (m *MemoryRateRepository) AppendServices(_ context.Context, areaZone string, services []entity.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.zones[areaZone]
	if !ok {
		m.zones[areaZone] = cloneZone(&entity.Zone{AreaZone: areaZone, Services: services})
		return nil
	}
	mergeServices(existing, services)
	return nil
}

func (m *MemoryRateRepository) AppendPrices(_ context.Context, areaZone string, service constants.ServiceID, entries []entity.PriceEntry) error {
	return m.AppendServices(context.Background(), areaZone, []entity.Service{{Name: service, Prices: entries}})
}

func (m *MemoryRateRepository) ListZones(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	zones := make([]string, 0, len(m.zones))
	for z := range m.zones {
		zones = append(zones, z)
	}
	sort.Strings(zones)
	return zones, nil
}

func (m *MemoryRateRepository) ListServices(_ context.Context, areaZone string) ([]constants.ServiceID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	z, ok := m.zones[areaZone]
	if !ok {
		return nil, nil
	}
	out := make([]constants.ServiceID, 0, len(z.Services))
	for _, s := range z.Services {
		out = append(out, s.Name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (m *MemoryRateRepository) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, z := range m.zones {
		for _, s := range z.Services {
			n += len(s.Prices)
		}
	}
	return n, nil
}

func (m *MemoryRateRepository) DropAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zones = make(map[string]*entity.Zone)
	return nil
}

// mergeServices appends absent services and absent (service, weight) pairs;
// existing entries are never touched.
func mergeServices(zone *entity.Zone, incoming []entity.Service) {
	for _, in := range incoming {
		existing, ok := zone.FindService(in.Name)
		if !ok {
			zone.Services = append(zone.Services, *cloneService(&in))
			continue
		}
		for _, e := range in.Prices {
			if _, dup := existing.FindWeight(e.Weight); dup {
				continue
			}
			existing.Prices = append(existing.Prices, e)
		}
	}
}

func cloneZone(z *entity.Zone) *entity.Zone {
	out := &entity.Zone{AreaZone: z.AreaZone, Services: make([]entity.Service, 0, len(z.Services))}
	for i := range z.Services {
		out.Services = append(out.Services, *cloneService(&z.Services[i]))
	}
	return out
}

func cloneService(s *entity.Service) *entity.Service {
	prices := make([]entity.PriceEntry, len(s.Prices))
	copy(prices, s.Prices)
	return &entity.Service{Name: s.Name, Prices: prices}
}
