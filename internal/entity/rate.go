package entity

import (
	"github.com/shopspring/decimal"

	"github.com/carrierdesk/rates-tracker/constants"
)

// PriceEntry is one published weight break and its price. Entries are
// immutable once stored; within a Service no two entries share a weight.
type PriceEntry struct {
	Weight int             `json:"weight"`
	Price  decimal.Decimal `json:"price"`
}

// Service is a named shipping product tier and its ordered price list.
// Within a Zone service names are unique.
type Service struct {
	Name   constants.ServiceID `json:"name"`
	Prices []PriceEntry        `json:"prices"`
}

// FindWeight returns the entry with exactly the given weight.
func (s *Service) FindWeight(weight int) (PriceEntry, bool) {
	for _, p := range s.Prices {
		if p.Weight == weight {
			return p, true
		}
	}
	return PriceEntry{}, false
}

// CeilingWeight returns the entry with the smallest stored weight >= weight.
// Shipments are billed at the weight bracket that covers them; a query
// weight above every bracket has no price.
func (s *Service) CeilingWeight(weight int) (PriceEntry, bool) {
	var best PriceEntry
	found := false
	for _, p := range s.Prices {
		if p.Weight < weight {
			continue
		}
		if !found || p.Weight < best.Weight {
			best = p
			found = true
		}
	}
	return best, found
}

// Zone is one pricing region. AreaZone is the store's primary key; it is a
// string because source documents label zones both numerically ("2") and
// with free text ("Puerto Rico").
type Zone struct {
	AreaZone string    `json:"area_zone"`
	Services []Service `json:"services"`
}

// FindService returns the service with the given canonical name.
func (z *Zone) FindService(name constants.ServiceID) (*Service, bool) {
	for i := range z.Services {
		if z.Services[i].Name == name {
			return &z.Services[i], true
		}
	}
	return nil, false
}
