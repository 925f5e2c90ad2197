package tabular

import (
	"testing"

	"github.com/carrierdesk/rates-tracker/constants"
	"github.com/carrierdesk/rates-tracker/internal/entity"
)

func c(s string) Cell { return TextCell(s) }
func e() Cell         { return EmptyCell() }

func findService(t *testing.T, services []entity.Service, id constants.ServiceID) entity.Service {
	t.Helper()
	for _, s := range services {
		if s.Name == id {
			return s
		}
	}
	t.Fatalf("service %s not in result %v", id, services)
	return entity.Service{}
}

func TestReconstruct(t *testing.T) {
	t.Parallel()

	t.Run("standard layout with weight in first column", func(t *testing.T) {
		table := Table{
			{c("Weight (lbs.)"), c("FedEx Ground®"), c("FedEx Express Saver®")},
			{c("1"), c("$10.10"), c("$12.50")},
			{c("2"), c("$11.00"), c("$13.75")},
		}
		services, stats := Reconstruct(table, LayoutFor(false), nil)

		if stats.ServiceColumns != 2 {
			t.Fatalf("service columns = %d, want 2", stats.ServiceColumns)
		}
		if stats.Pairs != 4 {
			t.Fatalf("pairs = %d, want 4", stats.Pairs)
		}
		ground := findService(t, services, constants.Ground)
		if len(ground.Prices) != 2 || ground.Prices[0].Weight != 1 || ground.Prices[0].Price.String() != "10.1" {
			t.Fatalf("unexpected ground prices: %v", ground.Prices)
		}
	})

	t.Run("shifted layout reads weight from second column", func(t *testing.T) {
		table := Table{
			{c("caption"), c("Weight"), c("FedEx 2Day®")},
			{e(), c("5"), c("$18.40")},
		}
		services, _ := Reconstruct(table, LayoutFor(false), nil)
		twoDay := findService(t, services, constants.TwoDay)
		if len(twoDay.Prices) != 1 || twoDay.Prices[0].Weight != 5 {
			t.Fatalf("unexpected prices: %v", twoDay.Prices)
		}
	})

	t.Run("stacked weights pair positionally with stacked prices", func(t *testing.T) {
		table := Table{
			{c("Weight"), c("FedEx Ground®")},
			{c("1\n2\n3"), c("$10.00\n$11.00\n$12.00")},
		}
		services, stats := Reconstruct(table, LayoutFor(false), nil)
		ground := findService(t, services, constants.Ground)
		if len(ground.Prices) != 3 {
			t.Fatalf("prices = %v, want 3 entries", ground.Prices)
		}
		if ground.Prices[2].Weight != 3 || ground.Prices[2].Price.String() != "12" {
			t.Fatalf("third pairing = %+v", ground.Prices[2])
		}
		if stats.DroppedWeights != 0 {
			t.Fatalf("dropped = %d, want 0", stats.DroppedWeights)
		}
	})

	t.Run("short price list truncates pairing and counts the loss", func(t *testing.T) {
		table := Table{
			{c("Weight"), c("FedEx Ground®")},
			{c("1\n2\n3"), c("$10.00\n$11.00")},
		}
		services, stats := Reconstruct(table, LayoutFor(false), nil)
		ground := findService(t, services, constants.Ground)
		if len(ground.Prices) != 2 {
			t.Fatalf("prices = %v, want 2 entries", ground.Prices)
		}
		if stats.DroppedWeights != 1 {
			t.Fatalf("dropped = %d, want 1", stats.DroppedWeights)
		}
	})

	t.Run("table without service markers contributes nothing", func(t *testing.T) {
		table := Table{
			{c("Delivery commitment"), c("Monday"), c("Tuesday")},
			{c("1"), c("10:30 a.m."), c("10:30 a.m.")},
		}
		services, stats := Reconstruct(table, LayoutFor(false), nil)
		if services != nil || stats.Pairs != 0 {
			t.Fatalf("expected no records, got %v (%+v)", services, stats)
		}
	})

	t.Run("envelope artifact is not a service column", func(t *testing.T) {
		table := Table{
			{c("Weight"), c("FedEx Envelope® up to 8 oz."), c("FedEx Ground®")},
			{c("1"), c("$8.00"), c("$10.10")},
		}
		services, stats := Reconstruct(table, LayoutFor(false), nil)
		if stats.ServiceColumns != 1 {
			t.Fatalf("service columns = %d, want 1", stats.ServiceColumns)
		}
		if _, ok := entityZoneHas(services, constants.Ground); !ok {
			t.Fatalf("ground missing from %v", services)
		}
	})

	t.Run("empty and ragged rows are skipped", func(t *testing.T) {
		table := Table{
			{c("Weight"), c("FedEx Ground®")},
			{},
			{e(), e()},
			{c("not a weight")},
			{c("4"), c("$13.00")},
		}
		services, stats := Reconstruct(table, LayoutFor(false), nil)
		ground := findService(t, services, constants.Ground)
		if len(ground.Prices) != 1 || ground.Prices[0].Weight != 4 {
			t.Fatalf("prices = %v", ground.Prices)
		}
		if stats.SkippedRows != 3 {
			t.Fatalf("skipped rows = %d, want 3", stats.SkippedRows)
		}
	})

	t.Run("empty table", func(t *testing.T) {
		services, _ := Reconstruct(Table{}, LayoutFor(false), nil)
		if services != nil {
			t.Fatalf("expected nil, got %v", services)
		}
	})
}

func entityZoneHas(services []entity.Service, id constants.ServiceID) (entity.Service, bool) {
	for _, s := range services {
		if s.Name == id {
			return s, true
		}
	}
	return entity.Service{}, false
}

func TestReconstructHasToLayout(t *testing.T) {
	t.Parallel()

	table := Table{
		{c("FedEx Ground package rates to"), e(), c("Alaska")},
		{c("caption"), c("Weight"), c("FedEx Ground®")},
		{e(), c("1"), c("$20.00")},
		{e(), c("2"), c("$22.50")},
	}
	layout := LayoutFor(true)

	services, stats := Reconstruct(table, layout, nil)
	if stats.Pairs != 2 {
		t.Fatalf("pairs = %d, want 2", stats.Pairs)
	}
	if services[0].Name != constants.Ground {
		t.Fatalf("service = %s", services[0].Name)
	}
}

func TestZoneLabel(t *testing.T) {
	t.Parallel()

	t.Run("label in last cell", func(t *testing.T) {
		table := Table{{c("rates to"), e(), c("Alaska")}}
		label, ok := ZoneLabel(table, LayoutFor(true))
		if !ok || label != "Alaska" {
			t.Fatalf("got (%q, %t)", label, ok)
		}
	})

	t.Run("fallback offset when last cell is empty", func(t *testing.T) {
		table := Table{{c("rates to"), c("Zone 9"), e()}}
		label, ok := ZoneLabel(table, LayoutFor(true))
		if !ok || label != "9" {
			t.Fatalf("got (%q, %t)", label, ok)
		}
	})

	t.Run("no label cell", func(t *testing.T) {
		table := Table{{e(), e(), e()}}
		if label, ok := ZoneLabel(table, LayoutFor(true)); ok {
			t.Fatalf("expected no label, got %q", label)
		}
	})

	t.Run("zone row beyond table", func(t *testing.T) {
		if _, ok := ZoneLabel(Table{}, LayoutFor(true)); ok {
			t.Fatal("expected no label for empty table")
		}
	})
}
