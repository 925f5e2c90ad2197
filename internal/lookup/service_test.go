package lookup

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/carrierdesk/rates-tracker/constants"
	"github.com/carrierdesk/rates-tracker/internal/entity"
	"github.com/carrierdesk/rates-tracker/internal/repository"
)

func seedRepo(t *testing.T) *repository.MemoryRateRepository {
	t.Helper()
	repo := repository.NewMemoryRateRepository()
	prices := func(pairs ...string) []entity.PriceEntry {
		var out []entity.PriceEntry
		for i := 0; i < len(pairs); i += 2 {
			w := 0
			for _, r := range pairs[i] {
				w = w*10 + int(r-'0')
			}
			out = append(out, entity.PriceEntry{Weight: w, Price: decimal.RequireFromString(pairs[i+1])})
		}
		return out
	}
	err := repo.InsertZone(context.Background(), entity.Zone{
		AreaZone: "2",
		Services: []entity.Service{
			{Name: constants.Ground, Prices: prices("1", "10.10", "5", "12.20", "10", "15.00", "20", "19.90")},
			{Name: constants.ExpressSaver, Prices: prices("1", "12.50")},
		},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return repo
}

func queryErr(t *testing.T, err error) *QueryError {
	t.Helper()
	var qerr *QueryError
	if !errors.As(err, &qerr) {
		t.Fatalf("err = %v, want *QueryError", err)
	}
	return qerr
}

func fieldIssue(t *testing.T, qerr *QueryError, field string) FieldIssue {
	t.Helper()
	for _, f := range qerr.Fields {
		if f.Field == field {
			return f
		}
	}
	t.Fatalf("no issue for field %q in %+v", field, qerr.Fields)
	return FieldIssue{}
}

func TestPrice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("ceiling match rounds up to the covering bracket", func(t *testing.T) {
		svc := NewService(seedRepo(t), nil)
		got, err := svc.Price(ctx, "ground zone 2 7lb")
		if err != nil {
			t.Fatalf("Price: %v", err)
		}
		if got.String() != "15" {
			t.Fatalf("price = %s, want the weight-10 bracket (15)", got)
		}
	})

	t.Run("exact weight matches its own bracket", func(t *testing.T) {
		svc := NewService(seedRepo(t), nil)
		got, err := svc.Price(ctx, "ground zone 2 5lb")
		if err != nil {
			t.Fatalf("Price: %v", err)
		}
		if got.String() != "12.2" {
			t.Fatalf("price = %s, want 12.2", got)
		}
	})

	t.Run("weight above every bracket is not found", func(t *testing.T) {
		svc := NewService(seedRepo(t), nil)
		_, err := svc.Price(ctx, "ground zone 2 25lb")
		qerr := queryErr(t, err)
		if qerr.Kind != KindNotFound {
			t.Fatalf("kind = %s, want not_found", qerr.Kind)
		}
		fieldIssue(t, qerr, "weight")
	})

	t.Run("unknown zone reports the known zones", func(t *testing.T) {
		svc := NewService(seedRepo(t), nil)
		_, err := svc.Price(ctx, "ground zone 9 3lb")
		qerr := queryErr(t, err)
		if qerr.Kind != KindNotFound {
			t.Fatalf("kind = %s, want not_found", qerr.Kind)
		}
		issue := fieldIssue(t, qerr, "zone")
		if len(issue.Known) != 1 || issue.Known[0] != "2" {
			t.Fatalf("known zones = %v, want [2]", issue.Known)
		}
	})

	t.Run("service missing from zone reports its services", func(t *testing.T) {
		svc := NewService(seedRepo(t), nil)
		_, err := svc.Price(ctx, "priority overnight zone 2 3lb")
		qerr := queryErr(t, err)
		if qerr.Kind != KindNotFound {
			t.Fatalf("kind = %s, want not_found", qerr.Kind)
		}
		issue := fieldIssue(t, qerr, "service")
		if len(issue.Known) != 2 {
			t.Fatalf("known services = %v, want the zone's two services", issue.Known)
		}
	})

	t.Run("unparseable query names every failed field", func(t *testing.T) {
		svc := NewService(seedRepo(t), nil)
		_, err := svc.Price(ctx, "teleport my box")
		qerr := queryErr(t, err)
		if qerr.Kind != KindValidation {
			t.Fatalf("kind = %s, want validation", qerr.Kind)
		}
		if len(qerr.Fields) != 3 {
			t.Fatalf("fields = %+v, want service, zone and weight", qerr.Fields)
		}
		issue := fieldIssue(t, qerr, "service")
		if len(issue.Known) == 0 {
			t.Fatal("service issue should list the valid services")
		}
	})

	t.Run("partial query fails only the missing fields", func(t *testing.T) {
		svc := NewService(seedRepo(t), nil)
		_, err := svc.Price(ctx, "ground zone 2")
		qerr := queryErr(t, err)
		if qerr.Kind != KindValidation {
			t.Fatalf("kind = %s, want validation", qerr.Kind)
		}
		if len(qerr.Fields) != 1 || qerr.Fields[0].Field != "weight" {
			t.Fatalf("fields = %+v, want only weight", qerr.Fields)
		}
	})
}
