package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/carrierdesk/rates-tracker/constants"
	"github.com/carrierdesk/rates-tracker/internal/common"
	"github.com/carrierdesk/rates-tracker/internal/entity"
)

// RateRepository is the persistent rate table. Mutations are additive only:
// re-ingesting the same document must never overwrite or delete an existing
// price entry. DropAll is the one exception, used when rehydrating from a
// flat export that replaces the whole table.
type RateRepository interface {
	FindZone(ctx context.Context, areaZone string) (*entity.Zone, error)
	InsertZone(ctx context.Context, zone entity.Zone) error
	AppendServices(ctx context.Context, areaZone string, services []entity.Service) error
	AppendPrices(ctx context.Context, areaZone string, service constants.ServiceID, entries []entity.PriceEntry) error
	ListZones(ctx context.Context) ([]string, error)
	ListServices(ctx context.Context, areaZone string) ([]constants.ServiceID, error)
	Count(ctx context.Context) (int, error)
	DropAll(ctx context.Context) error
}

const rateSchema = `
CREATE TABLE IF NOT EXISTS zones (
	area_zone TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS rate_entries (
	area_zone TEXT NOT NULL,
	service   TEXT NOT NULL,
	weight    INTEGER NOT NULL,
	price     TEXT NOT NULL,
	PRIMARY KEY (area_zone, service, weight)
);
`

type rateRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRateRepository creates the SQL-backed store and ensures its schema.
func NewRateRepository(ctx context.Context, db *sql.DB, logger *slog.Logger) (RateRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := db.ExecContext(ctx, rateSchema); err != nil {
		return nil, fmt.Errorf("ensure rate schema: %w", err)
	}
	return &rateRepository{db: db, logger: logger}, nil
}

func (r *rateRepository) FindZone(ctx context.Context, areaZone string) (*entity.Zone, error) {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM zones WHERE area_zone = $1`, areaZone).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("find zone %q: %w", areaZone, err)
	}
	if exists == 0 {
		return nil, common.ErrNotFound
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT service, weight, price FROM rate_entries
		 WHERE area_zone = $1 ORDER BY service, weight`, areaZone)
	if err != nil {
		return nil, fmt.Errorf("load zone %q: %w", areaZone, err)
	}
	defer rows.Close()

	zone := &entity.Zone{AreaZone: areaZone}
	for rows.Next() {
		var (
			svc      string
			weight   int
			priceStr string
		)
		if err := rows.Scan(&svc, &weight, &priceStr); err != nil {
			return nil, fmt.Errorf("scan zone %q: %w", areaZone, err)
		}
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			r.logger.Error("rates.bad_stored_price", "area_zone", areaZone, "service", svc, "weight", weight, "error", err)
			continue
		}
		appendEntry(zone, constants.ServiceID(svc), entity.PriceEntry{Weight: weight, Price: price})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate zone %q: %w", areaZone, err)
	}
	return zone, nil
}

func (r *rateRepository) InsertZone(ctx context.Context, zone entity.Zone) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert zone: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO zones (area_zone) VALUES ($1) ON CONFLICT DO NOTHING`, zone.AreaZone); err != nil {
		return fmt.Errorf("insert zone %q: %w", zone.AreaZone, err)
	}
	for _, svc := range zone.Services {
		if err := insertEntries(ctx, tx, zone.AreaZone, svc.Name, svc.Prices); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *rateRepository) AppendServices(ctx context.Context, areaZone string, services []entity.Service) error {
	return r.InsertZone(ctx, entity.Zone{AreaZone: areaZone, Services: services})
}

func (r *rateRepository) AppendPrices(ctx context.Context, areaZone string, service constants.ServiceID, entries []entity.PriceEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append prices: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := insertEntries(ctx, tx, areaZone, service, entries); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *rateRepository) ListZones(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT area_zone FROM zones ORDER BY area_zone`)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	defer rows.Close()
	var zones []string
	for rows.Next() {
		var z string
		if err := rows.Scan(&z); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

func (r *rateRepository) ListServices(ctx context.Context, areaZone string) ([]constants.ServiceID, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT service FROM rate_entries WHERE area_zone = $1 ORDER BY service`, areaZone)
	if err != nil {
		return nil, fmt.Errorf("list services for %q: %w", areaZone, err)
	}
	defer rows.Close()
	var out []constants.ServiceID
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, constants.ServiceID(s))
	}
	return out, rows.Err()
}

func (r *rateRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM rate_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rate entries: %w", err)
	}
	return n, nil
}

func (r *rateRepository) DropAll(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin drop all: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM rate_entries`); err != nil {
		return fmt.Errorf("drop entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM zones`); err != nil {
		return fmt.Errorf("drop zones: %w", err)
	}
	return tx.Commit()
}

// insertEntries appends entries for one service, skipping any weight that
// already exists (first write wins).
func insertEntries(ctx context.Context, tx *sql.Tx, areaZone string, service constants.ServiceID, entries []entity.PriceEntry) error {
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rate_entries (area_zone, service, weight, price)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT DO NOTHING`,
			areaZone, string(service), e.Weight, e.Price.String()); err != nil {
			return fmt.Errorf("append %s/%s/%d: %w", areaZone, service, e.Weight, err)
		}
	}
	return nil
}

func appendEntry(zone *entity.Zone, service constants.ServiceID, e entity.PriceEntry) {
	for i := range zone.Services {
		if zone.Services[i].Name == service {
			zone.Services[i].Prices = append(zone.Services[i].Prices, e)
			return
		}
	}
	zone.Services = append(zone.Services, entity.Service{Name: service, Prices: []entity.PriceEntry{e}})
}
