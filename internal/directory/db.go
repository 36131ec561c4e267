package directory

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"bus-reservations/internal/models"
)

// ErrNotFound signals an absent bus, route, or default-trip record.
var ErrNotFound = errors.New("record not found")

// DB is the directory store: bus, route, and default-trip records. The
// booking core only reads from it; the administrative handlers also
// write.
type DB struct {
	Bun *bun.DB
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// ---------------- BUSES ----------------

func (d *DB) GetBus(ctx context.Context, id string) (*models.Bus, error) {
	var bus models.Bus
	err := d.Bun.NewSelect().Model(&bus).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &bus, nil
}

func (d *DB) GetBusByNumber(ctx context.Context, number string) (*models.Bus, error) {
	var bus models.Bus
	err := d.Bun.NewSelect().Model(&bus).Where("bus_number = ?", number).Limit(1).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &bus, nil
}

func (d *DB) ListBuses(ctx context.Context) ([]models.Bus, error) {
	var buses []models.Bus
	if err := d.Bun.NewSelect().Model(&buses).Order("bus_number").Scan(ctx); err != nil {
		return nil, err
	}
	return buses, nil
}

func (d *DB) CreateBus(ctx context.Context, bus *models.Bus) error {
	_, err := d.Bun.NewInsert().Model(bus).Exec(ctx)
	return err
}

func (d *DB) UpdateBus(ctx context.Context, bus *models.Bus) error {
	res, err := d.Bun.NewUpdate().
		Model(bus).
		Column("bus_number", "operator_id", "route_id", "capacity").
		Where("id = ?", bus.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DB) DeleteBus(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().Model((*models.Bus)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------- ROUTES ----------------

func (d *DB) GetRoute(ctx context.Context, id string) (*models.Route, error) {
	var route models.Route
	err := d.Bun.NewSelect().Model(&route).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &route, nil
}

func (d *DB) ListRoutes(ctx context.Context) ([]models.Route, error) {
	var routes []models.Route
	if err := d.Bun.NewSelect().Model(&routes).Order("start_point").Scan(ctx); err != nil {
		return nil, err
	}
	return routes, nil
}

func (d *DB) CreateRoute(ctx context.Context, route *models.Route) error {
	_, err := d.Bun.NewInsert().Model(route).Exec(ctx)
	return err
}

func (d *DB) UpdateRoute(ctx context.Context, route *models.Route) error {
	res, err := d.Bun.NewUpdate().
		Model(route).
		Column("start_point", "end_point", "distance", "estimated_time", "fare").
		Where("id = ?", route.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DB) DeleteRoute(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().Model((*models.Route)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------- DEFAULT TRIPS ----------------

func (d *DB) GetDefaultTrip(ctx context.Context, id string) (*models.DefaultTrip, error) {
	var tmpl models.DefaultTrip
	err := d.Bun.NewSelect().Model(&tmpl).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &tmpl, nil
}

func (d *DB) ListDefaultTrips(ctx context.Context) ([]models.DefaultTrip, error) {
	var tmpls []models.DefaultTrip
	if err := d.Bun.NewSelect().Model(&tmpls).Order("start_time").Scan(ctx); err != nil {
		return nil, err
	}
	return tmpls, nil
}

func (d *DB) CreateDefaultTrip(ctx context.Context, tmpl *models.DefaultTrip) error {
	_, err := d.Bun.NewInsert().Model(tmpl).Exec(ctx)
	return err
}

func (d *DB) DeleteDefaultTrip(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().Model((*models.DefaultTrip)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
