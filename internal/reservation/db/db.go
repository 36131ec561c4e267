package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"bus-reservations/internal/models"
)

var ErrReservationNotFound = errors.New("reservation not found")

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateReservation(ctx context.Context, res *models.Reservation) error {
	_, err := d.Bun.NewInsert().Model(res).Exec(ctx)
	return err
}

func (d *DB) GetReservationByID(ctx context.Context, id string) (*models.Reservation, error) {
	var res models.Reservation
	err := d.Bun.NewSelect().
		Model(&res).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (d *DB) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	var out []models.Reservation
	err := d.Bun.NewSelect().
		Model(&out).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListReservationsByTrip returns the live holds on one trip instance,
// ordered by seat.
func (d *DB) ListReservationsByTrip(ctx context.Context, tripID string) ([]models.Reservation, error) {
	var out []models.Reservation
	err := d.Bun.NewSelect().
		Model(&out).
		Where("trip_id = ?", tripID).
		Order("seat_number").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *DB) UpdateReservation(ctx context.Context, res *models.Reservation) error {
	result, err := d.Bun.NewUpdate().
		Model(res).
		Column("seat_number", "payment_status").
		Where("id = ?", res.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func (d *DB) DeleteReservation(ctx context.Context, id string) error {
	result, err := d.Bun.NewDelete().
		Model((*models.Reservation)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrReservationNotFound
	}
	return nil
}
