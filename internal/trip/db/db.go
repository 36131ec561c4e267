package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"bus-reservations/internal/models"
)

// ErrTripNotFound signals that no instance matches the requested identity
// or triple.
var ErrTripNotFound = errors.New("trip not found")

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetTripByID(ctx context.Context, id string) (*models.Trip, error) {
	var trip models.Trip
	err := d.Bun.NewSelect().
		Model(&trip).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// GetTripByDetails looks up the one instance for a (bus, default trip,
// day) triple.
func (d *DB) GetTripByDetails(ctx context.Context, busID, defaultTripID string, day time.Time) (*models.Trip, error) {
	var trip models.Trip
	err := d.Bun.NewSelect().
		Model(&trip).
		Where("bus_id = ?", busID).
		Where("default_trip_id = ?", defaultTripID).
		Where("trip_date = ?", day).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// InsertTrip inserts a new instance, relying on the unique
// (bus_id, default_trip_id, trip_date) index to make concurrent first
// bookings converge. It reports false when another insert won the race.
func (d *DB) InsertTrip(ctx context.Context, trip *models.Trip) (bool, error) {
	res, err := d.Bun.NewInsert().
		Model(trip).
		Ignore().
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateSeats is the CAS write backing the booking engine: the seat set
// is replaced only while the stored version is still expectedVersion.
func (d *DB) UpdateSeats(ctx context.Context, tripID string, seats models.SeatSet, expectedVersion int64) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Trip)(nil)).
		Set("booked_seats = ?", seats).
		Set("version = version + 1").
		Where("id = ?", tripID).
		Where("version = ?", expectedVersion).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListTripsByBus returns every instance derived for a bus. Used by the
// directory service to reject capacity shrinks below booked seats.
func (d *DB) ListTripsByBus(ctx context.Context, busID string) ([]models.Trip, error) {
	var trips []models.Trip
	err := d.Bun.NewSelect().
		Model(&trips).
		Where("bus_id = ?", busID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return trips, nil
}
