package trip

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"bus-reservations/internal/models"
	"bus-reservations/internal/trip/db"
)

// Store is the persistence the resolver needs. InsertTrip must be atomic
// against the triple's uniqueness: it reports false instead of erroring
// when a concurrent insert created the row first.
type Store interface {
	GetTripByDetails(ctx context.Context, busID, defaultTripID string, day time.Time) (*models.Trip, error)
	InsertTrip(ctx context.Context, trip *models.Trip) (bool, error)
}

// TemplateDirectory resolves default-trip templates; absence is
// propagated, never defaulted.
type TemplateDirectory interface {
	GetDefaultTrip(ctx context.Context, id string) (*models.DefaultTrip, error)
}

// Resolver materializes the one trip instance for a (bus, default trip,
// date) triple, creating it lazily on first booking.
type Resolver struct {
	Store     Store
	Directory TemplateDirectory
}

func NewResolver(store Store, directory TemplateDirectory) *Resolver {
	return &Resolver{Store: store, Directory: directory}
}

// ResolveOrCreate returns the existing instance for the triple or creates
// one with an empty booked-seat set. The date's time-of-day is discarded.
// Two concurrent calls for the same triple return the same instance: the
// insert is an insert-or-ignore against the unique triple index and a
// lost race is retried as a lookup.
func (r *Resolver) ResolveOrCreate(ctx context.Context, busID, defaultTripID string, date time.Time) (*models.Trip, error) {
	day := models.TripDay(date)

	existing, err := r.Store.GetTripByDetails(ctx, busID, defaultTripID, day)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, db.ErrTripNotFound) {
		return nil, err
	}

	tmpl, err := r.Directory.GetDefaultTrip(ctx, defaultTripID)
	if err != nil {
		return nil, err
	}

	candidate := &models.Trip{
		ID:            uuid.NewString(),
		TripDate:      day,
		BusID:         busID,
		DefaultTripID: defaultTripID,
		RouteID:       tmpl.RouteID,
		BookedSeats:   models.SeatSet{},
	}
	inserted, err := r.Store.InsertTrip(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if inserted {
		return candidate, nil
	}
	return r.Store.GetTripByDetails(ctx, busID, defaultTripID, day)
}
