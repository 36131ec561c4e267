package booking

import (
	"context"
	"errors"
	"fmt"

	"bus-reservations/internal/models"
)

// TripStore persists a trip's booked-seat set. UpdateSeats is a
// compare-and-swap: it writes only when the stored version still equals
// expectedVersion and reports whether the write happened.
type TripStore interface {
	GetTripByID(ctx context.Context, id string) (*models.Trip, error)
	UpdateSeats(ctx context.Context, tripID string, seats models.SeatSet, expectedVersion int64) (bool, error)
}

// SeatLocker serializes concurrent attempts on the same (trip, seat)
// pair. A held lock means another booking is mid-flight for that seat.
type SeatLocker interface {
	LockSeat(tripID string, seat int) (bool, error)
	UnlockSeat(tripID string, seat int) error
}

// Engine enforces exclusive seat assignment on a trip instance. All
// mutations go through the per-seat lock and the versioned CAS write, so
// two concurrent bookings for one seat end as one success and one
// ErrSeatTaken. On success the passed trip is updated in place to the
// committed state.
type Engine struct {
	Store TripStore
	Locks SeatLocker
}

func NewEngine(store TripStore, locks SeatLocker) *Engine {
	return &Engine{Store: store, Locks: locks}
}

// casRetries bounds reloads when a CAS write loses to a concurrent
// mutation of a different seat on the same trip.
const casRetries = 5

var errContention = errors.New("seat set update contention not resolved")

// BookSeat inserts seat into the trip's booked set. It fails with
// ErrSeatOutOfRange outside [1, capacity] and ErrSeatTaken when the seat
// is already held.
func (e *Engine) BookSeat(ctx context.Context, trip *models.Trip, seat, capacity int) error {
	if seat < 1 || seat > capacity {
		return fmt.Errorf("seat %d of %d: %w", seat, capacity, ErrSeatOutOfRange)
	}
	if trip.BookedSeats.Contains(seat) {
		return fmt.Errorf("seat %d: %w", seat, ErrSeatTaken)
	}

	ok, err := e.Locks.LockSeat(trip.ID, seat)
	if err != nil {
		return fmt.Errorf("lock seat %d: %w", seat, err)
	}
	if !ok {
		return fmt.Errorf("seat %d: %w", seat, ErrSeatTaken)
	}
	defer func() { _ = e.Locks.UnlockSeat(trip.ID, seat) }()

	for attempt := 0; attempt < casRetries; attempt++ {
		if trip.BookedSeats.Contains(seat) {
			return fmt.Errorf("seat %d: %w", seat, ErrSeatTaken)
		}
		committed, err := e.commit(ctx, trip, trip.BookedSeats.Add(seat))
		if err != nil {
			return err
		}
		if committed {
			return nil
		}
	}
	return errContention
}

// ReassignSeat atomically moves a hold from oldSeat to newSeat. Equal
// seats are a no-op success. Collision with a different hold on newSeat
// fails with ErrSeatTaken; oldSeat's own membership never counts as a
// collision.
func (e *Engine) ReassignSeat(ctx context.Context, trip *models.Trip, oldSeat, newSeat, capacity int) error {
	if newSeat == oldSeat {
		return nil
	}
	if newSeat < 1 || newSeat > capacity {
		return fmt.Errorf("seat %d of %d: %w", newSeat, capacity, ErrSeatOutOfRange)
	}

	ok, err := e.Locks.LockSeat(trip.ID, newSeat)
	if err != nil {
		return fmt.Errorf("lock seat %d: %w", newSeat, err)
	}
	if !ok {
		return fmt.Errorf("seat %d: %w", newSeat, ErrSeatTaken)
	}
	defer func() { _ = e.Locks.UnlockSeat(trip.ID, newSeat) }()

	for attempt := 0; attempt < casRetries; attempt++ {
		if trip.BookedSeats.Contains(newSeat) {
			return fmt.Errorf("seat %d: %w", newSeat, ErrSeatTaken)
		}
		next := trip.BookedSeats.Remove(oldSeat).Add(newSeat)
		committed, err := e.commit(ctx, trip, next)
		if err != nil {
			return err
		}
		if committed {
			return nil
		}
	}
	return errContention
}

// ReleaseSeat removes seat from the booked set. Releasing a seat that is
// not booked succeeds without writing: the end state is already the
// desired one, and idempotence keeps cancel flows safe to repeat.
func (e *Engine) ReleaseSeat(ctx context.Context, trip *models.Trip, seat int) error {
	for attempt := 0; attempt < casRetries; attempt++ {
		if !trip.BookedSeats.Contains(seat) {
			return nil
		}
		committed, err := e.commit(ctx, trip, trip.BookedSeats.Remove(seat))
		if err != nil {
			return err
		}
		if committed {
			return nil
		}
	}
	return errContention
}

// commit attempts one CAS write of next. On a lost race it reloads the
// trip so the caller re-validates against fresh state.
func (e *Engine) commit(ctx context.Context, trip *models.Trip, next models.SeatSet) (bool, error) {
	ok, err := e.Store.UpdateSeats(ctx, trip.ID, next, trip.Version)
	if err != nil {
		return false, fmt.Errorf("persist booked seats for trip %s: %w", trip.ID, err)
	}
	if ok {
		trip.BookedSeats = next
		trip.Version++
		return true, nil
	}
	fresh, err := e.Store.GetTripByID(ctx, trip.ID)
	if err != nil {
		return false, fmt.Errorf("reload trip %s: %w", trip.ID, err)
	}
	*trip = *fresh
	return false, nil
}
