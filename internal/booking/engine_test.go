package booking_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus-reservations/internal/booking"
	"bus-reservations/internal/models"
)

// fakeTripStore keeps one trip in memory and applies the same
// compare-and-swap rule the SQL store does, so lost races behave like
// production.
type fakeTripStore struct {
	mu   sync.Mutex
	trip models.Trip
}

func (f *fakeTripStore) GetTripByID(_ context.Context, id string) (*models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy := f.trip
	copy.BookedSeats = f.trip.BookedSeats.Clone()
	return &copy, nil
}

func (f *fakeTripStore) UpdateSeats(_ context.Context, tripID string, seats models.SeatSet, expectedVersion int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.trip.Version != expectedVersion {
		return false, nil
	}
	f.trip.BookedSeats = seats.Clone()
	f.trip.Version++
	return true, nil
}

// fakeSeatLock mirrors the SetNX semantics of the Redis lock.
type fakeSeatLock struct {
	mu   sync.Mutex
	held map[string]map[int]bool
}

func newFakeSeatLock() *fakeSeatLock {
	return &fakeSeatLock{held: make(map[string]map[int]bool)}
}

func (f *fakeSeatLock) LockSeat(tripID string, seat int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[tripID] == nil {
		f.held[tripID] = make(map[int]bool)
	}
	if f.held[tripID][seat] {
		return false, nil
	}
	f.held[tripID][seat] = true
	return true, nil
}

func (f *fakeSeatLock) UnlockSeat(tripID string, seat int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held[tripID], seat)
	return nil
}

func newTestEngine(booked ...int) (*booking.Engine, *fakeTripStore, *models.Trip) {
	seats := models.SeatSet{}
	for _, s := range booked {
		seats = seats.Add(s)
	}
	store := &fakeTripStore{trip: models.Trip{
		ID:          "trip-1",
		BusID:       "bus-1",
		BookedSeats: seats,
	}}
	trip, _ := store.GetTripByID(context.Background(), "trip-1")
	return booking.NewEngine(store, newFakeSeatLock()), store, trip
}

func TestBookSeat_Success(t *testing.T) {
	engine, store, trip := newTestEngine()

	err := engine.BookSeat(context.Background(), trip, 12, 40)
	require.NoError(t, err)

	assert.True(t, trip.BookedSeats.Contains(12))
	persisted, _ := store.GetTripByID(context.Background(), "trip-1")
	assert.Equal(t, models.SeatSet{12}, persisted.BookedSeats)
}

func TestBookSeat_RangeBoundaries(t *testing.T) {
	capacity := 40
	cases := []struct {
		seat int
		ok   bool
	}{
		{0, false},
		{1, true},
		{capacity, true},
		{capacity + 1, false},
		{-3, false},
	}
	for _, tc := range cases {
		engine, _, trip := newTestEngine()
		err := engine.BookSeat(context.Background(), trip, tc.seat, capacity)
		if tc.ok {
			assert.NoError(t, err, "seat %d", tc.seat)
		} else {
			assert.ErrorIs(t, err, booking.ErrSeatOutOfRange, "seat %d", tc.seat)
		}
	}
}

func TestBookSeat_AlreadyBooked(t *testing.T) {
	engine, store, trip := newTestEngine(12)

	err := engine.BookSeat(context.Background(), trip, 12, 40)
	assert.ErrorIs(t, err, booking.ErrSeatTaken)

	persisted, _ := store.GetTripByID(context.Background(), "trip-1")
	assert.Equal(t, models.SeatSet{12}, persisted.BookedSeats)
	assert.EqualValues(t, 0, persisted.Version)
}

func TestBookSeat_LockHeldByAnotherRequest(t *testing.T) {
	lock := newFakeSeatLock()
	store := &fakeTripStore{trip: models.Trip{ID: "trip-1", BookedSeats: models.SeatSet{}}}
	engine := booking.NewEngine(store, lock)
	trip, _ := store.GetTripByID(context.Background(), "trip-1")

	held, err := lock.LockSeat("trip-1", 5)
	require.NoError(t, err)
	require.True(t, held)

	err = engine.BookSeat(context.Background(), trip, 5, 40)
	assert.ErrorIs(t, err, booking.ErrSeatTaken)
}

func TestBookSeat_StaleTripLosesToFresherState(t *testing.T) {
	engine, store, trip := newTestEngine()

	// Another request books seat 7 behind this trip copy's back.
	other, _ := store.GetTripByID(context.Background(), "trip-1")
	require.NoError(t, engine.BookSeat(context.Background(), other, 7, 40))

	// The stale copy re-validates after the lost CAS and still refuses
	// the taken seat.
	err := engine.BookSeat(context.Background(), trip, 7, 40)
	assert.ErrorIs(t, err, booking.ErrSeatTaken)

	// A different seat on the stale copy succeeds via reload.
	require.NoError(t, engine.BookSeat(context.Background(), trip, 8, 40))
	persisted, _ := store.GetTripByID(context.Background(), "trip-1")
	assert.Equal(t, models.SeatSet{7, 8}, persisted.BookedSeats)
}

func TestBookSeat_ConcurrentSameSeatOneWinner(t *testing.T) {
	engine, store, _ := newTestEngine()

	const attempts = 20
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			trip, _ := store.GetTripByID(context.Background(), "trip-1")
			errs <- engine.BookSeat(context.Background(), trip, 12, 40)
		}()
	}
	wg.Wait()
	close(errs)

	successes, taken := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, booking.ErrSeatTaken):
			taken++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, taken)

	persisted, _ := store.GetTripByID(context.Background(), "trip-1")
	assert.Equal(t, models.SeatSet{12}, persisted.BookedSeats)
}

func TestReassignSeat_MovesHold(t *testing.T) {
	engine, store, trip := newTestEngine(12)

	err := engine.ReassignSeat(context.Background(), trip, 12, 15, 40)
	require.NoError(t, err)

	persisted, _ := store.GetTripByID(context.Background(), "trip-1")
	assert.Equal(t, models.SeatSet{15}, persisted.BookedSeats)
}

func TestReassignSeat_SameSeatIsNoOp(t *testing.T) {
	engine, store, trip := newTestEngine(12)

	require.NoError(t, engine.ReassignSeat(context.Background(), trip, 12, 12, 40))

	persisted, _ := store.GetTripByID(context.Background(), "trip-1")
	assert.EqualValues(t, 0, persisted.Version)
}

func TestReassignSeat_TargetTaken(t *testing.T) {
	engine, store, trip := newTestEngine(12, 15)

	err := engine.ReassignSeat(context.Background(), trip, 12, 15, 40)
	assert.ErrorIs(t, err, booking.ErrSeatTaken)

	persisted, _ := store.GetTripByID(context.Background(), "trip-1")
	assert.Equal(t, models.SeatSet{12, 15}, persisted.BookedSeats)
}

func TestReassignSeat_TargetOutOfRange(t *testing.T) {
	engine, _, trip := newTestEngine(12)

	err := engine.ReassignSeat(context.Background(), trip, 12, 41, 40)
	assert.ErrorIs(t, err, booking.ErrSeatOutOfRange)
}

func TestReleaseSeat_RemovesHold(t *testing.T) {
	engine, store, trip := newTestEngine(12)

	require.NoError(t, engine.ReleaseSeat(context.Background(), trip, 12))

	persisted, _ := store.GetTripByID(context.Background(), "trip-1")
	assert.Len(t, persisted.BookedSeats, 0)
}

func TestReleaseSeat_IdempotentOnUnbookedSeat(t *testing.T) {
	engine, store, trip := newTestEngine()

	require.NoError(t, engine.ReleaseSeat(context.Background(), trip, 12))

	persisted, _ := store.GetTripByID(context.Background(), "trip-1")
	assert.EqualValues(t, 0, persisted.Version)
}

func TestReleaseThenRebook(t *testing.T) {
	engine, _, trip := newTestEngine(12)

	require.NoError(t, engine.ReleaseSeat(context.Background(), trip, 12))
	require.NoError(t, engine.BookSeat(context.Background(), trip, 12, 40))

	assert.True(t, trip.BookedSeats.Contains(12))
}
