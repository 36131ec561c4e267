package sse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus-reservations/internal/models"
)

func sampleEvent(tripID string, seats ...int) models.SeatReservationUpdate {
	return models.SeatReservationUpdate{
		Type:        models.SeatReservationUpdateType,
		BusID:       "bus-1",
		TripID:      tripID,
		BookedSeats: seats,
	}
}

func TestEmit_ReachesAllSubscribers(t *testing.T) {
	emitter := NewSeatEventEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := emitter.Subscribe(ctx)
	second := emitter.Subscribe(ctx)
	assert.Equal(t, 2, emitter.ClientCount())

	emitter.Emit(sampleEvent("trip-1", 12))

	for _, ch := range []chan models.SeatReservationUpdate{first, second} {
		select {
		case got := <-ch:
			assert.Equal(t, "trip-1", got.TripID)
			assert.Equal(t, []int{12}, got.BookedSeats)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestSubscribe_ContextCancelRemovesClient(t *testing.T) {
	emitter := NewSeatEventEmitter()
	ctx, cancel := context.WithCancel(context.Background())

	ch := emitter.Subscribe(ctx)
	require.Equal(t, 1, emitter.ClientCount())

	cancel()

	// The cleanup goroutine closes the channel.
	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("channel was not closed after context cancel")
	}

	deadline := time.Now().Add(time.Second)
	for emitter.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 0, emitter.ClientCount())
}

func TestEmit_SlowClientDoesNotBlock(t *testing.T) {
	emitter := NewSeatEventEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Never drained; its buffer fills and further events are dropped.
	emitter.Subscribe(ctx)
	active := emitter.Subscribe(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			emitter.Emit(sampleEvent("trip-1", i))
		}
		close(done)
	}()

	received := 0
	for received < 10 {
		select {
		case <-active:
			received++
		case <-time.After(time.Second):
			t.Fatal("active subscriber starved")
		}
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("emit blocked on the slow client")
	}
}

func TestEmit_NoSubscribers(t *testing.T) {
	emitter := NewSeatEventEmitter()
	assert.NotPanics(t, func() {
		emitter.Emit(sampleEvent("trip-1", 12))
	})
}
