package sse

import (
	"context"
	"sync"

	"bus-reservations/internal/models"
)

// SeatEventEmitter fans occupancy updates out to every connected
// observer. Delivery is best-effort: sends are non-blocking, a slow
// client's full buffer drops the event for that client, and there is no
// replay for clients that connect later. Every observer receives every
// event; filtering by trip happens client-side.
type SeatEventEmitter struct {
	clients     map[chan models.SeatReservationUpdate]struct{}
	clientMutex sync.RWMutex
}

func NewSeatEventEmitter() *SeatEventEmitter {
	return &SeatEventEmitter{
		clients: make(map[chan models.SeatReservationUpdate]struct{}),
	}
}

// Subscribe registers an observer. The channel is closed and removed when
// ctx ends.
func (e *SeatEventEmitter) Subscribe(ctx context.Context) chan models.SeatReservationUpdate {
	clientChan := make(chan models.SeatReservationUpdate, 10)

	e.clientMutex.Lock()
	e.clients[clientChan] = struct{}{}
	e.clientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.remove(clientChan)
	}()

	return clientChan
}

// Emit broadcasts one occupancy update to all observers.
func (e *SeatEventEmitter) Emit(event models.SeatReservationUpdate) {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()

	for clientChan := range e.clients {
		select {
		case clientChan <- event:
		default:
			// Buffer full, client catches up from the next snapshot.
		}
	}
}

func (e *SeatEventEmitter) remove(clientChan chan models.SeatReservationUpdate) {
	e.clientMutex.Lock()
	defer e.clientMutex.Unlock()

	if _, ok := e.clients[clientChan]; ok {
		delete(e.clients, clientChan)
		close(clientChan)
	}
}

// ClientCount returns the number of connected observers.
func (e *SeatEventEmitter) ClientCount() int {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()
	return len(e.clients)
}
