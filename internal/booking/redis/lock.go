package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultLockTTL caps how long a seat lock can outlive its request. A
// booking holds the lock only for the CAS write, so the TTL matters only
// when a process dies mid-flight.
const DefaultLockTTL = 30 * time.Second

// SeatLock serializes seat mutations across requests with SetNX keys of
// the form seat_lock:<tripID>:<seat>.
type SeatLock struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewSeatLock(client *redis.Client, ttl time.Duration) *SeatLock {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &SeatLock{Client: client, TTL: ttl}
}

func seatKey(tripID string, seat int) string {
	return fmt.Sprintf("seat_lock:%s:%d", tripID, seat)
}

// LockSeat acquires the lock for one (trip, seat) pair. A false return
// means another booking for the same seat is mid-flight.
func (l *SeatLock) LockSeat(tripID string, seat int) (bool, error) {
	return l.Client.SetNX(context.Background(), seatKey(tripID, seat), "held", l.TTL).Result()
}

// UnlockSeat releases the lock. Releasing an expired or absent lock is
// not an error.
func (l *SeatLock) UnlockSeat(tripID string, seat int) error {
	return l.Client.Del(context.Background(), seatKey(tripID, seat)).Err()
}
