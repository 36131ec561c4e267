package redis

import (
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestLockSeat_Exclusive(t *testing.T) {
	client, _ := setupTestRedis(t)
	lock := NewSeatLock(client, time.Minute)

	ok, err := lock.LockSeat("trip-1", 12)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second acquisition of the same (trip, seat) fails.
	ok, err = lock.LockSeat("trip-1", 12)
	require.NoError(t, err)
	assert.False(t, ok)

	// Same seat on another trip is an independent lock.
	ok, err = lock.LockSeat("trip-2", 12)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnlockSeat_FreesTheLock(t *testing.T) {
	client, _ := setupTestRedis(t)
	lock := NewSeatLock(client, time.Minute)

	ok, err := lock.LockSeat("trip-1", 12)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, lock.UnlockSeat("trip-1", 12))

	ok, err = lock.LockSeat("trip-1", 12)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnlockSeat_AbsentLockIsNotAnError(t *testing.T) {
	client, _ := setupTestRedis(t)
	lock := NewSeatLock(client, time.Minute)

	assert.NoError(t, lock.UnlockSeat("trip-1", 99))
}

func TestLockSeat_ExpiresAfterTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	lock := NewSeatLock(client, time.Second)

	ok, err := lock.LockSeat("trip-1", 12)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = lock.LockSeat("trip-1", 12)
	require.NoError(t, err)
	assert.True(t, ok, "lock should be reacquirable after TTL expiry")
}

func TestLockSeat_ConcurrentSingleWinner(t *testing.T) {
	client, _ := setupTestRedis(t)
	lock := NewSeatLock(client, time.Minute)

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := lock.LockSeat("trip-1", 12)
			require.NoError(t, err)
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for ok := range results {
		if ok {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestNewSeatLock_DefaultTTL(t *testing.T) {
	client, _ := setupTestRedis(t)
	lock := NewSeatLock(client, 0)
	assert.Equal(t, DefaultLockTTL, lock.TTL)
}
