package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// SeatSet is the set of booked seat numbers on a trip. It stays sorted and
// never holds duplicates, so membership is a binary search and the JSON
// form is stable. Stored as a JSON column so the same model works against
// PostgreSQL and the in-memory SQLite used in tests.
type SeatSet []int

func (s SeatSet) Contains(seat int) bool {
	i := sort.SearchInts(s, seat)
	return i < len(s) && s[i] == seat
}

// Add returns a copy with seat inserted in order. Adding a seat that is
// already present returns an equal copy.
func (s SeatSet) Add(seat int) SeatSet {
	i := sort.SearchInts(s, seat)
	if i < len(s) && s[i] == seat {
		return s.Clone()
	}
	out := make(SeatSet, 0, len(s)+1)
	out = append(out, s[:i]...)
	out = append(out, seat)
	out = append(out, s[i:]...)
	return out
}

// Remove returns a copy without seat. Removing an absent seat returns an
// equal copy.
func (s SeatSet) Remove(seat int) SeatSet {
	i := sort.SearchInts(s, seat)
	if i >= len(s) || s[i] != seat {
		return s.Clone()
	}
	out := make(SeatSet, 0, len(s)-1)
	out = append(out, s[:i]...)
	out = append(out, s[i+1:]...)
	return out
}

func (s SeatSet) Clone() SeatSet {
	out := make(SeatSet, len(s))
	copy(out, s)
	return out
}

// Max returns the highest booked seat number, or 0 for an empty set.
func (s SeatSet) Max() int {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// Ints returns the seats as a plain slice, never nil, for JSON payloads
// where an empty set must serialize as [].
func (s SeatSet) Ints() []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}

func (s SeatSet) Value() (driver.Value, error) {
	data, err := json.Marshal(s.Ints())
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (s *SeatSet) Scan(src interface{}) error {
	if src == nil {
		*s = SeatSet{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("seat set: cannot scan %T", src)
	}
	var seats []int
	if err := json.Unmarshal(data, &seats); err != nil {
		return fmt.Errorf("seat set: %w", err)
	}
	sort.Ints(seats)
	*s = seats
	return nil
}
