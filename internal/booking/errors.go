package booking

import "errors"

var (
	// ErrSeatOutOfRange means the seat number is outside [1, capacity].
	ErrSeatOutOfRange = errors.New("seat number out of range")

	// ErrSeatTaken means the seat is already held by another reservation
	// on the same trip instance.
	ErrSeatTaken = errors.New("seat already booked")
)
