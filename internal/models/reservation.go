package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

// Reservation ties one commuter to one seat on one trip instance. Its
// seat number must always equal an entry in the trip's booked-seat set;
// the reservation service maintains that invariant on every mutation.
type Reservation struct {
	bun.BaseModel `bun:"table:reservations"`

	ID            string    `bun:"id,pk" json:"id"`
	CommuterID    string    `bun:"commuter_id,notnull" json:"commuter"`
	BusID         string    `bun:"bus_id,notnull" json:"bus"`
	TripID        string    `bun:"trip_id,notnull" json:"trip"`
	SeatNumber    int       `bun:"seat_number,notnull" json:"seatNumber"`
	PaymentStatus string    `bun:"payment_status,notnull" json:"paymentStatus"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"createdAt"`
}

// ValidPaymentStatus reports whether s is one of the accepted payment
// status labels.
func ValidPaymentStatus(s string) bool {
	return s == PaymentPending || s == PaymentCompleted
}
