package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Trip is one dated occurrence of a default trip: the unit the booking
// engine mutates. The (bus, default trip, date) triple is unique so two
// concurrent first bookings cannot materialize two instances. Version
// backs the compare-and-swap on BookedSeats.
type Trip struct {
	bun.BaseModel `bun:"table:trips"`

	ID            string    `bun:"id,pk" json:"id"`
	TripDate      time.Time `bun:"trip_date,notnull,unique:trips_bus_template_date" json:"date"`
	BusID         string    `bun:"bus_id,notnull,unique:trips_bus_template_date" json:"busId"`
	DefaultTripID string    `bun:"default_trip_id,notnull,unique:trips_bus_template_date" json:"defaultTripId"`
	RouteID       string    `bun:"route_id,notnull" json:"routeId"`
	BookedSeats   SeatSet   `bun:"booked_seats,notnull" json:"bookedSeats"`
	Version       int64     `bun:"version,notnull" json:"-"`
}

// TripDay normalizes a timestamp to its calendar day in UTC. Two requests
// differing only in time-of-day resolve to the same trip instance.
func TripDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
