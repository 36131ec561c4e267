package models

import (
	"github.com/uptrace/bun"
)

// DefaultTrip is a recurring scheduled service: a bus running a route at
// fixed times. Dated Trip instances are materialized from it on first
// booking.
type DefaultTrip struct {
	bun.BaseModel `bun:"table:default_trips"`

	ID          string `bun:"id,pk" json:"id"`
	RouteID     string `bun:"route_id,notnull" json:"routeId"`
	BusID       string `bun:"bus_id,notnull" json:"busId"`
	StartTime   string `bun:"start_time,notnull" json:"startTime"`
	ArrivalTime string `bun:"arrival_time,notnull" json:"arrivalTime"`
}
