package models

import (
	"github.com/uptrace/bun"
)

type Bus struct {
	bun.BaseModel `bun:"table:buses"`

	ID         string `bun:"id,pk" json:"id"`
	BusNumber  string `bun:"bus_number,unique,notnull" json:"busNumber"`
	OperatorID string `bun:"operator_id,notnull" json:"operatorId"`
	RouteID    string `bun:"route_id,notnull" json:"routeId"`
	Capacity   int    `bun:"capacity,notnull" json:"capacity"`
}
