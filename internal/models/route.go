package models

import (
	"github.com/uptrace/bun"
)

type Route struct {
	bun.BaseModel `bun:"table:routes"`

	ID            string  `bun:"id,pk" json:"id"`
	StartPoint    string  `bun:"start_point,notnull" json:"startPoint"`
	EndPoint      string  `bun:"end_point,notnull" json:"endPoint"`
	Distance      float64 `bun:"distance,notnull" json:"distance"`
	EstimatedTime string  `bun:"estimated_time,notnull" json:"estimatedTime"`
	Fare          float64 `bun:"fare,notnull" json:"fare"`
}
