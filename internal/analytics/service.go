package analytics

import (
	"context"

	"github.com/uptrace/bun"
)

// Service aggregates reservation data for operator dashboards. Read-only;
// it never touches the booking core.
type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// BusOccupancy is aggregated seat usage for one bus across all of its
// trip instances.
type BusOccupancy struct {
	BusID       string `json:"bus_id"`
	BusNumber   string `json:"bus_number"`
	Capacity    int    `json:"capacity"`
	TripCount   int    `json:"trip_count"`
	SeatsBooked int    `json:"seats_booked"`
}

// DailyReservations counts ledger entries per calendar day.
type DailyReservations struct {
	Date      string `json:"date"`
	Count     int    `json:"count"`
	Completed int    `json:"completed"`
}

func (s *Service) OccupancyByBus(ctx context.Context) ([]BusOccupancy, error) {
	var out []BusOccupancy
	err := s.db.NewSelect().
		TableExpr("reservations AS r").
		ColumnExpr("r.bus_id AS bus_id").
		ColumnExpr("b.bus_number AS bus_number").
		ColumnExpr("b.capacity AS capacity").
		ColumnExpr("COUNT(DISTINCT r.trip_id) AS trip_count").
		ColumnExpr("COUNT(*) AS seats_booked").
		Join("JOIN buses b ON b.id = r.bus_id").
		GroupExpr("r.bus_id, b.bus_number, b.capacity").
		OrderExpr("b.bus_number").
		Scan(ctx, &out)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []BusOccupancy{}
	}
	return out, nil
}

func (s *Service) ReservationsByDay(ctx context.Context) ([]DailyReservations, error) {
	var out []DailyReservations
	err := s.db.NewSelect().
		TableExpr("reservations").
		ColumnExpr("DATE(created_at) AS date").
		ColumnExpr("COUNT(*) AS count").
		ColumnExpr("SUM(CASE WHEN payment_status = 'completed' THEN 1 ELSE 0 END) AS completed").
		GroupExpr("DATE(created_at)").
		OrderExpr("DATE(created_at) DESC").
		Scan(ctx, &out)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []DailyReservations{}
	}
	return out, nil
}
