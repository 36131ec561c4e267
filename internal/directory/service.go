package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"bus-reservations/internal/models"
)

// ErrValidation covers missing or contradictory fields on directory
// writes, including the capacity-shrink rule.
var ErrValidation = errors.New("validation failed")

// TripLister exposes the trip instances derived from a bus so capacity
// updates can be checked against live bookings.
type TripLister interface {
	ListTripsByBus(ctx context.Context, busID string) ([]models.Trip, error)
}

// Service layers write validation over the directory store. Reads pass
// straight through.
type Service struct {
	DB    *DB
	Trips TripLister
}

func NewService(db *DB, trips TripLister) *Service {
	return &Service{DB: db, Trips: trips}
}

func (s *Service) GetBus(ctx context.Context, id string) (*models.Bus, error) {
	return s.DB.GetBus(ctx, id)
}

func (s *Service) GetRoute(ctx context.Context, id string) (*models.Route, error) {
	return s.DB.GetRoute(ctx, id)
}

func (s *Service) GetDefaultTrip(ctx context.Context, id string) (*models.DefaultTrip, error) {
	return s.DB.GetDefaultTrip(ctx, id)
}

func (s *Service) ListBuses(ctx context.Context) ([]models.Bus, error) {
	return s.DB.ListBuses(ctx)
}

func (s *Service) ListRoutes(ctx context.Context) ([]models.Route, error) {
	return s.DB.ListRoutes(ctx)
}

func (s *Service) ListDefaultTrips(ctx context.Context) ([]models.DefaultTrip, error) {
	return s.DB.ListDefaultTrips(ctx)
}

func (s *Service) CreateBus(ctx context.Context, bus models.Bus) (*models.Bus, error) {
	if bus.BusNumber == "" || bus.OperatorID == "" || bus.RouteID == "" {
		return nil, fmt.Errorf("bus number, operator and route are required: %w", ErrValidation)
	}
	if bus.Capacity < 1 {
		return nil, fmt.Errorf("capacity must be positive: %w", ErrValidation)
	}
	if _, err := s.DB.GetRoute(ctx, bus.RouteID); err != nil {
		return nil, err
	}
	if existing, err := s.DB.GetBusByNumber(ctx, bus.BusNumber); err == nil && existing != nil {
		return nil, fmt.Errorf("bus number %s already exists: %w", bus.BusNumber, ErrValidation)
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	bus.ID = uuid.NewString()
	if err := s.DB.CreateBus(ctx, &bus); err != nil {
		return nil, err
	}
	return &bus, nil
}

// UpdateBus applies a bus update. Shrinking capacity below the highest
// seat booked on any derived trip instance is rejected: accepting it
// would leave reservations asserting seats the bus no longer has.
func (s *Service) UpdateBus(ctx context.Context, bus models.Bus) (*models.Bus, error) {
	if bus.Capacity < 1 {
		return nil, fmt.Errorf("capacity must be positive: %w", ErrValidation)
	}
	current, err := s.DB.GetBus(ctx, bus.ID)
	if err != nil {
		return nil, err
	}
	if bus.Capacity < current.Capacity {
		highest, err := s.highestBookedSeat(ctx, bus.ID)
		if err != nil {
			return nil, err
		}
		if bus.Capacity < highest {
			return nil, fmt.Errorf("capacity %d is below booked seat %d: %w", bus.Capacity, highest, ErrValidation)
		}
	}
	if err := s.DB.UpdateBus(ctx, &bus); err != nil {
		return nil, err
	}
	return &bus, nil
}

func (s *Service) DeleteBus(ctx context.Context, id string) error {
	return s.DB.DeleteBus(ctx, id)
}

func (s *Service) highestBookedSeat(ctx context.Context, busID string) (int, error) {
	trips, err := s.Trips.ListTripsByBus(ctx, busID)
	if err != nil {
		return 0, err
	}
	highest := 0
	for _, t := range trips {
		if m := t.BookedSeats.Max(); m > highest {
			highest = m
		}
	}
	return highest, nil
}

func (s *Service) CreateRoute(ctx context.Context, route models.Route) (*models.Route, error) {
	if route.StartPoint == "" || route.EndPoint == "" || route.EstimatedTime == "" {
		return nil, fmt.Errorf("start point, end point and estimated time are required: %w", ErrValidation)
	}
	route.ID = uuid.NewString()
	if err := s.DB.CreateRoute(ctx, &route); err != nil {
		return nil, err
	}
	return &route, nil
}

func (s *Service) UpdateRoute(ctx context.Context, route models.Route) (*models.Route, error) {
	if err := s.DB.UpdateRoute(ctx, &route); err != nil {
		return nil, err
	}
	return &route, nil
}

func (s *Service) DeleteRoute(ctx context.Context, id string) error {
	return s.DB.DeleteRoute(ctx, id)
}

func (s *Service) CreateDefaultTrip(ctx context.Context, tmpl models.DefaultTrip) (*models.DefaultTrip, error) {
	if tmpl.StartTime == "" || tmpl.ArrivalTime == "" {
		return nil, fmt.Errorf("start and arrival times are required: %w", ErrValidation)
	}
	if _, err := s.DB.GetRoute(ctx, tmpl.RouteID); err != nil {
		return nil, err
	}
	if _, err := s.DB.GetBus(ctx, tmpl.BusID); err != nil {
		return nil, err
	}
	tmpl.ID = uuid.NewString()
	if err := s.DB.CreateDefaultTrip(ctx, &tmpl); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (s *Service) DeleteDefaultTrip(ctx context.Context, id string) error {
	return s.DB.DeleteDefaultTrip(ctx, id)
}
