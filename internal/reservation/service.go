package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"bus-reservations/internal/kafka"
	"bus-reservations/internal/models"
)

var (
	// ErrForbidden means the requester may not touch this reservation:
	// only the owning commuter or an admin can delete.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation covers missing or malformed request fields.
	ErrValidation = errors.New("validation failed")
)

type Store interface {
	CreateReservation(ctx context.Context, res *models.Reservation) error
	GetReservationByID(ctx context.Context, id string) (*models.Reservation, error)
	ListReservations(ctx context.Context) ([]models.Reservation, error)
	ListReservationsByTrip(ctx context.Context, tripID string) ([]models.Reservation, error)
	UpdateReservation(ctx context.Context, res *models.Reservation) error
	DeleteReservation(ctx context.Context, id string) error
}

type SeatEngine interface {
	BookSeat(ctx context.Context, trip *models.Trip, seat, capacity int) error
	ReassignSeat(ctx context.Context, trip *models.Trip, oldSeat, newSeat, capacity int) error
	ReleaseSeat(ctx context.Context, trip *models.Trip, seat int) error
}

type TripResolver interface {
	ResolveOrCreate(ctx context.Context, busID, defaultTripID string, date time.Time) (*models.Trip, error)
}

type TripGetter interface {
	GetTripByID(ctx context.Context, id string) (*models.Trip, error)
}

type Directory interface {
	GetBus(ctx context.Context, id string) (*models.Bus, error)
	GetRoute(ctx context.Context, id string) (*models.Route, error)
	GetDefaultTrip(ctx context.Context, id string) (*models.DefaultTrip, error)
}

type Notifier interface {
	Emit(event models.SeatReservationUpdate)
}

type EventPublisher interface {
	Publish(topic string, key string, value []byte) error
}

// Service is the reservation ledger. Every occupancy mutation runs
// through the seat engine before the ledger record changes, so a
// reservation can never assert a seat its trip does not hold, and every
// committed change is broadcast exactly once.
type Service struct {
	Store     Store
	Engine    SeatEngine
	Resolver  TripResolver
	Trips     TripGetter
	Directory Directory
	Notifier  Notifier
	Kafka     EventPublisher
}

func NewService(store Store, engine SeatEngine, resolver TripResolver, trips TripGetter, directory Directory, notifier Notifier, publisher EventPublisher) *Service {
	return &Service{
		Store:     store,
		Engine:    engine,
		Resolver:  resolver,
		Trips:     trips,
		Directory: directory,
		Notifier:  notifier,
		Kafka:     publisher,
	}
}

type CreateReservationRequest struct {
	BusID         string
	DefaultTripID string
	Date          time.Time
	SeatNumber    int
}

// CreateReservation books one seat for a commuter on the trip instance
// resolved from (bus, default trip, date). All-or-nothing: if the
// ledger insert fails after the seat was booked, the seat is released
// again.
func (s *Service) CreateReservation(ctx context.Context, commuterID string, req CreateReservationRequest) (*models.Reservation, error) {
	if commuterID == "" || req.BusID == "" || req.DefaultTripID == "" || req.Date.IsZero() || req.SeatNumber == 0 {
		return nil, fmt.Errorf("busId, defaultTripId, date and seatNumber are required: %w", ErrValidation)
	}

	bus, err := s.Directory.GetBus(ctx, req.BusID)
	if err != nil {
		return nil, fmt.Errorf("bus %s: %w", req.BusID, err)
	}
	tmpl, err := s.Directory.GetDefaultTrip(ctx, req.DefaultTripID)
	if err != nil {
		return nil, fmt.Errorf("default trip %s: %w", req.DefaultTripID, err)
	}
	if _, err := s.Directory.GetRoute(ctx, tmpl.RouteID); err != nil {
		return nil, fmt.Errorf("route %s: %w", tmpl.RouteID, err)
	}

	trip, err := s.Resolver.ResolveOrCreate(ctx, req.BusID, req.DefaultTripID, req.Date)
	if err != nil {
		return nil, err
	}

	if err := s.Engine.BookSeat(ctx, trip, req.SeatNumber, bus.Capacity); err != nil {
		return nil, err
	}

	res := &models.Reservation{
		ID:            uuid.NewString(),
		CommuterID:    commuterID,
		BusID:         req.BusID,
		TripID:        trip.ID,
		SeatNumber:    req.SeatNumber,
		PaymentStatus: models.PaymentPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.Store.CreateReservation(ctx, res); err != nil {
		// Roll the seat back so no occupancy exists without a ledger row.
		_ = s.Engine.ReleaseSeat(ctx, trip, req.SeatNumber)
		return nil, fmt.Errorf("persist reservation: %w", err)
	}

	s.broadcast(trip)
	return res, nil
}

type UpdateReservationRequest struct {
	SeatNumber    *int
	PaymentStatus *string
}

// UpdateReservation changes a reservation's seat, payment status, or
// both. A seat change goes through the engine first; if the engine
// refuses, the ledger record is untouched. Only seat changes broadcast.
func (s *Service) UpdateReservation(ctx context.Context, id string, req UpdateReservationRequest) (*models.Reservation, error) {
	if req.PaymentStatus != nil && !models.ValidPaymentStatus(*req.PaymentStatus) {
		return nil, fmt.Errorf("payment status %q: %w", *req.PaymentStatus, ErrValidation)
	}

	res, err := s.Store.GetReservationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	bus, err := s.Directory.GetBus(ctx, res.BusID)
	if err != nil {
		return nil, fmt.Errorf("bus %s: %w", res.BusID, err)
	}
	trip, err := s.Trips.GetTripByID(ctx, res.TripID)
	if err != nil {
		return nil, fmt.Errorf("trip %s: %w", res.TripID, err)
	}

	oldSeat := res.SeatNumber
	moved := false
	if req.SeatNumber != nil && *req.SeatNumber != res.SeatNumber {
		if err := s.Engine.ReassignSeat(ctx, trip, res.SeatNumber, *req.SeatNumber, bus.Capacity); err != nil {
			return nil, err
		}
		res.SeatNumber = *req.SeatNumber
		moved = true
	}
	if req.PaymentStatus != nil {
		res.PaymentStatus = *req.PaymentStatus
	}

	if err := s.Store.UpdateReservation(ctx, res); err != nil {
		if moved {
			// Put the seat hold back so set and ledger stay aligned.
			_ = s.Engine.ReassignSeat(ctx, trip, res.SeatNumber, oldSeat, bus.Capacity)
		}
		return nil, fmt.Errorf("persist reservation update: %w", err)
	}

	if moved {
		s.broadcast(trip)
	}
	return res, nil
}

// DeleteReservation releases the seat and removes the ledger record.
// Only the owning commuter or an admin may delete.
func (s *Service) DeleteReservation(ctx context.Context, id, requesterID, requesterRole string) error {
	res, err := s.Store.GetReservationByID(ctx, id)
	if err != nil {
		return err
	}
	if requesterRole != models.RoleAdmin && res.CommuterID != requesterID {
		return fmt.Errorf("reservation %s belongs to another commuter: %w", id, ErrForbidden)
	}

	bus, err := s.Directory.GetBus(ctx, res.BusID)
	if err != nil {
		return fmt.Errorf("bus %s: %w", res.BusID, err)
	}
	trip, err := s.Trips.GetTripByID(ctx, res.TripID)
	if err != nil {
		return fmt.Errorf("trip %s: %w", res.TripID, err)
	}

	if err := s.Engine.ReleaseSeat(ctx, trip, res.SeatNumber); err != nil {
		return err
	}
	if err := s.Store.DeleteReservation(ctx, id); err != nil {
		// Re-book so no ledger row points at an unheld seat.
		_ = s.Engine.BookSeat(ctx, trip, res.SeatNumber, bus.Capacity)
		return fmt.Errorf("delete reservation: %w", err)
	}

	s.broadcast(trip)
	return nil
}

func (s *Service) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	return s.Store.GetReservationByID(ctx, id)
}

func (s *Service) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	return s.Store.ListReservations(ctx)
}

func (s *Service) ListReservationsByTrip(ctx context.Context, tripID string) ([]models.Reservation, error) {
	return s.Store.ListReservationsByTrip(ctx, tripID)
}

// GetOrCreateTrip exposes the resolver to the query surface. The routeID
// parameter is accepted for interface compatibility but the route always
// comes from the default-trip template.
func (s *Service) GetOrCreateTrip(ctx context.Context, busID, defaultTripID, routeID string, date time.Time) (*models.Trip, error) {
	if busID == "" || defaultTripID == "" || date.IsZero() {
		return nil, fmt.Errorf("busId, defaultTripId and date are required: %w", ErrValidation)
	}
	return s.Resolver.ResolveOrCreate(ctx, busID, defaultTripID, date)
}

// broadcast fans one occupancy snapshot out to the SSE observers and, if
// configured, the Kafka seat-status topic. Runs after the mutation is
// committed and never fails the booking.
func (s *Service) broadcast(trip *models.Trip) {
	event := models.NewSeatReservationUpdate(trip)
	if s.Notifier != nil {
		s.Notifier.Emit(event)
	}
	if s.Kafka != nil {
		value, err := json.Marshal(event)
		if err != nil {
			log.Printf("marshal seat event for trip %s: %v", trip.ID, err)
			return
		}
		if err := s.Kafka.Publish(kafka.TopicSeatStatus, trip.ID, value); err != nil {
			log.Printf("publish seat event for trip %s: %v", trip.ID, err)
		}
	}
}
