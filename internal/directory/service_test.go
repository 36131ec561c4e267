package directory_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"bus-reservations/internal/directory"
	"bus-reservations/internal/models"
)

type stubTripLister struct {
	trips []models.Trip
}

func (s *stubTripLister) ListTripsByBus(_ context.Context, busID string) ([]models.Trip, error) {
	return s.trips, nil
}

func setupService(t *testing.T) (*directory.Service, *stubTripLister) {
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	ctx := context.Background()
	require.NoError(t, bunDB.ResetModel(ctx, (*models.Bus)(nil)))
	require.NoError(t, bunDB.ResetModel(ctx, (*models.Route)(nil)))
	require.NoError(t, bunDB.ResetModel(ctx, (*models.DefaultTrip)(nil)))
	t.Cleanup(func() { bunDB.Close() })

	lister := &stubTripLister{}
	return directory.NewService(&directory.DB{Bun: bunDB}, lister), lister
}

func seedRoute(t *testing.T, svc *directory.Service) *models.Route {
	route, err := svc.CreateRoute(context.Background(), models.Route{
		StartPoint:    "Central Station",
		EndPoint:      "Airport Terminal 2",
		Distance:      42.5,
		EstimatedTime: "1h15m",
		Fare:          8.50,
	})
	require.NoError(t, err)
	return route
}

func seedBus(t *testing.T, svc *directory.Service, routeID string, capacity int) *models.Bus {
	bus, err := svc.CreateBus(context.Background(), models.Bus{
		BusNumber:  "BX-101",
		OperatorID: "op-1",
		RouteID:    routeID,
		Capacity:   capacity,
	})
	require.NoError(t, err)
	return bus
}

func TestCreateBus_AndGet(t *testing.T) {
	svc, _ := setupService(t)
	route := seedRoute(t, svc)

	bus := seedBus(t, svc, route.ID, 40)
	assert.NotEmpty(t, bus.ID)

	got, err := svc.GetBus(context.Background(), bus.ID)
	require.NoError(t, err)
	assert.Equal(t, "BX-101", got.BusNumber)
	assert.Equal(t, 40, got.Capacity)
}

func TestCreateBus_Validation(t *testing.T) {
	svc, _ := setupService(t)
	route := seedRoute(t, svc)

	_, err := svc.CreateBus(context.Background(), models.Bus{
		OperatorID: "op-1", RouteID: route.ID, Capacity: 40,
	})
	assert.ErrorIs(t, err, directory.ErrValidation)

	_, err = svc.CreateBus(context.Background(), models.Bus{
		BusNumber: "BX-101", OperatorID: "op-1", RouteID: route.ID, Capacity: 0,
	})
	assert.ErrorIs(t, err, directory.ErrValidation)
}

func TestCreateBus_UnknownRoute(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.CreateBus(context.Background(), models.Bus{
		BusNumber: "BX-101", OperatorID: "op-1", RouteID: "missing", Capacity: 40,
	})
	assert.ErrorIs(t, err, directory.ErrNotFound)
}

func TestCreateBus_DuplicateNumber(t *testing.T) {
	svc, _ := setupService(t)
	route := seedRoute(t, svc)
	seedBus(t, svc, route.ID, 40)

	_, err := svc.CreateBus(context.Background(), models.Bus{
		BusNumber: "BX-101", OperatorID: "op-2", RouteID: route.ID, Capacity: 30,
	})
	assert.ErrorIs(t, err, directory.ErrValidation)
}

func TestUpdateBus_CapacityShrinkBelowBookedSeat(t *testing.T) {
	svc, lister := setupService(t)
	route := seedRoute(t, svc)
	bus := seedBus(t, svc, route.ID, 40)

	lister.trips = []models.Trip{
		{ID: "trip-1", BusID: bus.ID, BookedSeats: models.SeatSet{3, 35}},
	}

	shrunk := *bus
	shrunk.Capacity = 30
	_, err := svc.UpdateBus(context.Background(), shrunk)
	assert.ErrorIs(t, err, directory.ErrValidation)

	// Shrinking to exactly the highest booked seat is allowed.
	shrunk.Capacity = 35
	updated, err := svc.UpdateBus(context.Background(), shrunk)
	require.NoError(t, err)
	assert.Equal(t, 35, updated.Capacity)
}

func TestUpdateBus_GrowIsAlwaysAllowed(t *testing.T) {
	svc, lister := setupService(t)
	route := seedRoute(t, svc)
	bus := seedBus(t, svc, route.ID, 40)
	lister.trips = []models.Trip{{BusID: bus.ID, BookedSeats: models.SeatSet{40}}}

	grown := *bus
	grown.Capacity = 50
	updated, err := svc.UpdateBus(context.Background(), grown)
	require.NoError(t, err)
	assert.Equal(t, 50, updated.Capacity)
}

func TestDeleteBus_NotFound(t *testing.T) {
	svc, _ := setupService(t)
	err := svc.DeleteBus(context.Background(), "missing")
	assert.ErrorIs(t, err, directory.ErrNotFound)
}

func TestCreateRoute_Validation(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.CreateRoute(context.Background(), models.Route{StartPoint: "A"})
	assert.ErrorIs(t, err, directory.ErrValidation)
}

func TestCreateDefaultTrip_ChecksReferences(t *testing.T) {
	svc, _ := setupService(t)
	route := seedRoute(t, svc)
	bus := seedBus(t, svc, route.ID, 40)

	tmpl, err := svc.CreateDefaultTrip(context.Background(), models.DefaultTrip{
		RouteID: route.ID, BusID: bus.ID, StartTime: "08:30", ArrivalTime: "09:45",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tmpl.ID)

	_, err = svc.CreateDefaultTrip(context.Background(), models.DefaultTrip{
		RouteID: "missing", BusID: bus.ID, StartTime: "08:30", ArrivalTime: "09:45",
	})
	assert.ErrorIs(t, err, directory.ErrNotFound)

	_, err = svc.CreateDefaultTrip(context.Background(), models.DefaultTrip{
		RouteID: route.ID, BusID: bus.ID, StartTime: "", ArrivalTime: "09:45",
	})
	assert.ErrorIs(t, err, directory.ErrValidation)
}

func TestListDirectory(t *testing.T) {
	svc, _ := setupService(t)
	route := seedRoute(t, svc)
	seedBus(t, svc, route.ID, 40)

	buses, err := svc.ListBuses(context.Background())
	require.NoError(t, err)
	assert.Len(t, buses, 1)

	routes, err := svc.ListRoutes(context.Background())
	require.NoError(t, err)
	assert.Len(t, routes, 1)
}
