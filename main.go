package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"bus-reservations/internal/analytics"
	analytics_api "bus-reservations/internal/analytics/api"
	"bus-reservations/internal/auth"
	"bus-reservations/internal/booking"
	bookingredis "bus-reservations/internal/booking/redis"
	"bus-reservations/internal/config"
	"bus-reservations/internal/directory"
	directory_api "bus-reservations/internal/directory/api"
	"bus-reservations/internal/kafka"
	"bus-reservations/internal/logger"
	"bus-reservations/internal/models"
	"bus-reservations/internal/reservation"
	reservation_api "bus-reservations/internal/reservation/api"
	reservation_db "bus-reservations/internal/reservation/db"
	"bus-reservations/internal/reservation/qr"
	"bus-reservations/internal/sse"
	"bus-reservations/internal/trip"
	trip_db "bus-reservations/internal/trip/db"
)

func verifyConnections(ctx context.Context, cfg *config.Config, log *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Connecting to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Db.PostgresDSN)
		if err == nil {
			err = sqldb.Ping()
		}
		if err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("PostgreSQL connection failed: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("PostgreSQL unreachable after %d attempts: %v", maxRetries, err))
	}
	sqldb.SetMaxOpenConns(cfg.Db.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Db.MaxIdleConns)
	log.Info("DATABASE", "PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting bus reservation service")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("CONFIG", "JWT_SECRET not set")
	}

	ctx := context.Background()
	bunDB, redisClient := verifyConnections(ctx, cfg, log)
	defer bunDB.Close()
	defer redisClient.Close()

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{kafka.TopicSeatStatus}); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Seat status topic ensured")
		}
	} else {
		log.Warn("KAFKA", "Kafka disabled, occupancy events go to SSE only")
	}

	tripStore := &trip_db.DB{Bun: bunDB}
	reservationStore := &reservation_db.DB{Bun: bunDB}
	directoryStore := &directory.DB{Bun: bunDB}

	directoryService := directory.NewService(directoryStore, tripStore)
	resolver := trip.NewResolver(tripStore, directoryStore)
	seatLock := bookingredis.NewSeatLock(redisClient, cfg.Redis.SeatLockTTL)
	engine := booking.NewEngine(tripStore, seatLock)

	emitter := sse.NewSeatEventEmitter()

	var publisher reservation.EventPublisher
	if producer != nil {
		publisher = producer
	}
	reservationService := reservation.NewService(
		reservationStore,
		engine,
		resolver,
		tripStore,
		directoryStore,
		emitter,
		publisher,
	)

	qrGenerator := qr.NewGenerator(cfg.Auth.JWTSecret)
	reservationHandler := reservation_api.NewHandler(reservationService, qrGenerator, log)
	sseHandler := reservation_api.NewSSEHandler(log, emitter)
	directoryHandler := directory_api.NewHandler(directoryService, log)
	analyticsHandler := analytics_api.NewHandler(analytics.NewService(bunDB), log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Welcome to the Bus Reservation System API!"))
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Auth.JWTSecret))

		r.Route("/reservations", func(r chi.Router) {
			r.Get("/events", sseHandler.StreamSeatUpdates)
			r.Get("/trip", reservationHandler.GetOrCreateTrip)
			r.Post("/", reservationHandler.CreateReservation)
			r.Get("/", reservationHandler.ListReservations)
			r.Get("/{reservationId}", reservationHandler.GetReservation)
			r.Get("/{reservationId}/qr", reservationHandler.BoardingPass)
			r.Put("/{reservationId}", reservationHandler.UpdateReservation)
			r.Delete("/{reservationId}", reservationHandler.DeleteReservation)
		})
		log.Info("ROUTER", "Reservation routes registered under /reservations")

		r.Route("/buses", func(r chi.Router) {
			r.Get("/", directoryHandler.ListBuses)
			r.Get("/{busId}", directoryHandler.GetBus)
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRoles(models.RoleAdmin, models.RoleOperator))
				r.Post("/", directoryHandler.CreateBus)
				r.Put("/{busId}", directoryHandler.UpdateBus)
				r.Delete("/{busId}", directoryHandler.DeleteBus)
			})
		})

		r.Route("/routes", func(r chi.Router) {
			r.Get("/", directoryHandler.ListRoutes)
			r.Get("/{routeId}", directoryHandler.GetRoute)
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRoles(models.RoleAdmin))
				r.Post("/", directoryHandler.CreateRoute)
				r.Put("/{routeId}", directoryHandler.UpdateRoute)
				r.Delete("/{routeId}", directoryHandler.DeleteRoute)
			})
		})

		r.Route("/default-trips", func(r chi.Router) {
			r.Get("/", directoryHandler.ListDefaultTrips)
			r.Get("/{defaultTripId}", directoryHandler.GetDefaultTrip)
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRoles(models.RoleAdmin))
				r.Post("/", directoryHandler.CreateDefaultTrip)
				r.Delete("/{defaultTripId}", directoryHandler.DeleteDefaultTrip)
			})
		})
		log.Info("ROUTER", "Directory routes registered under /buses, /routes, /default-trips")

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRoles(models.RoleAdmin, models.RoleOperator))
			analyticsHandler.RegisterRoutes(r)
		})
		log.Info("ROUTER", "Analytics routes registered under /analytics")
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Bus reservation service on %s", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	log.Info("APP", "Bus reservation service shutdown complete")
}
