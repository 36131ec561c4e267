package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bus-reservations/internal/auth"
	"bus-reservations/internal/booking"
	"bus-reservations/internal/directory"
	"bus-reservations/internal/logger"
	"bus-reservations/internal/models"
	"bus-reservations/internal/reservation"
	resdb "bus-reservations/internal/reservation/db"
	"bus-reservations/internal/reservation/qr"
	tripdb "bus-reservations/internal/trip/db"
	"bus-reservations/internal/utils"
)

type Handler struct {
	ReservationService *reservation.Service
	QR                 *qr.Generator
	Logger             *logger.Logger
}

func NewHandler(service *reservation.Service, generator *qr.Generator, log *logger.Logger) *Handler {
	return &Handler{
		ReservationService: service,
		QR:                 generator,
		Logger:             log,
	}
}

type createReservationBody struct {
	BusID         string `json:"busId"`
	DefaultTripID string `json:"defaultTripId"`
	Date          string `json:"date"`
	SeatNumber    int    `json:"seatNumber"`
}

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var body createReservationBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	date, err := parseTripDate(body.Date)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid date", err.Error()))
		return
	}

	commuterID := auth.UserID(r.Context())
	res, err := h.ReservationService.CreateReservation(r.Context(), commuterID, reservation.CreateReservationRequest{
		BusID:         body.BusID,
		DefaultTripID: body.DefaultTripID,
		Date:          date,
		SeatNumber:    body.SeatNumber,
	})
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateReservation: %v", err))
		h.writeDomainError(w, "Failed to create reservation", err)
		return
	}

	h.Logger.LogBooking("CREATE", res.TripID, fmt.Sprintf("seat %d reserved by %s", res.SeatNumber, commuterID))
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Reservation created successfully", res))
}

func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reservationId")
	res, err := h.ReservationService.GetReservation(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to retrieve reservation", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Reservation retrieved", res))
}

func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	var reservations []models.Reservation
	var err error
	if tripID := r.URL.Query().Get("tripId"); tripID != "" {
		reservations, err = h.ReservationService.ListReservationsByTrip(r.Context(), tripID)
	} else {
		reservations, err = h.ReservationService.ListReservations(r.Context())
	}
	if err != nil {
		h.writeDomainError(w, "Failed to list reservations", err)
		return
	}
	if reservations == nil {
		reservations = []models.Reservation{}
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Reservations retrieved", reservations))
}

type updateReservationBody struct {
	SeatNumber    *int    `json:"seatNumber,omitempty"`
	PaymentStatus *string `json:"paymentStatus,omitempty"`
}

func (h *Handler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reservationId")

	var body updateReservationBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	res, err := h.ReservationService.UpdateReservation(r.Context(), id, reservation.UpdateReservationRequest{
		SeatNumber:    body.SeatNumber,
		PaymentStatus: body.PaymentStatus,
	})
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateReservation %s: %v", id, err))
		h.writeDomainError(w, "Failed to update reservation", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Reservation updated successfully", res))
}

func (h *Handler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reservationId")

	err := h.ReservationService.DeleteReservation(r.Context(), id, auth.UserID(r.Context()), auth.Role(r.Context()))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteReservation %s: %v", id, err))
		h.writeDomainError(w, "Failed to delete reservation", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Reservation deleted successfully", nil))
}

// GetOrCreateTrip resolves the trip instance for a (bus, default trip,
// date) triple, creating it when absent, and returns its occupancy.
func (h *Handler) GetOrCreateTrip(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	busID := q.Get("busId")
	defaultTripID := q.Get("defaultTripId")
	routeID := q.Get("routeId")

	date, err := parseTripDate(q.Get("date"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid date", err.Error()))
		return
	}

	trip, err := h.ReservationService.GetOrCreateTrip(r.Context(), busID, defaultTripID, routeID, date)
	if err != nil {
		h.writeDomainError(w, "Failed to retrieve or create trip", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Trip retrieved", trip))
}

// BoardingPass renders the reservation as an encrypted QR PNG.
func (h *Handler) BoardingPass(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reservationId")
	res, err := h.ReservationService.GetReservation(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to retrieve reservation", err)
		return
	}

	png, err := h.QR.BoardingPassPNG(*res)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("BoardingPass %s: %v", id, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to generate boarding pass", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// parseTripDate accepts a plain calendar day or a full RFC 3339
// timestamp; the time-of-day is discarded either way.
func parseTripDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD or RFC 3339")
	}
	return t, nil
}

// writeDomainError maps domain error kinds to HTTP statuses. Anything
// unrecognized is an opaque internal error.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, resdb.ErrReservationNotFound),
		errors.Is(err, tripdb.ErrTripNotFound),
		errors.Is(err, directory.ErrNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse(message, err.Error()))
	case errors.Is(err, booking.ErrSeatTaken),
		errors.Is(err, booking.ErrSeatOutOfRange),
		errors.Is(err, reservation.ErrValidation),
		errors.Is(err, directory.ErrValidation):
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(message, err.Error()))
	case errors.Is(err, reservation.ErrForbidden):
		utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse(message, err.Error()))
	default:
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse(message, err.Error()))
	}
}
