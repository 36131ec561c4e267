package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bus-reservations/internal/analytics"
	"bus-reservations/internal/logger"
	"bus-reservations/internal/utils"
)

type Handler struct {
	Service *analytics.Service
	Logger  *logger.Logger
}

func NewHandler(service *analytics.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/occupancy", h.GetOccupancyByBus)
		r.Get("/daily", h.GetReservationsByDay)
	})
}

func (h *Handler) GetOccupancyByBus(w http.ResponseWriter, r *http.Request) {
	occupancy, err := h.Service.OccupancyByBus(r.Context())
	if err != nil {
		h.Logger.Error("ANALYTICS", fmt.Sprintf("occupancy query: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to compute occupancy", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Occupancy retrieved", occupancy))
}

func (h *Handler) GetReservationsByDay(w http.ResponseWriter, r *http.Request) {
	daily, err := h.Service.ReservationsByDay(r.Context())
	if err != nil {
		h.Logger.Error("ANALYTICS", fmt.Sprintf("daily query: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to compute daily reservations", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Daily reservations retrieved", daily))
}
