package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bus-reservations/internal/directory"
	"bus-reservations/internal/logger"
	"bus-reservations/internal/models"
	"bus-reservations/internal/utils"
)

// Handler serves the directory's administrative CRUD: buses, routes, and
// default-trip templates.
type Handler struct {
	Directory *directory.Service
	Logger    *logger.Logger
}

func NewHandler(service *directory.Service, log *logger.Logger) *Handler {
	return &Handler{Directory: service, Logger: log}
}

// ---------------- BUSES ----------------

func (h *Handler) ListBuses(w http.ResponseWriter, r *http.Request) {
	buses, err := h.Directory.ListBuses(r.Context())
	if err != nil {
		h.writeError(w, "Failed to list buses", err)
		return
	}
	if buses == nil {
		buses = []models.Bus{}
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Buses retrieved", buses))
}

func (h *Handler) GetBus(w http.ResponseWriter, r *http.Request) {
	bus, err := h.Directory.GetBus(r.Context(), chi.URLParam(r, "busId"))
	if err != nil {
		h.writeError(w, "Failed to retrieve bus", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Bus retrieved", bus))
}

func (h *Handler) CreateBus(w http.ResponseWriter, r *http.Request) {
	var bus models.Bus
	if err := json.NewDecoder(r.Body).Decode(&bus); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	created, err := h.Directory.CreateBus(r.Context(), bus)
	if err != nil {
		h.writeError(w, "Failed to add bus", err)
		return
	}
	h.Logger.Info("DIRECTORY", fmt.Sprintf("bus %s (%s) registered", created.BusNumber, created.ID))
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Bus added successfully", created))
}

func (h *Handler) UpdateBus(w http.ResponseWriter, r *http.Request) {
	var bus models.Bus
	if err := json.NewDecoder(r.Body).Decode(&bus); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	bus.ID = chi.URLParam(r, "busId")
	updated, err := h.Directory.UpdateBus(r.Context(), bus)
	if err != nil {
		h.writeError(w, "Failed to update bus", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Bus updated successfully", updated))
}

func (h *Handler) DeleteBus(w http.ResponseWriter, r *http.Request) {
	if err := h.Directory.DeleteBus(r.Context(), chi.URLParam(r, "busId")); err != nil {
		h.writeError(w, "Failed to delete bus", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Bus deleted successfully", nil))
}

// ---------------- ROUTES ----------------

func (h *Handler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.Directory.ListRoutes(r.Context())
	if err != nil {
		h.writeError(w, "Failed to list routes", err)
		return
	}
	if routes == nil {
		routes = []models.Route{}
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Routes retrieved", routes))
}

func (h *Handler) GetRoute(w http.ResponseWriter, r *http.Request) {
	route, err := h.Directory.GetRoute(r.Context(), chi.URLParam(r, "routeId"))
	if err != nil {
		h.writeError(w, "Failed to retrieve route", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Route retrieved", route))
}

func (h *Handler) CreateRoute(w http.ResponseWriter, r *http.Request) {
	var route models.Route
	if err := json.NewDecoder(r.Body).Decode(&route); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	created, err := h.Directory.CreateRoute(r.Context(), route)
	if err != nil {
		h.writeError(w, "Failed to add route", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Route added successfully", created))
}

func (h *Handler) UpdateRoute(w http.ResponseWriter, r *http.Request) {
	var route models.Route
	if err := json.NewDecoder(r.Body).Decode(&route); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	route.ID = chi.URLParam(r, "routeId")
	updated, err := h.Directory.UpdateRoute(r.Context(), route)
	if err != nil {
		h.writeError(w, "Failed to update route", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Route updated successfully", updated))
}

func (h *Handler) DeleteRoute(w http.ResponseWriter, r *http.Request) {
	if err := h.Directory.DeleteRoute(r.Context(), chi.URLParam(r, "routeId")); err != nil {
		h.writeError(w, "Failed to delete route", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Route deleted successfully", nil))
}

// ---------------- DEFAULT TRIPS ----------------

func (h *Handler) ListDefaultTrips(w http.ResponseWriter, r *http.Request) {
	tmpls, err := h.Directory.ListDefaultTrips(r.Context())
	if err != nil {
		h.writeError(w, "Failed to list default trips", err)
		return
	}
	if tmpls == nil {
		tmpls = []models.DefaultTrip{}
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Default trips retrieved", tmpls))
}

func (h *Handler) GetDefaultTrip(w http.ResponseWriter, r *http.Request) {
	tmpl, err := h.Directory.GetDefaultTrip(r.Context(), chi.URLParam(r, "defaultTripId"))
	if err != nil {
		h.writeError(w, "Failed to retrieve default trip", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Default trip retrieved", tmpl))
}

func (h *Handler) CreateDefaultTrip(w http.ResponseWriter, r *http.Request) {
	var tmpl models.DefaultTrip
	if err := json.NewDecoder(r.Body).Decode(&tmpl); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	created, err := h.Directory.CreateDefaultTrip(r.Context(), tmpl)
	if err != nil {
		h.writeError(w, "Failed to add default trip", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Default trip added successfully", created))
}

func (h *Handler) DeleteDefaultTrip(w http.ResponseWriter, r *http.Request) {
	if err := h.Directory.DeleteDefaultTrip(r.Context(), chi.URLParam(r, "defaultTripId")); err != nil {
		h.writeError(w, "Failed to delete default trip", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Default trip deleted successfully", nil))
}

func (h *Handler) writeError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, directory.ErrNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse(message, err.Error()))
	case errors.Is(err, directory.ErrValidation):
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(message, err.Error()))
	default:
		h.Logger.Error("DIRECTORY", fmt.Sprintf("%s: %v", message, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse(message, err.Error()))
	}
}
