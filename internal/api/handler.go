package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/alexivanou/city-api/internal/config"
	"github.com/alexivanou/city-api/internal/model"
	"github.com/alexivanou/city-api/internal/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// HealthChecker reports whether the storage backend is reachable
type HealthChecker interface {
	Check(ctx context.Context) error
}

// Handler handles HTTP requests
type Handler struct {
	service service.ServiceInterface
	health  HealthChecker
	app     config.AppConfig
	logger  *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, health HealthChecker, app config.AppConfig, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		health:  health,
		app:     app,
		logger:  logger,
	}
}

// CreateCity handles POST /cities
func (h *Handler) CreateCity(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCityRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	city, err := h.service.CreateCity(r.Context(), req.Name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, city)
}

// ListCities handles GET /cities
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.service.ListCities(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if cities == nil {
		cities = []model.City{}
	}

	writeJSON(w, h.logger, http.StatusOK, cities)
}

// GetCity handles GET /cities/{id}
func (h *Handler) GetCity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cityID(w, r)
	if !ok {
		return
	}

	city, err := h.service.GetCity(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, city)
}

// DeleteCity handles DELETE /cities/{id}
func (h *Handler) DeleteCity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cityID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteCity(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, model.MessageResponse{
		Message: fmt.Sprintf("City with ID %d deleted successfully", id),
	})
}

// FindNearestCities handles POST /cities/nearest
func (h *Handler) FindNearestCities(w http.ResponseWriter, r *http.Request) {
	var req model.NearestCitiesRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		writeError(w, h.logger, http.StatusUnprocessableEntity, "fields 'latitude' and 'longitude' are required")
		return
	}

	coords := model.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
	response, err := h.service.FindNearestCities(r.Context(), coords)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, response)
}

// GetStats handles GET /stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, stats)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := model.HealthResponse{
		Status:   "healthy",
		Service:  h.app.Name,
		Version:  h.app.Version,
		Database: "connected",
	}

	if err := h.health.Check(r.Context()); err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		response.Status = "unhealthy"
		response.Database = "disconnected"
	}

	writeJSON(w, h.logger, http.StatusOK, response)
}

// NotFound answers requests that match no route
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, h.logger, http.StatusNotFound, "Not Found")
}

// MethodNotAllowed answers requests whose path exists under another method
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, h.logger, http.StatusMethodNotAllowed, "Method Not Allowed")
}

func (h *Handler) cityID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid city id")
		return 0, false
	}
	return id, true
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateName):
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCoordinatesUnresolvable),
		errors.Is(err, service.ErrCityNotFound),
		errors.Is(err, service.ErrInsufficientCandidates):
		writeError(w, h.logger, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrInvalidCoordinates):
		writeError(w, h.logger, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, h.logger, http.StatusInternalServerError, "internal server error")
	}
}
