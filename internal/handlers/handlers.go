package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cx-tal-miterani/flight-pricing/internal/models"
	"github.com/cx-tal-miterani/flight-pricing/internal/service"
	"github.com/gorilla/mux"
)

// Handler contains HTTP handlers for the API
type Handler struct {
	flightService service.FlightService
}

// NewHandler creates a new Handler instance
func NewHandler(flightService service.FlightService) *Handler {
	return &Handler{
		flightService: flightService,
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps domain errors onto HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, "Flight not found")
	case errors.Is(err, models.ErrInvalidArgument):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNoSeatsAvailable), errors.Is(err, models.ErrFlightDeparted):
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// queryInt reads an optional integer query parameter, 0 when absent
func queryInt(r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// GetFlights handles GET /api/flights?sort_by=price|duration&limit=N
func (h *Handler) GetFlights(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		respondError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	sortBy := models.SortBy(r.URL.Query().Get("sort_by"))

	flights, err := h.flightService.ListFlights(r.Context(), sortBy, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, flights)
}

// SearchFlights handles POST /api/flights/search
func (h *Handler) SearchFlights(w http.ResponseWriter, r *http.Request) {
	var req models.SearchParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Origin == "" || req.Destination == "" {
		respondError(w, http.StatusBadRequest, "Origin and destination are required")
		return
	}
	if req.Date == "" {
		respondError(w, http.StatusBadRequest, "Date is required")
		return
	}

	flights, err := h.flightService.SearchFlights(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, flights)
}

// GetFlight handles GET /api/flights/{id}
func (h *Handler) GetFlight(w http.ResponseWriter, r *http.Request) {
	flightID := mux.Vars(r)["id"]
	flight, err := h.flightService.GetFlight(r.Context(), flightID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, flight)
}

// GetFareHistory handles GET /api/flights/{id}/fare-history?limit=N
func (h *Handler) GetFareHistory(w http.ResponseWriter, r *http.Request) {
	flightID := mux.Vars(r)["id"]
	limit, ok := queryInt(r, "limit")
	if !ok {
		respondError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}

	history, err := h.flightService.GetFareHistory(r.Context(), flightID, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// BookSeat handles POST /api/flights/{id}/book
func (h *Handler) BookSeat(w http.ResponseWriter, r *http.Request) {
	flightID := mux.Vars(r)["id"]
	booking, err := h.flightService.BookSeat(r.Context(), flightID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, booking)
}

// GetStats handles GET /api/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.flightService.GetStats(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// MethodNotAllowed answers a known path requested with the wrong method
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
