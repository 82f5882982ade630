package router

import (
	"net/http"

	"github.com/cx-tal-miterani/flight-pricing/internal/handlers"
	"github.com/cx-tal-miterani/flight-pricing/internal/websocket"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// SetupRouter creates and configures the HTTP router wrapped in CORS handling.
// A nil hub leaves the live fare stream unrouted.
func SetupRouter(h *handlers.Handler, hub *websocket.Hub, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(h.MethodNotAllowed)

	// API routes live on the root router. Routes of a PathPrefix subrouter
	// re-match the prefix, which clears a method mismatch and turns 405 into 404.

	// Flights
	r.HandleFunc("/api/flights", h.GetFlights).Methods(http.MethodGet)
	r.HandleFunc("/api/flights/search", h.SearchFlights).Methods(http.MethodPost)
	r.HandleFunc("/api/flights/{id}", h.GetFlight).Methods(http.MethodGet)
	r.HandleFunc("/api/flights/{id}/fare-history", h.GetFareHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/flights/{id}/book", h.BookSeat).Methods(http.MethodPost)

	// Statistics
	r.HandleFunc("/api/stats", h.GetStats).Methods(http.MethodGet)

	// WebSocket for live fare updates
	if hub != nil {
		r.HandleFunc("/api/flights/{id}/ws", hub.HandleWebSocket).Methods(http.MethodGet)
	}

	// Health check
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return corsHandler.Handler(r)
}
