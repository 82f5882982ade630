package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cx-tal-miterani/flight-pricing/internal/models"
	"github.com/cx-tal-miterani/flight-pricing/internal/service/mocks"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/flights", h.GetFlights).Methods(http.MethodGet)
	api.HandleFunc("/flights/search", h.SearchFlights).Methods(http.MethodPost)
	api.HandleFunc("/flights/{id}", h.GetFlight).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id}/fare-history", h.GetFareHistory).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id}/book", h.BookSeat).Methods(http.MethodPost)
	api.HandleFunc("/stats", h.GetStats).Methods(http.MethodGet)
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	return r
}

func testView(id string, price float64) models.FlightView {
	departure := time.Date(2030, 3, 12, 8, 30, 0, 0, time.UTC)
	return models.FlightView{
		ID:              id,
		Airline:         "SkyHigh Airways",
		Origin:          "JFK",
		Destination:     "LAX",
		DepartureTime:   departure,
		ArrivalTime:     departure.Add(5 * time.Hour),
		DurationMinutes: 300,
		Duration:        "5h 0m",
		CurrentPrice:    price,
		BaseFare:        300,
		AvailableSeats:  100,
		TotalSeats:      200,
		Tier:            models.PricingTierEconomy,
		DemandLevel:     models.DemandMedium,
	}
}

func TestHandler_GetFlights(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectSort     models.SortBy
		expectLimit    int
		mockReturn     []models.FlightView
		mockError      error
		expectedStatus int
		callsService   bool
	}{
		{
			name:           "defaults",
			query:          "",
			expectSort:     "",
			expectLimit:    0,
			mockReturn:     []models.FlightView{testView("FL0001", 462)},
			expectedStatus: http.StatusOK,
			callsService:   true,
		},
		{
			name:           "sort and limit",
			query:          "?sort_by=duration&limit=10",
			expectSort:     models.SortByDuration,
			expectLimit:    10,
			mockReturn:     []models.FlightView{},
			expectedStatus: http.StatusOK,
			callsService:   true,
		},
		{
			name:           "limit out of range",
			query:          "?limit=1000",
			expectSort:     "",
			expectLimit:    1000,
			mockError:      fmt.Errorf("%w: limit must be between 1 and 500", models.ErrInvalidArgument),
			expectedStatus: http.StatusBadRequest,
			callsService:   true,
		},
		{
			name:           "limit not a number",
			query:          "?limit=abc",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockFlightService)
			router := setupTestRouter(NewHandler(mockService))

			if tt.callsService {
				var ret interface{}
				if tt.mockReturn != nil {
					ret = tt.mockReturn
				}
				mockService.On("ListFlights", mock.Anything, tt.expectSort, tt.expectLimit).Return(ret, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/flights"+tt.query, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				var response []models.FlightView
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
				assert.Len(t, response, len(tt.mockReturn))
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_SearchFlights(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		mockReturn     []models.FlightView
		mockError      error
		expectedStatus int
		callsService   bool
	}{
		{
			name:           "valid search",
			body:           models.SearchParams{Origin: "JFK", Destination: "LAX", Date: "2030-03-12"},
			mockReturn:     []models.FlightView{testView("FL0001", 462), testView("FL0002", 500)},
			expectedStatus: http.StatusOK,
			callsService:   true,
		},
		{
			name:           "bad date",
			body:           models.SearchParams{Origin: "JFK", Destination: "LAX", Date: "tomorrow"},
			mockError:      fmt.Errorf("%w: invalid date format, use YYYY-MM-DD", models.ErrInvalidArgument),
			expectedStatus: http.StatusBadRequest,
			callsService:   true,
		},
		{
			name:           "missing destination",
			body:           models.SearchParams{Origin: "JFK", Date: "2030-03-12"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing date",
			body:           models.SearchParams{Origin: "JFK", Destination: "LAX"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid json",
			body:           "not json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockFlightService)
			router := setupTestRouter(NewHandler(mockService))

			if tt.callsService {
				var ret interface{}
				if tt.mockReturn != nil {
					ret = tt.mockReturn
				}
				mockService.On("SearchFlights", mock.Anything, tt.body).Return(ret, tt.mockError)
			}

			var body []byte
			if s, ok := tt.body.(string); ok {
				body = []byte(s)
			} else {
				body, _ = json.Marshal(tt.body)
			}
			req := httptest.NewRequest(http.MethodPost, "/api/flights/search", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_GetFlight(t *testing.T) {
	view := testView("FL0001", 462)

	tests := []struct {
		name           string
		flightID       string
		mockReturn     *models.FlightView
		mockError      error
		expectedStatus int
	}{
		{
			name:           "flight found",
			flightID:       "FL0001",
			mockReturn:     &view,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "flight not found",
			flightID:       "FL9999",
			mockError:      fmt.Errorf("%w: FL9999", models.ErrNotFound),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unexpected failure",
			flightID:       "FL0002",
			mockError:      errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockFlightService)
			router := setupTestRouter(NewHandler(mockService))

			var ret interface{}
			if tt.mockReturn != nil {
				ret = tt.mockReturn
			}
			mockService.On("GetFlight", mock.Anything, tt.flightID).Return(ret, tt.mockError)

			req := httptest.NewRequest(http.MethodGet, "/api/flights/"+tt.flightID, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				var response models.FlightView
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
				assert.Equal(t, "FL0001", response.ID)
				assert.Equal(t, 462.0, response.CurrentPrice)
				assert.Equal(t, models.DemandMedium, response.DemandLevel)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_GetFareHistory(t *testing.T) {
	history := &models.FareHistory{
		FlightID:       "FL0001",
		Route:          "JFK -> LAX",
		HistoryEntries: 2,
		History: []models.FareHistoryEntry{
			{Price: 450, AvailableSeats: 101, DemandLevel: models.DemandMedium},
			{Price: 462, AvailableSeats: 100, DemandLevel: models.DemandMedium},
		},
	}

	tests := []struct {
		name           string
		path           string
		expectLimit    int
		mockReturn     *models.FareHistory
		mockError      error
		expectedStatus int
		callsService   bool
	}{
		{"default limit", "/api/flights/FL0001/fare-history", 0, history, nil, http.StatusOK, true},
		{"explicit limit", "/api/flights/FL0001/fare-history?limit=2", 2, history, nil, http.StatusOK, true},
		{"limit too large", "/api/flights/FL0001/fare-history?limit=201", 201, nil,
			fmt.Errorf("%w: limit must be between 1 and 200", models.ErrInvalidArgument), http.StatusBadRequest, true},
		{"unknown flight", "/api/flights/FL0001/fare-history?limit=5", 5, nil,
			fmt.Errorf("%w: FL0001", models.ErrNotFound), http.StatusNotFound, true},
		{"bad limit", "/api/flights/FL0001/fare-history?limit=x", 0, nil, nil, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockFlightService)
			router := setupTestRouter(NewHandler(mockService))

			if tt.callsService {
				var ret interface{}
				if tt.mockReturn != nil {
					ret = tt.mockReturn
				}
				mockService.On("GetFareHistory", mock.Anything, "FL0001", tt.expectLimit).Return(ret, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				var response models.FareHistory
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
				assert.Equal(t, 2, response.HistoryEntries)
				assert.Len(t, response.History, 2)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_BookSeat(t *testing.T) {
	tests := []struct {
		name           string
		mockReturn     *models.Booking
		mockError      error
		expectedStatus int
	}{
		{
			name: "booked",
			mockReturn: &models.Booking{
				ID:               "b-1",
				FlightID:         "FL0001",
				ConfirmationCode: "ABC123",
				Price:            462,
				SeatsRemaining:   99,
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "sold out",
			mockError:      fmt.Errorf("%w: flight FL0001 is sold out", models.ErrNoSeatsAvailable),
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "departed",
			mockError:      fmt.Errorf("%w: FL0001", models.ErrFlightDeparted),
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "unknown flight",
			mockError:      fmt.Errorf("%w: FL0001", models.ErrNotFound),
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockFlightService)
			router := setupTestRouter(NewHandler(mockService))

			var ret interface{}
			if tt.mockReturn != nil {
				ret = tt.mockReturn
			}
			mockService.On("BookSeat", mock.Anything, "FL0001").Return(ret, tt.mockError)

			req := httptest.NewRequest(http.MethodPost, "/api/flights/FL0001/book", nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusCreated {
				var response models.Booking
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
				assert.Equal(t, "ABC123", response.ConfirmationCode)
			} else {
				var response map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
				assert.NotEmpty(t, response["error"])
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_GetStats(t *testing.T) {
	mockService := new(mocks.MockFlightService)
	router := setupTestRouter(NewHandler(mockService))

	mockService.On("GetStats", mock.Anything).Return(&models.Stats{
		TotalFlights:  400,
		ActiveFlights: 380,
		OccupancyRate: "41.27%",
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var response models.Stats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, 400, response.TotalFlights)
	assert.Equal(t, "41.27%", response.OccupancyRate)
	mockService.AssertExpectations(t)
}

func TestHandler_HealthCheck(t *testing.T) {
	router := setupTestRouter(NewHandler(new(mocks.MockFlightService)))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
