package mocks

import (
	"context"

	"github.com/cx-tal-miterani/flight-pricing/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockFlightService is a mock implementation of FlightService
type MockFlightService struct {
	mock.Mock
}

func (m *MockFlightService) ListFlights(ctx context.Context, sortBy models.SortBy, limit int) ([]models.FlightView, error) {
	args := m.Called(ctx, sortBy, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FlightView), args.Error(1)
}

func (m *MockFlightService) SearchFlights(ctx context.Context, params models.SearchParams) ([]models.FlightView, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FlightView), args.Error(1)
}

func (m *MockFlightService) GetFlight(ctx context.Context, flightID string) (*models.FlightView, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FlightView), args.Error(1)
}

func (m *MockFlightService) GetFareHistory(ctx context.Context, flightID string, limit int) (*models.FareHistory, error) {
	args := m.Called(ctx, flightID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FareHistory), args.Error(1)
}

func (m *MockFlightService) BookSeat(ctx context.Context, flightID string) (*models.Booking, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockFlightService) GetStats(ctx context.Context) (*models.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stats), args.Error(1)
}
