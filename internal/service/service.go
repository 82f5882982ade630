package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cx-tal-miterani/flight-pricing/internal/inventory"
	"github.com/cx-tal-miterani/flight-pricing/internal/models"
	"github.com/cx-tal-miterani/flight-pricing/internal/pricing"
)

const (
	DefaultListLimit    = 100
	MaxListLimit        = 500
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200

	dateLayout = "2006-01-02"
)

// FlightService defines the flight pricing service interface
type FlightService interface {
	ListFlights(ctx context.Context, sortBy models.SortBy, limit int) ([]models.FlightView, error)
	SearchFlights(ctx context.Context, params models.SearchParams) ([]models.FlightView, error)
	GetFlight(ctx context.Context, flightID string) (*models.FlightView, error)
	GetFareHistory(ctx context.Context, flightID string, limit int) (*models.FareHistory, error)
	BookSeat(ctx context.Context, flightID string) (*models.Booking, error)
	GetStats(ctx context.Context) (*models.Stats, error)
}

// SeatBooker sells one seat on a flight
type SeatBooker interface {
	Book(ctx context.Context, flightID string) (*models.Booking, error)
}

// flightServiceImpl implements FlightService
type flightServiceImpl struct {
	store  *inventory.Store
	engine *pricing.Engine
	booker SeatBooker
}

// NewFlightService creates a new FlightService
func NewFlightService(store *inventory.Store, engine *pricing.Engine, booker SeatBooker) FlightService {
	return &flightServiceImpl{
		store:  store,
		engine: engine,
		booker: booker,
	}
}

func (s *flightServiceImpl) ListFlights(ctx context.Context, sortBy models.SortBy, limit int) ([]models.FlightView, error) {
	limit, err := normalizeLimit(limit, DefaultListLimit, MaxListLimit)
	if err != nil {
		return nil, err
	}

	now := s.engine.Now()
	views := s.priceFlights(s.store.GetAllFlights(), func(f models.Flight) bool {
		return !f.HasDeparted(now)
	})
	if err := sortViews(views, sortBy); err != nil {
		return nil, err
	}

	if len(views) > limit {
		views = views[:limit]
	}
	return views, nil
}

func (s *flightServiceImpl) SearchFlights(ctx context.Context, params models.SearchParams) ([]models.FlightView, error) {
	origin := strings.ToUpper(strings.TrimSpace(params.Origin))
	destination := strings.ToUpper(strings.TrimSpace(params.Destination))
	if len(origin) != 3 || len(destination) != 3 {
		return nil, fmt.Errorf("%w: airport codes must be 3 letters", models.ErrInvalidArgument)
	}

	date, err := time.Parse(dateLayout, params.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date format, use YYYY-MM-DD", models.ErrInvalidArgument)
	}
	day := date.Format(dateLayout)

	now := s.engine.Now()
	views := s.priceFlights(s.store.GetAllFlights(), func(f models.Flight) bool {
		return f.Origin == origin &&
			f.Destination == destination &&
			f.DepartureTime.Format(dateLayout) == day &&
			!f.HasDeparted(now)
	})
	if err := sortViews(views, params.SortBy); err != nil {
		return nil, err
	}
	return views, nil
}

func (s *flightServiceImpl) GetFlight(ctx context.Context, flightID string) (*models.FlightView, error) {
	f, ok := s.store.GetFlightByID(flightID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, flightID)
	}
	view := s.priceFlight(f)
	return &view, nil
}

func (s *flightServiceImpl) GetFareHistory(ctx context.Context, flightID string, limit int) (*models.FareHistory, error) {
	limit, err := normalizeLimit(limit, DefaultHistoryLimit, MaxHistoryLimit)
	if err != nil {
		return nil, err
	}

	f, ok := s.store.GetFlightByID(flightID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, flightID)
	}

	history := s.store.GetFareHistory(flightID)
	total := len(history)
	if total > limit {
		history = history[total-limit:]
	}

	return &models.FareHistory{
		FlightID:       f.ID,
		Airline:        f.Airline,
		Route:          fmt.Sprintf("%s -> %s", f.Origin, f.Destination),
		DepartureTime:  f.DepartureTime,
		BaseFare:       f.BaseFare,
		HistoryEntries: total,
		History:        history,
	}, nil
}

func (s *flightServiceImpl) BookSeat(ctx context.Context, flightID string) (*models.Booking, error) {
	if flightID == "" {
		return nil, fmt.Errorf("%w: flight id is required", models.ErrInvalidArgument)
	}
	return s.booker.Book(ctx, flightID)
}

func (s *flightServiceImpl) GetStats(ctx context.Context) (*models.Stats, error) {
	now := s.engine.Now()
	airports := make(map[string]struct{})
	airlines := make(map[string]struct{})
	stats := &models.Stats{}

	for _, f := range s.store.GetAllFlights() {
		stats.TotalFlights++
		if !f.HasDeparted(now) {
			stats.ActiveFlights++
		}
		stats.TotalSeats += f.TotalSeats
		stats.AvailableSeats += f.AvailableSeats
		airports[f.Origin] = struct{}{}
		airports[f.Destination] = struct{}{}
		airlines[f.Airline] = struct{}{}
	}

	stats.OccupancyRate = "0%"
	if stats.TotalSeats > 0 {
		sold := stats.TotalSeats - stats.AvailableSeats
		stats.OccupancyRate = fmt.Sprintf("%.2f%%", float64(sold)/float64(stats.TotalSeats)*100)
	}
	stats.Airports = len(airports)
	stats.Airlines = len(airlines)
	stats.TrackedFareHistories = s.store.TrackedFareHistories()

	return stats, nil
}

func (s *flightServiceImpl) priceFlights(flights []models.Flight, keep func(models.Flight) bool) []models.FlightView {
	views := make([]models.FlightView, 0, len(flights))
	for _, f := range flights {
		if keep(f) {
			views = append(views, s.priceFlight(f))
		}
	}
	return views
}

func (s *flightServiceImpl) priceFlight(f models.Flight) models.FlightView {
	level := pricing.DemandFor(s.store, f)
	return models.NewFlightView(f, s.engine.Price(f, level), level)
}

func sortViews(views []models.FlightView, sortBy models.SortBy) error {
	switch sortBy {
	case "", models.SortByPrice:
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].CurrentPrice < views[j].CurrentPrice
		})
	case models.SortByDuration:
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].DurationMinutes < views[j].DurationMinutes
		})
	default:
		return fmt.Errorf("%w: unknown sort key %q", models.ErrInvalidArgument, sortBy)
	}
	return nil
}

// normalizeLimit maps 0 to the default and rejects anything outside 1..max
func normalizeLimit(limit, def, max int) (int, error) {
	if limit == 0 {
		return def, nil
	}
	if limit < 1 || limit > max {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d", models.ErrInvalidArgument, max)
	}
	return limit, nil
}
