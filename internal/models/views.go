package models

import "time"

// FlightView is a flight together with its live price, as served to API clients
type FlightView struct {
	ID              string      `json:"flightId"`
	Airline         string      `json:"airline"`
	Origin          string      `json:"origin"`
	Destination     string      `json:"destination"`
	DepartureTime   time.Time   `json:"departureTime"`
	ArrivalTime     time.Time   `json:"arrivalTime"`
	DurationMinutes int         `json:"durationMinutes"`
	Duration        string      `json:"duration"`
	CurrentPrice    float64     `json:"currentPrice"`
	BaseFare        float64     `json:"baseFare"`
	AvailableSeats  int         `json:"availableSeats"`
	TotalSeats      int         `json:"totalSeats"`
	Tier            PricingTier `json:"tier"`
	DemandLevel     DemandLevel `json:"demandLevel"`
}

// NewFlightView combines a flight snapshot with its computed price and demand
func NewFlightView(f Flight, price float64, demand DemandLevel) FlightView {
	minutes := f.DurationMinutes()
	return FlightView{
		ID:              f.ID,
		Airline:         f.Airline,
		Origin:          f.Origin,
		Destination:     f.Destination,
		DepartureTime:   f.DepartureTime,
		ArrivalTime:     f.ArrivalTime,
		DurationMinutes: minutes,
		Duration:        FormatDuration(minutes),
		CurrentPrice:    price,
		BaseFare:        f.BaseFare,
		AvailableSeats:  f.AvailableSeats,
		TotalSeats:      f.TotalSeats,
		Tier:            f.Tier,
		DemandLevel:     demand,
	}
}

// FareHistory is the trend payload for one flight
type FareHistory struct {
	FlightID       string             `json:"flightId"`
	Airline        string             `json:"airline"`
	Route          string             `json:"route"`
	DepartureTime  time.Time          `json:"departureTime"`
	BaseFare       float64            `json:"baseFare"`
	HistoryEntries int                `json:"historyEntries"`
	History        []FareHistoryEntry `json:"history"`
}

// Stats is a read-only fold over the whole flight population
type Stats struct {
	TotalFlights         int    `json:"totalFlights"`
	ActiveFlights        int    `json:"activeFlights"`
	TotalSeats           int    `json:"totalSeats"`
	AvailableSeats       int    `json:"availableSeats"`
	OccupancyRate        string `json:"occupancyRate"`
	Airports             int    `json:"airports"`
	Airlines             int    `json:"airlines"`
	TrackedFareHistories int    `json:"trackedFareHistories"`
}

// SortBy selects the ordering of flight listings
type SortBy string

const (
	SortByPrice    SortBy = "price"
	SortByDuration SortBy = "duration"
)

// SearchParams represents a route/date search request
type SearchParams struct {
	Origin      string `json:"origin" validate:"required,len=3"`
	Destination string `json:"destination" validate:"required,len=3"`
	Date        string `json:"date" validate:"required"`
	SortBy      SortBy `json:"sortBy,omitempty"`
}
