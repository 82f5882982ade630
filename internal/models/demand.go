package models

import "time"

// DemandLevel is the market pressure label attached to a flight
type DemandLevel string

const (
	DemandLow      DemandLevel = "low"
	DemandMedium   DemandLevel = "medium"
	DemandHigh     DemandLevel = "high"
	DemandVeryHigh DemandLevel = "very_high"
)

// AllDemandLevels is ordered by increasing price multiplier
var AllDemandLevels = []DemandLevel{
	DemandLow,
	DemandMedium,
	DemandHigh,
	DemandVeryHigh,
}

// FareHistoryEntry is an immutable price snapshot taken after a simulated booking
type FareHistoryEntry struct {
	Timestamp      time.Time   `json:"timestamp"`
	Price          float64     `json:"price"`
	AvailableSeats int         `json:"availableSeats"`
	DemandLevel    DemandLevel `json:"demandLevel"`
}

// FareUpdate is pushed to live subscribers whenever a new snapshot is recorded
type FareUpdate struct {
	FlightID string           `json:"flightId"`
	Entry    FareHistoryEntry `json:"entry"`
}
