// Package pricing derives a flight's live price from occupancy, time to
// departure and demand level.
package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/cx-tal-miterani/flight-pricing/internal/models"
)

const (
	// OccupancyWeight scales occupancy into the availability multiplier (range 1.0 to 1.8)
	OccupancyWeight = 0.8
	// MinFareRatio is the floor as a fraction of the base fare
	MinFareRatio = 0.5
)

var demandMultipliers = map[models.DemandLevel]float64{
	models.DemandLow:      0.85,
	models.DemandMedium:   1.0,
	models.DemandHigh:     1.25,
	models.DemandVeryHigh: 1.6,
}

// Engine prices flights against its clock
type Engine struct {
	now func() time.Time
}

// NewEngine creates an Engine that reads the wall clock
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineWithClock creates an Engine with a fixed time source (for testing)
func NewEngineWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Now returns the engine's current time
func (e *Engine) Now() time.Time {
	return e.now()
}

// Price computes the current price of a flight at the given demand level
func (e *Engine) Price(f models.Flight, level models.DemandLevel) float64 {
	return PriceAt(f, level, e.now())
}

// PriceAt computes the price as of now. A departed flight is worth 0.
func PriceAt(f models.Flight, level models.DemandLevel, now time.Time) float64 {
	availability := AvailabilityMultiplier(f)

	hours := f.DepartureTime.Sub(now).Hours()
	if hours < 0 {
		return 0
	}
	timeFactor := TimeMultiplier(hours)
	demand := DemandMultiplier(level)

	price := f.BaseFare * availability * timeFactor * demand
	price = math.Max(price, f.BaseFare*MinFareRatio)

	return roundCents(price)
}

// AvailabilityMultiplier grows linearly with occupancy
func AvailabilityMultiplier(f models.Flight) float64 {
	return 1 + f.Occupancy()*OccupancyWeight
}

// TimeMultiplier maps hours until departure to an urgency factor.
// Buckets are half-open and checked from the most urgent.
func TimeMultiplier(hoursUntilDeparture float64) float64 {
	switch {
	case hoursUntilDeparture < 24:
		return 1.5
	case hoursUntilDeparture < 72:
		return 1.3
	case hoursUntilDeparture < 168:
		return 1.1
	case hoursUntilDeparture > 720:
		return 0.9
	default:
		return 1.0
	}
}

// DemandMultiplier looks up the factor for a demand level. Every level has an
// entry; a missing one is a programming error.
func DemandMultiplier(level models.DemandLevel) float64 {
	m, ok := demandMultipliers[level]
	if !ok {
		panic(fmt.Sprintf("pricing: no multiplier for demand level %q", level))
	}
	return m
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
