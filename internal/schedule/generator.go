// Package schedule generates the synthetic flight population loaded at startup.
package schedule

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/cx-tal-miterani/flight-pricing/internal/models"
)

var Airlines = []string{
	"SkyHigh Airways",
	"CloudNine Air",
	"Horizon Airlines",
	"Velocity Air",
	"Tranquil Jets",
	"Pacific Wings",
	"Atlantic Express",
	"Continental Connect",
}

var Airports = []string{
	"JFK", "LAX", "ORD", "DFW", "ATL", "DEN",
	"SFO", "LAS", "MIA", "SEA", "BOS", "IAH",
	"PHX", "MCO", "EWR", "MSP", "DTW", "PHL",
}

var tierFareMultipliers = map[models.PricingTier]float64{
	models.PricingTierEconomy:  1.0,
	models.PricingTierPremium:  1.5,
	models.PricingTierBusiness: 2.5,
	models.PricingTierFirst:    4.0,
}

// seat ranges per tier, inclusive
var tierSeats = map[models.PricingTier][2]int{
	models.PricingTierEconomy:  {150, 200},
	models.PricingTierPremium:  {40, 60},
	models.PricingTierBusiness: {20, 30},
	models.PricingTierFirst:    {8, 16},
}

const (
	minDailyFlights = 15
	maxDailyFlights = 25
	minDuration     = 90
	maxDuration     = 420
)

// Generate builds flights for daysAhead days starting on start's date.
// Departures fall between 06:00 and 22:45 on quarter hours, in start's location.
func Generate(rng *rand.Rand, start time.Time, daysAhead int) []models.Flight {
	var flights []models.Flight
	count := 0

	for day := 0; day < daysAhead; day++ {
		date := start.AddDate(0, 0, day)
		daily := between(rng, minDailyFlights, maxDailyFlights)

		for i := 0; i < daily; i++ {
			origin := Airports[rng.Intn(len(Airports))]
			destination := origin
			for destination == origin {
				destination = Airports[rng.Intn(len(Airports))]
			}

			departure := time.Date(date.Year(), date.Month(), date.Day(),
				between(rng, 6, 22), 15*rng.Intn(4), 0, 0, start.Location())
			duration := between(rng, minDuration, maxDuration)
			tier := models.AllPricingTiers[rng.Intn(len(models.AllPricingTiers))]
			total := SeatsForTier(rng, tier)

			count++
			flights = append(flights, models.Flight{
				ID:             fmt.Sprintf("FL%04d", count),
				Airline:        Airlines[rng.Intn(len(Airlines))],
				Origin:         origin,
				Destination:    destination,
				DepartureTime:  departure,
				ArrivalTime:    departure.Add(time.Duration(duration) * time.Minute),
				BaseFare:       BaseFare(duration, tier),
				TotalSeats:     total,
				AvailableSeats: between(rng, int(float64(total)*0.3), total),
				Tier:           tier,
			})
		}
	}

	return flights
}

// BaseFare is half a currency unit per block minute, scaled by cabin tier
func BaseFare(durationMinutes int, tier models.PricingTier) float64 {
	fare := float64(durationMinutes) * 0.5 * tierFareMultipliers[tier]
	return math.Round(fare*100) / 100
}

// SeatsForTier draws a cabin capacity for the tier
func SeatsForTier(rng *rand.Rand, tier models.PricingTier) int {
	r := tierSeats[tier]
	return between(rng, r[0], r[1])
}

func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}
