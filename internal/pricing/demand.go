package pricing

import "github.com/cx-tal-miterani/flight-pricing/internal/models"

// PeakBonus is added to the occupancy score for peak departure hours
const PeakBonus = 0.3

// DemandCache is where classified levels are memoized. Both the store and a
// store transaction satisfy it.
type DemandCache interface {
	GetDemandLevel(flightID string) (models.DemandLevel, bool)
	SetDemandLevel(flightID string, level models.DemandLevel)
}

// DemandFor returns the cached level of a flight, classifying and persisting
// it on first access. A cached level is never recomputed here, so it can drift
// away from what occupancy alone would suggest.
func DemandFor(cache DemandCache, f models.Flight) models.DemandLevel {
	if level, ok := cache.GetDemandLevel(f.ID); ok {
		return level
	}
	level := Classify(f)
	cache.SetDemandLevel(f.ID, level)
	return level
}

// Classify derives a demand level from occupancy and departure hour
func Classify(f models.Flight) models.DemandLevel {
	score := f.Occupancy()
	if IsPeakHour(f.DepartureTime.Hour()) {
		score += PeakBonus
	}

	switch {
	case score < 0.4:
		return models.DemandLow
	case score < 0.6:
		return models.DemandMedium
	case score < 0.8:
		return models.DemandHigh
	default:
		return models.DemandVeryHigh
	}
}

// IsPeakHour reports morning (06-09) and evening (17-20) departure banks, inclusive
func IsPeakHour(hour int) bool {
	return (hour >= 6 && hour <= 9) || (hour >= 17 && hour <= 20)
}
