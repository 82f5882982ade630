package models

import (
	"fmt"
	"time"
)

// Flight represents a scheduled flight and its live seat inventory
type Flight struct {
	ID             string      `json:"flightId"`
	Airline        string      `json:"airline"`
	Origin         string      `json:"origin"`
	Destination    string      `json:"destination"`
	DepartureTime  time.Time   `json:"departureTime"`
	ArrivalTime    time.Time   `json:"arrivalTime"`
	BaseFare       float64     `json:"baseFare"`
	TotalSeats     int         `json:"totalSeats"`
	AvailableSeats int         `json:"availableSeats"`
	Tier           PricingTier `json:"tier"`
}

type PricingTier string

const (
	PricingTierEconomy  PricingTier = "economy"
	PricingTierPremium  PricingTier = "premium"
	PricingTierBusiness PricingTier = "business"
	PricingTierFirst    PricingTier = "first"
)

// AllPricingTiers lists the tiers in ascending cabin order
var AllPricingTiers = []PricingTier{
	PricingTierEconomy,
	PricingTierPremium,
	PricingTierBusiness,
	PricingTierFirst,
}

func (t PricingTier) Valid() bool {
	switch t {
	case PricingTierEconomy, PricingTierPremium, PricingTierBusiness, PricingTierFirst:
		return true
	}
	return false
}

// DurationMinutes returns the scheduled block time in whole minutes
func (f Flight) DurationMinutes() int {
	return int(f.ArrivalTime.Sub(f.DepartureTime) / time.Minute)
}

// Occupancy is the fraction of seats already sold, 0 for an empty cabin and 1 for a full one
func (f Flight) Occupancy() float64 {
	return 1 - float64(f.AvailableSeats)/float64(f.TotalSeats)
}

// HasDeparted reports whether the flight is no longer bookable at now.
// A flight departing exactly at now counts as departed.
func (f Flight) HasDeparted(now time.Time) bool {
	return !f.DepartureTime.After(now)
}

// Validate checks the creation preconditions. Pricing relies on TotalSeats > 0,
// so a flight that fails here must never reach the store.
func (f Flight) Validate() error {
	switch {
	case f.ID == "":
		return fmt.Errorf("%w: missing flight id", ErrInvalidFlight)
	case f.TotalSeats <= 0:
		return fmt.Errorf("%w: flight %s has %d total seats", ErrInvalidFlight, f.ID, f.TotalSeats)
	case f.AvailableSeats < 0 || f.AvailableSeats > f.TotalSeats:
		return fmt.Errorf("%w: flight %s has %d of %d seats available", ErrInvalidFlight, f.ID, f.AvailableSeats, f.TotalSeats)
	case f.BaseFare <= 0:
		return fmt.Errorf("%w: flight %s has base fare %.2f", ErrInvalidFlight, f.ID, f.BaseFare)
	case !f.ArrivalTime.After(f.DepartureTime):
		return fmt.Errorf("%w: flight %s arrives before it departs", ErrInvalidFlight, f.ID)
	case !f.Tier.Valid():
		return fmt.Errorf("%w: flight %s has unknown tier %q", ErrInvalidFlight, f.ID, f.Tier)
	}
	return nil
}

// FormatDuration renders minutes the way the flight listings show them, e.g. "2h 5m"
func FormatDuration(minutes int) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
