// Package queue publishes booking events to RabbitMQ.
package queue

import (
	"math"
	"time"

	"github.com/cx-tal-miterani/flight-pricing/internal/models"
)

// BookingConfirmedQueue is the durable queue booking events are routed to
const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is published once a seat sale is confirmed. It carries
// enough for downstream consumers to notify or report without calling the API.
type BookingConfirmedEvent struct {
	BookingID        string `json:"booking_id"`
	FlightID         string `json:"flight_id"`
	ConfirmationCode string `json:"confirmation_code"`
	PriceCents       int64  `json:"price_cents"`
	DemandLevel      string `json:"demand_level"`
	SeatsRemaining   int    `json:"seats_remaining"`
	ConfirmedAt      string `json:"confirmed_at"`
}

// NewBookingConfirmedEvent builds the wire payload for a booking
func NewBookingConfirmedEvent(b models.Booking) BookingConfirmedEvent {
	return BookingConfirmedEvent{
		BookingID:        b.ID,
		FlightID:         b.FlightID,
		ConfirmationCode: b.ConfirmationCode,
		PriceCents:       int64(math.Round(b.Price * 100)),
		DemandLevel:      string(b.DemandLevel),
		SeatsRemaining:   b.SeatsRemaining,
		ConfirmedAt:      b.BookedAt.UTC().Format(time.RFC3339),
	}
}
