package models

import "time"

// Booking is the confirmation of one seat sold on a flight
type Booking struct {
	ID               string      `json:"bookingId"`
	FlightID         string      `json:"flightId"`
	ConfirmationCode string      `json:"confirmationCode"`
	Price            float64     `json:"price"`
	DemandLevel      DemandLevel `json:"demandLevel"`
	SeatsRemaining   int         `json:"seatsRemaining"`
	BookedAt         time.Time   `json:"bookedAt"`
}

// BookingWorkflowInput is the input of the seat booking workflow
type BookingWorkflowInput struct {
	BookingID string `json:"bookingId"`
	FlightID  string `json:"flightId"`
}

// Reservation is a seat taken but not yet confirmed. Price is the fare quoted
// just before the seat was consumed.
type Reservation struct {
	BookingID      string      `json:"bookingId"`
	FlightID       string      `json:"flightId"`
	Price          float64     `json:"price"`
	DemandLevel    DemandLevel `json:"demandLevel"`
	SeatsRemaining int         `json:"seatsRemaining"`
	ReservedAt     time.Time   `json:"reservedAt"`
}

// Error types carried across the workflow boundary
const (
	ErrorTypeNotFound        = "NotFound"
	ErrorTypeInvalidState    = "InvalidState"
	ErrorTypeInvalidArgument = "InvalidArgument"
)
