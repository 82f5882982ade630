package inventory

import (
	"fmt"

	"github.com/cx-tal-miterani/flight-pricing/internal/models"
)

// Tx gives access to one flight while the store's write lock is held.
// It must not be retained after the Update callback returns.
type Tx struct {
	store  *Store
	flight *models.Flight
}

// Flight returns the current state of the locked flight
func (tx *Tx) Flight() models.Flight {
	return *tx.flight
}

// ConsumeSeats removes n seats from the locked flight
func (tx *Tx) ConsumeSeats(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: cannot consume %d seats", models.ErrInvalidArgument, n)
	}
	if tx.flight.AvailableSeats == 0 {
		return fmt.Errorf("%w: flight %s is sold out", models.ErrNoSeatsAvailable, tx.flight.ID)
	}
	if n > tx.flight.AvailableSeats {
		return fmt.Errorf("%w: flight %s has %d seats left, %d requested",
			models.ErrNoSeatsAvailable, tx.flight.ID, tx.flight.AvailableSeats, n)
	}
	tx.flight.AvailableSeats -= n
	return nil
}

// GetDemandLevel reads the demand cache without re-locking
func (tx *Tx) GetDemandLevel(flightID string) (models.DemandLevel, bool) {
	level, ok := tx.store.demand[flightID]
	return level, ok
}

// SetDemandLevel writes the demand cache without re-locking
func (tx *Tx) SetDemandLevel(flightID string, level models.DemandLevel) {
	tx.store.demand[flightID] = level
}

// AppendFareHistory records a snapshot for the locked flight
func (tx *Tx) AppendFareHistory(entry models.FareHistoryEntry) {
	id := tx.flight.ID
	tx.store.history[id] = append(tx.store.history[id], entry)
}

// ReleaseSeats returns n seats to the locked flight, never above capacity
func (tx *Tx) ReleaseSeats(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: cannot release %d seats", models.ErrInvalidArgument, n)
	}
	if tx.flight.AvailableSeats+n > tx.flight.TotalSeats {
		return fmt.Errorf("%w: flight %s cannot hold %d more seats",
			models.ErrInvalidArgument, tx.flight.ID, n)
	}
	tx.flight.AvailableSeats += n
	return nil
}

// Reservation returns the live hold recorded for a booking on the locked flight.
// A booking held on another flight, or one already released, is rejected.
func (tx *Tx) Reservation(bookingID string) (models.Reservation, bool, error) {
	h, ok := tx.store.holds[bookingID]
	if !ok {
		return models.Reservation{}, false, nil
	}
	if h.reservation.FlightID != tx.flight.ID {
		return models.Reservation{}, false, fmt.Errorf("%w: booking %s holds a seat on flight %s",
			models.ErrInvalidArgument, bookingID, h.reservation.FlightID)
	}
	if h.released {
		return models.Reservation{}, false, fmt.Errorf("%w: booking %s was released",
			models.ErrInvalidArgument, bookingID)
	}
	return h.reservation, true, nil
}

// HoldSeat takes one seat for the reservation's booking
func (tx *Tx) HoldSeat(res models.Reservation) error {
	if res.BookingID == "" {
		return fmt.Errorf("%w: booking id is required", models.ErrInvalidArgument)
	}
	if _, exists := tx.store.holds[res.BookingID]; exists {
		return fmt.Errorf("%w: booking %s already holds a seat", models.ErrInvalidArgument, res.BookingID)
	}
	if err := tx.ConsumeSeats(1); err != nil {
		return err
	}
	tx.store.holds[res.BookingID] = &hold{reservation: res}
	return nil
}

// ReleaseHold gives the booking's seat back. It reports false, and changes
// nothing, for an unknown or already released booking.
func (tx *Tx) ReleaseHold(bookingID string) (bool, error) {
	h, ok := tx.store.holds[bookingID]
	if !ok || h.released || h.reservation.FlightID != tx.flight.ID {
		return false, nil
	}
	if err := tx.ReleaseSeats(1); err != nil {
		return false, err
	}
	h.released = true
	return true, nil
}
