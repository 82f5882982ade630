// Package booking sells single seats against the live inventory.
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cx-tal-miterani/flight-pricing/internal/inventory"
	"github.com/cx-tal-miterani/flight-pricing/internal/models"
	"github.com/cx-tal-miterani/flight-pricing/internal/pricing"
	"github.com/google/uuid"
)

// EventPublisher announces confirmed bookings
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, booking models.Booking) error
}

// FarePublisher receives the fare snapshot recorded after a sale
type FarePublisher interface {
	PublishFareUpdate(ctx context.Context, update models.FareUpdate) error
}

// Desk reserves, confirms and releases seats
type Desk struct {
	store  *inventory.Store
	engine *pricing.Engine
	events EventPublisher
	fares  FarePublisher
	logger *slog.Logger
}

// NewDesk creates a Desk. events and fares may be nil.
func NewDesk(store *inventory.Store, engine *pricing.Engine, events EventPublisher, fares FarePublisher, logger *slog.Logger) *Desk {
	if logger == nil {
		logger = slog.Default()
	}
	return &Desk{
		store:  store,
		engine: engine,
		events: events,
		fares:  fares,
		logger: logger,
	}
}

// NewBookingID returns a fresh booking identifier
func NewBookingID() string {
	return uuid.New().String()
}

// Book sells one seat on the flight: reserve, then confirm, releasing the seat
// again if confirmation fails.
func (d *Desk) Book(ctx context.Context, flightID string) (*models.Booking, error) {
	res, err := d.Reserve(ctx, NewBookingID(), flightID)
	if err != nil {
		return nil, err
	}

	booking, err := d.Confirm(ctx, *res)
	if err != nil {
		if releaseErr := d.Release(ctx, *res); releaseErr != nil {
			d.logger.Error("failed to release seat", "bookingId", res.BookingID, "error", releaseErr)
		}
		return nil, err
	}
	return booking, nil
}

// Reserve quotes the live fare and takes one seat under a single store lock.
// Reserving a booking that already holds a seat returns the existing hold.
func (d *Desk) Reserve(ctx context.Context, bookingID, flightID string) (*models.Reservation, error) {
	var (
		res      *models.Reservation
		update   models.FareUpdate
		existing bool
	)

	err := d.store.Update(flightID, func(tx *inventory.Tx) error {
		held, ok, err := tx.Reservation(bookingID)
		if err != nil {
			return err
		}
		if ok {
			res, existing = &held, true
			return nil
		}

		now := d.engine.Now()
		f := tx.Flight()
		if f.HasDeparted(now) {
			return fmt.Errorf("%w: %s", models.ErrFlightDeparted, f.ID)
		}

		level := pricing.DemandFor(tx, f)
		res = &models.Reservation{
			BookingID:      bookingID,
			FlightID:       f.ID,
			Price:          d.engine.Price(f, level),
			DemandLevel:    level,
			SeatsRemaining: f.AvailableSeats - 1,
			ReservedAt:     now,
		}
		if err := tx.HoldSeat(*res); err != nil {
			return err
		}

		update = d.recordFare(tx, now, level)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if existing {
		d.logger.Info("seat already reserved", "bookingId", bookingID, "flightId", flightID)
		return res, nil
	}

	d.logger.Info("seat reserved", "bookingId", bookingID, "flightId", flightID, "price", res.Price)
	d.publishFare(ctx, update)
	return res, nil
}

// recordFare appends the locked flight's current fare to its history
func (d *Desk) recordFare(tx *inventory.Tx, now time.Time, level models.DemandLevel) models.FareUpdate {
	f := tx.Flight()
	entry := models.FareHistoryEntry{
		Timestamp:      now,
		Price:          d.engine.Price(f, level),
		AvailableSeats: f.AvailableSeats,
		DemandLevel:    level,
	}
	tx.AppendFareHistory(entry)
	return models.FareUpdate{FlightID: f.ID, Entry: entry}
}

func (d *Desk) publishFare(ctx context.Context, update models.FareUpdate) {
	if d.fares == nil {
		return
	}
	if err := d.fares.PublishFareUpdate(ctx, update); err != nil {
		d.logger.Warn("failed to publish fare update", "flightId", update.FlightID, "error", err)
	}
}

// Confirm turns a reservation into a booking and announces it
func (d *Desk) Confirm(ctx context.Context, res models.Reservation) (*models.Booking, error) {
	booking := &models.Booking{
		ID:               res.BookingID,
		FlightID:         res.FlightID,
		ConfirmationCode: ConfirmationCode(res.BookingID),
		Price:            res.Price,
		DemandLevel:      res.DemandLevel,
		SeatsRemaining:   res.SeatsRemaining,
		BookedAt:         d.engine.Now(),
	}

	if d.events != nil {
		if err := d.events.PublishBookingConfirmed(ctx, *booking); err != nil {
			return nil, fmt.Errorf("failed to publish booking %s: %w", res.BookingID, err)
		}
	}

	d.logger.Info("booking confirmed", "bookingId", booking.ID, "confirmation", booking.ConfirmationCode)
	return booking, nil
}

// Release gives a reserved seat back and records the restored fare.
// Releasing an unknown or already released booking changes nothing.
func (d *Desk) Release(ctx context.Context, res models.Reservation) error {
	var (
		update   models.FareUpdate
		released bool
	)

	err := d.store.Update(res.FlightID, func(tx *inventory.Tx) error {
		ok, err := tx.ReleaseHold(res.BookingID)
		if err != nil || !ok {
			return err
		}
		released = true

		now := d.engine.Now()
		update = d.recordFare(tx, now, pricing.DemandFor(tx, tx.Flight()))
		return nil
	})
	if err != nil {
		return err
	}
	if !released {
		d.logger.Info("seat release skipped, no live hold", "bookingId", res.BookingID, "flightId", res.FlightID)
		return nil
	}

	d.logger.Info("seat released", "bookingId", res.BookingID, "flightId", res.FlightID)
	d.publishFare(ctx, update)
	return nil
}

// ConfirmationCode derives a six character record locator from a booking ID
func ConfirmationCode(bookingID string) string {
	code := strings.ToUpper(strings.ReplaceAll(bookingID, "-", ""))
	if len(code) > 6 {
		code = code[:6]
	}
	return code
}
