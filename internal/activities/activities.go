package activities

import (
	"context"
	"errors"
	"strings"

	"github.com/cx-tal-miterani/flight-pricing/internal/booking"
	"github.com/cx-tal-miterani/flight-pricing/internal/models"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
)

// Activity names as registered with the worker
const (
	ReserveSeatName    = "ReserveSeat"
	ConfirmBookingName = "ConfirmBooking"
	ReleaseSeatName    = "ReleaseSeat"
)

// Activities wraps the booking desk for the seat booking workflow
type Activities struct {
	desk *booking.Desk
}

// NewActivities creates a new Activities instance
func NewActivities(desk *booking.Desk) *Activities {
	return &Activities{desk: desk}
}

// ReserveSeat activity - quotes the fare and takes one seat
func (a *Activities) ReserveSeat(ctx context.Context, input models.BookingWorkflowInput) (*models.Reservation, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Reserving seat", "bookingId", input.BookingID, "flightId", input.FlightID)

	res, err := a.desk.Reserve(ctx, input.BookingID, input.FlightID)
	if err != nil {
		logger.Warn("Seat reservation failed", "bookingId", input.BookingID, "error", err)
		return nil, ToApplicationError(err)
	}
	return res, nil
}

// ConfirmBooking activity - issues the confirmation and announces it
func (a *Activities) ConfirmBooking(ctx context.Context, res models.Reservation) (*models.Booking, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Confirming booking", "bookingId", res.BookingID)

	b, err := a.desk.Confirm(ctx, res)
	if err != nil {
		return nil, ToApplicationError(err)
	}
	return b, nil
}

// ReleaseSeat activity - compensates a reservation that could not be confirmed
func (a *Activities) ReleaseSeat(ctx context.Context, res models.Reservation) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Releasing seat", "bookingId", res.BookingID, "flightId", res.FlightID)

	return ToApplicationError(a.desk.Release(ctx, res))
}

// ToApplicationError marks domain errors as non-retryable with a stable type.
// Anything else is returned unchanged and may be retried.
func ToApplicationError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), models.ErrorTypeNotFound, err)
	case errors.Is(err, models.ErrNoSeatsAvailable), errors.Is(err, models.ErrFlightDeparted):
		return temporal.NewNonRetryableApplicationError(err.Error(), models.ErrorTypeInvalidState, err)
	case errors.Is(err, models.ErrInvalidArgument):
		return temporal.NewNonRetryableApplicationError(err.Error(), models.ErrorTypeInvalidArgument, err)
	default:
		return err
	}
}

var sentinelsByType = map[string][]error{
	models.ErrorTypeNotFound:        {models.ErrNotFound},
	models.ErrorTypeInvalidState:    {models.ErrFlightDeparted, models.ErrNoSeatsAvailable},
	models.ErrorTypeInvalidArgument: {models.ErrInvalidArgument},
}

// remoteError keeps the activity's message while matching the local sentinel
type remoteError struct {
	msg      string
	sentinel error
}

func (e *remoteError) Error() string {
	return e.msg
}

func (e *remoteError) Unwrap() error {
	return e.sentinel
}

// FromApplicationError maps a typed application error found anywhere in err's
// chain back to its sentinel, so callers can use errors.Is across the workflow boundary
func FromApplicationError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}

	sentinels, ok := sentinelsByType[appErr.Type()]
	if !ok {
		return err
	}

	msg := appErr.Message()
	for _, sentinel := range sentinels {
		if strings.Contains(msg, sentinel.Error()) {
			return &remoteError{msg: msg, sentinel: sentinel}
		}
	}
	return &remoteError{msg: msg, sentinel: sentinels[len(sentinels)-1]}
}
