package workflows

import (
	"time"

	"github.com/cx-tal-miterani/flight-pricing/internal/activities"
	"github.com/cx-tal-miterani/flight-pricing/internal/models"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	// SeatBookingWorkflowName is the registered workflow type
	SeatBookingWorkflowName = "SeatBookingWorkflow"
	// ActivityTimeout bounds each booking step
	ActivityTimeout = 10 * time.Second
	// MaxActivityAttempts is the retry budget for transient failures
	MaxActivityAttempts = 3
)

// SeatBookingWorkflow sells one seat: reserve at the live fare, then confirm.
// A reservation that cannot be confirmed is released again.
func SeatBookingWorkflow(ctx workflow.Context, input models.BookingWorkflowInput) (*models.Booking, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Seat booking workflow started", "bookingId", input.BookingID, "flightId", input.FlightID)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: ActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    MaxActivityAttempts,
		},
	})

	var res models.Reservation
	if err := workflow.ExecuteActivity(ctx, activities.ReserveSeatName, input).Get(ctx, &res); err != nil {
		logger.Warn("Seat reservation failed", "bookingId", input.BookingID, "error", err)
		return nil, err
	}

	var booking models.Booking
	err := workflow.ExecuteActivity(ctx, activities.ConfirmBookingName, res).Get(ctx, &booking)
	if err != nil {
		logger.Error("Booking confirmation failed, releasing seat", "bookingId", input.BookingID, "error", err)

		// compensate on a disconnected context so a cancelled workflow still gives the seat back
		releaseCtx, _ := workflow.NewDisconnectedContext(ctx)
		if releaseErr := workflow.ExecuteActivity(releaseCtx, activities.ReleaseSeatName, res).Get(releaseCtx, nil); releaseErr != nil {
			logger.Error("Failed to release seat", "bookingId", input.BookingID, "error", releaseErr)
		}
		return nil, err
	}

	logger.Info("Seat booking workflow completed", "bookingId", booking.ID, "confirmation", booking.ConfirmationCode)
	return &booking, nil
}
