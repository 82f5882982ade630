package service

import (
	"context"
	"fmt"

	"github.com/cx-tal-miterani/flight-pricing/internal/activities"
	"github.com/cx-tal-miterani/flight-pricing/internal/booking"
	"github.com/cx-tal-miterani/flight-pricing/internal/models"
	"github.com/cx-tal-miterani/flight-pricing/internal/workflows"
	"go.temporal.io/sdk/client"
)

const (
	TaskQueue = "flight-pricing-queue"
)

// TemporalBooker sells seats through the seat booking workflow and waits for its result
type TemporalBooker struct {
	temporalClient client.Client
	taskQueue      string
}

// NewTemporalBooker creates a TemporalBooker. An empty task queue means TaskQueue.
func NewTemporalBooker(temporalClient client.Client, taskQueue string) *TemporalBooker {
	if taskQueue == "" {
		taskQueue = TaskQueue
	}
	return &TemporalBooker{
		temporalClient: temporalClient,
		taskQueue:      taskQueue,
	}
}

func (b *TemporalBooker) Book(ctx context.Context, flightID string) (*models.Booking, error) {
	bookingID := booking.NewBookingID()

	workflowOptions := client.StartWorkflowOptions{
		ID:        "booking-" + bookingID,
		TaskQueue: b.taskQueue,
	}
	input := models.BookingWorkflowInput{
		BookingID: bookingID,
		FlightID:  flightID,
	}

	run, err := b.temporalClient.ExecuteWorkflow(ctx, workflowOptions, workflows.SeatBookingWorkflowName, input)
	if err != nil {
		return nil, fmt.Errorf("failed to start workflow: %w", err)
	}

	var result models.Booking
	if err := run.Get(ctx, &result); err != nil {
		return nil, activities.FromApplicationError(err)
	}
	return &result, nil
}
