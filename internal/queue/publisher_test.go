package queue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/cx-tal-miterani/flight-pricing/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchange string
	key      string
	msgs     []amqp.Publishing
	err      error
	closed   bool
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.exchange, c.key = exchange, key
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

var bookedAt = time.Date(2030, 3, 10, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))

func testBooking() models.Booking {
	return models.Booking{
		ID:               "5f0c2a4e-1111-2222-3333-444455556666",
		FlightID:         "FL0001",
		ConfirmationCode: "5F0C2A",
		Price:            686.97,
		DemandLevel:      models.DemandHigh,
		SeatsRemaining:   12,
		BookedAt:         bookedAt,
	}
}

func TestNewBookingConfirmedEvent(t *testing.T) {
	event := NewBookingConfirmedEvent(testBooking())

	assert.Equal(t, "FL0001", event.FlightID)
	assert.Equal(t, int64(68697), event.PriceCents)
	assert.Equal(t, "high", event.DemandLevel)
	assert.Equal(t, "2030-03-10T17:00:00Z", event.ConfirmedAt)
}

func TestPublisher_PublishBookingConfirmed(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, p.PublishBookingConfirmed(context.Background(), testBooking()))

	require.Len(t, ch.msgs, 1)
	assert.Equal(t, "", ch.exchange)
	assert.Equal(t, BookingConfirmedQueue, ch.key)

	msg := ch.msgs[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, testBooking().ID, msg.MessageId)

	var event BookingConfirmedEvent
	require.NoError(t, json.Unmarshal(msg.Body, &event))
	assert.Equal(t, "5F0C2A", event.ConfirmationCode)
	assert.Equal(t, 12, event.SeatsRemaining)
}

func TestPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{err: amqp.ErrClosed}
	p := newPublisher(ch, nil)

	err := p.PublishBookingConfirmed(context.Background(), testBooking())
	assert.True(t, errors.Is(err, amqp.ErrClosed))
}

func TestPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, nil)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestDial_Integration(t *testing.T) {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		t.Skip("RABBITMQ_URL not set")
	}

	p, err := Dial(url, nil)
	require.NoError(t, err)
	defer p.Close()

	assert.NoError(t, p.PublishBookingConfirmed(context.Background(), testBooking()))
}
