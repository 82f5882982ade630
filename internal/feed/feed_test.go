package feed

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/cx-tal-miterani/flight-pricing/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	updates []models.FareUpdate
	err     error
}

func (s *recordingSink) PublishFareUpdate(ctx context.Context, update models.FareUpdate) error {
	s.updates = append(s.updates, update)
	return s.err
}

func testUpdate(flightID string) models.FareUpdate {
	return models.FareUpdate{
		FlightID: flightID,
		Entry: models.FareHistoryEntry{
			Timestamp:      time.Date(2030, 3, 10, 12, 0, 0, 0, time.UTC),
			Price:          324.5,
			AvailableSeats: 42,
			DemandLevel:    models.DemandMedium,
		},
	}
}

func TestMultiPublisher_FansOut(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	m := NewMultiPublisher(a, nil, b)

	require.NoError(t, m.PublishFareUpdate(context.Background(), testUpdate("FL0001")))

	assert.Len(t, a.updates, 1)
	assert.Len(t, b.updates, 1)
	assert.Equal(t, "FL0001", b.updates[0].FlightID)
}

func TestMultiPublisher_FailingSinkDoesNotStopOthers(t *testing.T) {
	boom := errors.New("sink down")
	failing := &recordingSink{err: boom}
	healthy := &recordingSink{}
	m := NewMultiPublisher(failing)
	m.Add(healthy)
	m.Add(nil)

	err := m.PublishFareUpdate(context.Background(), testUpdate("FL0001"))

	assert.ErrorIs(t, err, boom)
	assert.Len(t, failing.updates, 1)
	assert.Len(t, healthy.updates, 1)
}

func TestMultiPublisher_Empty(t *testing.T) {
	assert.NoError(t, NewMultiPublisher().PublishFareUpdate(context.Background(), testUpdate("FL0001")))
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "fares.FL0042", Channel("FL0042"))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := NewRedisClient(ctx, RedisOptions{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestRedisPublisher_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()

	client, err := NewRedisClient(ctx, RedisOptions{Addr: addr})
	require.NoError(t, err)
	defer client.Close()

	flightID := "FLTEST" + time.Now().Format("150405.000000")
	t.Cleanup(func() { client.HDel(context.Background(), LatestKey, flightID) })

	sub := client.Subscribe(ctx, Channel(flightID))
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	pub := NewRedisPublisher(client)
	require.NoError(t, pub.PublishFareUpdate(ctx, testUpdate(flightID)))

	select {
	case msg := <-sub.Channel():
		assert.Contains(t, msg.Payload, flightID)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}

	var latest models.FareUpdate
	body, err := client.HGet(ctx, LatestKey, flightID).Bytes()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &latest))
	assert.Equal(t, 324.5, latest.Entry.Price)
}
