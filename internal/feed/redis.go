package feed

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cx-tal-miterani/flight-pricing/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// ChannelPrefix is prepended to the flight ID to form the pub/sub channel
	ChannelPrefix = "fares."
	// LatestKey is the hash holding the most recent snapshot per flight
	LatestKey = "fares:latest"

	pingTimeout = 2 * time.Second
)

// RedisOptions configures the Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
}

// NewRedisClient connects to Redis and pings it with a short timeout.
// The client is closed and an error returned when the server is unreachable.
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	addr := opts.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	var tlsConf *tls.Config
	if opts.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      addr,
		Password:  opts.Password,
		DB:        opts.DB,
		TLSConfig: tlsConf,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

// RedisPublisher fans fare snapshots out over Redis pub/sub and keeps the
// latest snapshot per flight in a hash for late joiners.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates a publisher on an existing client
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Channel returns the pub/sub channel for a flight
func Channel(flightID string) string {
	return ChannelPrefix + flightID
}

// PublishFareUpdate publishes the snapshot and records it as the latest fare
func (p *RedisPublisher) PublishFareUpdate(ctx context.Context, update models.FareUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal fare update: %w", err)
	}

	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, LatestKey, update.FlightID, body)
		pipe.Publish(ctx, Channel(update.FlightID), body)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish fare update for %s: %w", update.FlightID, err)
	}
	return nil
}
