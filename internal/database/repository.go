package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cx-tal-miterani/flight-pricing/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists the flight schedule and archives fare snapshots
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// --- Flight Operations ---

// LoadFlights returns every flight departing after now, earliest first
func (r *Repository) LoadFlights(ctx context.Context, now time.Time) ([]models.Flight, error) {
	query := `
		SELECT id, airline, origin, destination, departure_time, arrival_time,
		       base_fare, total_seats, available_seats, tier
		FROM flights
		WHERE departure_time > $1
		ORDER BY departure_time ASC
	`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer rows.Close()

	var flights []models.Flight
	for rows.Next() {
		var f models.Flight
		var tier string
		err := rows.Scan(
			&f.ID, &f.Airline, &f.Origin, &f.Destination,
			&f.DepartureTime, &f.ArrivalTime, &f.BaseFare,
			&f.TotalSeats, &f.AvailableSeats, &tier,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}
		f.Tier = models.PricingTier(tier)
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read flights: %w", err)
	}

	return flights, nil
}

// SaveFlights upserts the schedule, overwriting seat counts of existing rows
func (r *Repository) SaveFlights(ctx context.Context, flights []models.Flight) error {
	query := `
		INSERT INTO flights (id, airline, origin, destination, departure_time, arrival_time,
		                     base_fare, total_seats, available_seats, tier)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET available_seats = EXCLUDED.available_seats, updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, f := range flights {
		batch.Queue(query,
			f.ID, f.Airline, f.Origin, f.Destination, f.DepartureTime, f.ArrivalTime,
			f.BaseFare, f.TotalSeats, f.AvailableSeats, string(f.Tier),
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()
	for _, f := range flights {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to save flight %s: %w", f.ID, err)
		}
	}
	return nil
}

// --- Fare Archive ---

// PublishFareUpdate archives a snapshot and mirrors its seat count onto the flight row
func (r *Repository) PublishFareUpdate(ctx context.Context, update models.FareUpdate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO fare_history (flight_id, recorded_at, price, available_seats, demand_level)
		VALUES ($1, $2, $3, $4, $5)
	`, update.FlightID, update.Entry.Timestamp, update.Entry.Price,
		update.Entry.AvailableSeats, string(update.Entry.DemandLevel))
	if err != nil {
		return fmt.Errorf("failed to archive fare for %s: %w", update.FlightID, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE flights SET available_seats = $2, updated_at = NOW()
		WHERE id = $1
	`, update.FlightID, update.Entry.AvailableSeats)
	if err != nil {
		return fmt.Errorf("failed to update seats for %s: %w", update.FlightID, err)
	}

	return tx.Commit(ctx)
}
