// Package simulator runs the background market that moves seat counts and
// demand levels while the API is serving reads.
package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/cx-tal-miterani/flight-pricing/internal/inventory"
	"github.com/cx-tal-miterani/flight-pricing/internal/models"
	"github.com/cx-tal-miterani/flight-pricing/internal/pricing"
)

const (
	DefaultInterval = 30 * time.Second
	// BookingProbability is the per-cycle chance that a flight sells seats
	BookingProbability = 0.2
	// DemandShockProbability is the per-cycle chance of a random demand re-roll
	DemandShockProbability = 0.1
	// MaxSeatsPerBooking caps the seats a single simulated booking consumes
	MaxSeatsPerBooking = 5
)

// Rand is the randomness the simulator draws from
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Publisher receives every fare snapshot the simulator records
type Publisher interface {
	PublishFareUpdate(ctx context.Context, update models.FareUpdate) error
}

// Options configures a Simulator. Zero values fall back to defaults.
type Options struct {
	Interval  time.Duration
	Rand      Rand
	Publisher Publisher
	Logger    *slog.Logger
}

// CycleStats summarizes one pass over the flight population
type CycleStats struct {
	Flights       int `json:"flights"`
	Bookings      int `json:"bookings"`
	SeatsSold     int `json:"seatsSold"`
	DemandChanges int `json:"demandChanges"`
	Faults        int `json:"faults"`
}

// FaultError wraps a failure while advancing one flight. It is logged and the
// cycle moves on to the next flight.
type FaultError struct {
	FlightID string
	Err      error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("simulation fault on flight %s: %v", e.FlightID, e.Err)
}

func (e *FaultError) Unwrap() error {
	return e.Err
}

// Simulator perpetually books seats and perturbs demand on a fixed interval
type Simulator struct {
	store     *inventory.Store
	engine    *pricing.Engine
	interval  time.Duration
	rng       Rand
	publisher Publisher
	logger    *slog.Logger

	cycleMu sync.Mutex // serializes cycles, rng is not safe for concurrent use

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Simulator over the given store
func New(store *inventory.Store, engine *pricing.Engine, opts Options) *Simulator {
	s := &Simulator{
		store:     store,
		engine:    engine,
		interval:  opts.Interval,
		rng:       opts.Rand,
		publisher: opts.Publisher,
		logger:    opts.Logger,
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Start launches the simulation loop. Calling Start on a running simulator is a no-op.
func (s *Simulator) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx, s.done)

	s.logger.Info("demand simulator started", "interval", s.interval)
}

// Stop cancels the loop and waits for the current cycle to finish
func (s *Simulator) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop is active
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Simulator) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("demand simulator stopped")
			return
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle advances every future flight once
func (s *Simulator) RunCycle(ctx context.Context) CycleStats {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	var stats CycleStats
	now := s.engine.Now()

	for _, f := range s.store.GetAllFlights() {
		if f.HasDeparted(now) {
			continue
		}
		stats.Flights++

		res, err := s.step(ctx, f)
		if err != nil {
			stats.Faults++
			fault := &FaultError{FlightID: f.ID, Err: err}
			s.logger.Error("simulation step failed", "flightId", f.ID, "error", fault)
			continue
		}
		if res.seatsSold > 0 {
			stats.Bookings++
			stats.SeatsSold += res.seatsSold
		}
		if res.demandChanged {
			stats.DemandChanges++
		}
	}

	if stats.Bookings > 0 || stats.DemandChanges > 0 || stats.Faults > 0 {
		s.logger.Info("simulation cycle",
			"flights", stats.Flights,
			"bookings", stats.Bookings,
			"seatsSold", stats.SeatsSold,
			"demandChanges", stats.DemandChanges,
			"faults", stats.Faults,
		)
	}
	return stats
}

type stepResult struct {
	seatsSold     int
	demandChanged bool
}

func (s *Simulator) step(ctx context.Context, f models.Flight) (res stepResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if s.rng.Float64() < BookingProbability && f.AvailableSeats > 0 {
		update, sold, err := s.simulateBooking(f.ID)
		if err != nil {
			return res, err
		}
		res.seatsSold = sold
		if update != nil {
			s.publish(ctx, *update)
		}
	}

	if s.rng.Float64() < DemandShockProbability {
		changed, err := s.shockDemand(f.ID)
		if err != nil {
			return res, err
		}
		res.demandChanged = changed
	}

	return res, nil
}

// simulateBooking consumes 1..min(5, available) seats and records the
// post-booking price, all under one store lock.
func (s *Simulator) simulateBooking(flightID string) (*models.FareUpdate, int, error) {
	var update *models.FareUpdate
	sold := 0

	err := s.store.Update(flightID, func(tx *inventory.Tx) error {
		available := tx.Flight().AvailableSeats
		if available == 0 {
			return nil
		}

		n := 1 + s.rng.Intn(min(MaxSeatsPerBooking, available))
		if err := tx.ConsumeSeats(n); err != nil {
			return err
		}
		sold = n

		f := tx.Flight()
		level := pricing.DemandFor(tx, f)
		entry := models.FareHistoryEntry{
			Timestamp:      s.engine.Now(),
			Price:          s.engine.Price(f, level),
			AvailableSeats: f.AvailableSeats,
			DemandLevel:    level,
		}
		tx.AppendFareHistory(entry)
		update = &models.FareUpdate{FlightID: f.ID, Entry: entry}
		return nil
	})

	return update, sold, err
}

// shockDemand overwrites the demand level with a uniformly random one,
// ignoring what occupancy would suggest
func (s *Simulator) shockDemand(flightID string) (bool, error) {
	changed := false
	err := s.store.Update(flightID, func(tx *inventory.Tx) error {
		next := models.AllDemandLevels[s.rng.Intn(len(models.AllDemandLevels))]
		prev, had := tx.GetDemandLevel(flightID)
		tx.SetDemandLevel(flightID, next)
		changed = !had || prev != next
		return nil
	})
	return changed, err
}

func (s *Simulator) publish(ctx context.Context, update models.FareUpdate) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishFareUpdate(ctx, update); err != nil {
		s.logger.Warn("failed to publish fare update", "flightId", update.FlightID, "error", err)
	}
}
