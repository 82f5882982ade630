// Package inventory holds the in-memory flight registry shared by the API and
// the demand simulator.
package inventory

import (
	"fmt"
	"sync"

	"github.com/cx-tal-miterani/flight-pricing/internal/models"
)

// Store manages flights, their fare history and their cached demand levels.
// One RWMutex guards all three collections so a reader never sees a seat count
// without the fare snapshot recorded alongside it.
type Store struct {
	mu      sync.RWMutex
	flights []*models.Flight                     // insertion order
	byID    map[string]*models.Flight            // flightID -> Flight
	history map[string][]models.FareHistoryEntry // flightID -> snapshots
	demand  map[string]models.DemandLevel        // flightID -> level
	holds   map[string]*hold                     // bookingID -> seat hold
}

// hold is one seat taken for a booking. Released holds are kept so a
// repeated release stays a no-op.
type hold struct {
	reservation models.Reservation
	released    bool
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		byID:    make(map[string]*models.Flight),
		history: make(map[string][]models.FareHistoryEntry),
		demand:  make(map[string]models.DemandLevel),
		holds:   make(map[string]*hold),
	}
}

// AddFlight validates and appends a flight
func (s *Store) AddFlight(flight models.Flight) error {
	if err := flight.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[flight.ID]; exists {
		return fmt.Errorf("%w: %s", models.ErrDuplicateFlight, flight.ID)
	}

	f := flight
	s.flights = append(s.flights, &f)
	s.byID[f.ID] = &f
	return nil
}

// GetAllFlights returns a snapshot of every flight in insertion order
func (s *Store) GetAllFlights() []models.Flight {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flights := make([]models.Flight, len(s.flights))
	for i, f := range s.flights {
		flights[i] = *f
	}
	return flights
}

// GetFlightByID returns a copy of the flight, or false when the id is unknown
func (s *Store) GetFlightByID(id string) (models.Flight, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.byID[id]
	if !ok {
		return models.Flight{}, false
	}
	return *f, true
}

// AppendFareHistory records a snapshot for a flight
func (s *Store) AppendFareHistory(flightID string, entry models.FareHistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[flightID] = append(s.history[flightID], entry)
}

// GetFareHistory returns the flight's snapshots, oldest first
func (s *Store) GetFareHistory(flightID string) []models.FareHistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.history[flightID]
	out := make([]models.FareHistoryEntry, len(entries))
	copy(out, entries)
	return out
}

// SetDemandLevel overwrites the cached demand level of a flight
func (s *Store) SetDemandLevel(flightID string, level models.DemandLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.demand[flightID] = level
}

// GetDemandLevel returns the cached demand level, if one was ever set
func (s *Store) GetDemandLevel(flightID string) (models.DemandLevel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	level, ok := s.demand[flightID]
	return level, ok
}

// DecrementSeat sells exactly one seat. A sold-out flight is rejected, never clamped.
func (s *Store) DecrementSeat(flightID string) error {
	return s.Update(flightID, func(tx *Tx) error {
		return tx.ConsumeSeats(1)
	})
}

// Update runs fn while holding the write lock, so everything fn does through
// the Tx becomes visible to readers at once.
func (s *Store) Update(flightID string, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.byID[flightID]
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrNotFound, flightID)
	}
	return fn(&Tx{store: s, flight: f})
}

// TrackedFareHistories returns how many flights have at least one snapshot
func (s *Store) TrackedFareHistories() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, entries := range s.history {
		if len(entries) > 0 {
			n++
		}
	}
	return n
}

// Len returns the number of flights
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.flights)
}

// Clear drops all flights, history and demand levels (for testing)
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flights = nil
	s.byID = make(map[string]*models.Flight)
	s.history = make(map[string][]models.FareHistoryEntry)
	s.demand = make(map[string]models.DemandLevel)
	s.holds = make(map[string]*hold)
}
