package feed

import (
	"context"
	"errors"

	"github.com/cx-tal-miterani/flight-pricing/internal/models"
)

// Publisher receives every recorded fare snapshot
type Publisher interface {
	PublishFareUpdate(ctx context.Context, update models.FareUpdate) error
}

// MultiPublisher forwards each snapshot to every sink. A failing sink does not
// keep the others from receiving the update.
type MultiPublisher struct {
	sinks []Publisher
}

// NewMultiPublisher drops nil sinks
func NewMultiPublisher(sinks ...Publisher) *MultiPublisher {
	m := &MultiPublisher{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Add registers another sink
func (m *MultiPublisher) Add(sink Publisher) {
	if sink != nil {
		m.sinks = append(m.sinks, sink)
	}
}

// PublishFareUpdate returns the joined errors of all failing sinks
func (m *MultiPublisher) PublishFareUpdate(ctx context.Context, update models.FareUpdate) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.PublishFareUpdate(ctx, update); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
