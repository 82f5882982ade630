package models

import "errors"

var (
	ErrNotFound         = errors.New("flight not found")
	ErrNoSeatsAvailable = errors.New("no seats available")
	ErrFlightDeparted   = errors.New("flight has departed")
	ErrInvalidFlight    = errors.New("invalid flight")
	ErrDuplicateFlight  = errors.New("duplicate flight id")
	ErrInvalidArgument  = errors.New("invalid argument")
)
