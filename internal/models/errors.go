package models

import "errors"

var (
	// ErrInvalidInput marks a caller mistake such as a missing coordinate
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable marks a failed or unusable mapping-provider call
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrNoRoute is returned when the provider has no driving route between two points
	ErrNoRoute = errors.New("no route")
)
