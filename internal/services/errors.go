package services

import "errors"

// Position service errors
var (
	// Query errors
	ErrInvalidQuery   = errors.New("invalid query")
	ErrBrokerRequired = errors.New("broker is required")

	// Data errors
	ErrNoData    = errors.New("no position data loaded")
	ErrNoSources = errors.New("no position sources found")
)
