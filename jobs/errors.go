package jobs

import "errors"

var (
	// ErrIngestorRequired is returned when a queue is constructed
	// without an ingestor.
	ErrIngestorRequired = errors.New("ingestor is required")

	// ErrJobNotFound is returned when a job id is unknown.
	ErrJobNotFound = errors.New("job not found")
)
