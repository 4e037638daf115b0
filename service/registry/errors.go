package registry

import "errors"

// Common registry errors. Sentinel variables allow callers to detect
// conditions via errors.Is instead of brittle string comparisons.

var (
	// ErrTableFull is returned when the table reached its configured
	// maximum size. Recoverable: process-creation callers surface it as a
	// resource-exhaustion condition.
	ErrTableFull = errors.New("registry: table full")

	// ErrInvalidID indicates an operation referenced the reserved ID 0.
	ErrInvalidID = errors.New("registry: invalid process id")

	// ErrNilProcess is returned when the caller attempts to insert a nil
	// descriptor.
	ErrNilProcess = errors.New("registry: nil process")
)
