package scheduler

import "errors"

var (
	// ErrInvariant marks descriptor-state corruption, e.g. the same process
	// referenced from two run queues. Fatal: the affected loop aborts
	// loudly instead of attempting silent recovery.
	ErrInvariant = errors.New("scheduler: scheduling invariant violation")

	// ErrStartup indicates the scheduler pools could not be constructed at
	// bootstrap; fatal to Start.
	ErrStartup = errors.New("scheduler: startup failure")

	// ErrNotStarted is returned by operations that require running pools.
	ErrNotStarted = errors.New("scheduler: not started")
)
