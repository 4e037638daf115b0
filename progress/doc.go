// Package progress defines primitives for reporting and aggregating
// scheduling activity of a running system.  It abstracts away the
// underlying communication mechanism so that callers can consume counter
// updates in a uniform way regardless of whether they are delivered via
// in-memory channels, message queues or external observers.
package progress
