// Package policy provides optional admission control over dirty scheduler
// usage, attached to a runtime via context.
package policy
