// Package tracing is a thin wrapper around OpenTelemetry used to trace
// scheduler activity (spawns and run slices). Instrumentation lives in a
// separate package so that applications which do not require tracing can
// exclude it from their build.
package tracing
