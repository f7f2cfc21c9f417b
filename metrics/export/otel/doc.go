// Package otel bridges session metrics into OpenTelemetry: each counter is
// registered as an Int64ObservableCounter observed from a metrics snapshot
// on collection.
package otel
