// Package otel binds goBindToken codec metrics to OpenTelemetry instruments.
//
// [NewOTelExporter] registers an Int64ObservableCounter per codec counter and an
// Int64ObservableGauge per latency bucket. The caller owns the MeterProvider and
// supplies the Meter.
package otel
