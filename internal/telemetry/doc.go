// Package telemetry wraps OpenTelemetry SDK initialization for contentgen:
// one TracerProvider and MeterProvider exporting over OTLP gRPC. When
// telemetry is disabled the noop globals are kept and nothing connects to an
// external service.
package telemetry
