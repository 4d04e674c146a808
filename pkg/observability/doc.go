// Package observability provides structured logging, Prometheus metrics,
// health/readiness/liveness probes, optional OpenTelemetry tracing, and
// graceful shutdown for the glossary service.
package observability
