// Package observability groups the logging and tracing support used by the
// preview service. Prometheus collectors live next to the code they measure
// (the fetcher and the HTTP layer) and share the registry built in cmd/api.
//
// Subpackages:
//   - logging: slog construction and request-scoped loggers
//   - tracing: OpenTelemetry provider, tracer and HTTP middleware
package observability
