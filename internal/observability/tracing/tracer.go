package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name used for all spans of the service.
const TracerName = "link-preview"

// GetTracer returns the tracer for creating spans. It is resolved from the
// global provider on every call so a provider installed after package
// initialisation (in main or in tests) takes effect.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "operation-name")
//	defer span.End()
func GetTracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
