// Package tracing provides OpenTelemetry tracing integration.
//
// The HTTP Middleware opens a server span per request and the preview use
// case opens child spans for validation, fetching and extraction. NewProvider
// builds the SDK provider installed by main; without it spans are no-ops.
//
// Example usage:
//
//	import "link-preview/internal/observability/tracing"
//
//	func main() {
//	    tp := tracing.NewProvider("link-preview", "1.0.0", 1.0)
//	    otel.SetTracerProvider(tp)
//	    defer func() { _ = tp.Shutdown(context.Background()) }()
//	}
//
//	func processRequest(ctx context.Context) {
//	    ctx, span := tracing.GetTracer().Start(ctx, "process-request")
//	    defer span.End()
//	}
package tracing
