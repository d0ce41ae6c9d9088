// Package tracing provides OpenTelemetry tracing integration.
//
// The Middleware extracts W3C Trace Context headers from incoming
// requests, opens a server span per request, and echoes the trace ID
// back in the X-Trace-Id response header. Exporter wiring (OTLP,
// Jaeger) is left to the deployment; without a configured exporter the
// spans are no-ops.
//
// Example usage:
//
//	import "nolofication/internal/observability/tracing"
//
//	mux := http.NewServeMux()
//	handler := tracing.Middleware(mux)
//
//	func process(ctx context.Context) {
//	    ctx, span := tracing.GetTracer().Start(ctx, "drain-due")
//	    defer span.End()
//	    // ...
//	}
package tracing
