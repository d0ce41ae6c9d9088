// Package observability provides production-grade observability infrastructure
// including structured logging and OpenTelemetry tracing.
//
// This package centralizes observability concerns to enable:
//   - Request tracing across service boundaries
//   - Structured logging with context propagation
//   - Performance profiling and debugging
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - tracing: OpenTelemetry tracing integration
//
// Prometheus metrics live next to the code they measure (HTTP handler
// metrics, dispatch metrics, scheduler metrics) rather than in a central
// registry.
//
// Example usage:
//
//	import "nolofication/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started")
//	}
package observability
