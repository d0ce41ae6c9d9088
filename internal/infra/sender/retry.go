package sender

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// retry policy shared by all HTTP-backed senders:
//   - Max attempts: 2
//   - Base delay: 5 seconds
//   - 429 errors: sleep for the retry_after duration from the response
//   - Server errors (5xx) and network errors: linear backoff (5s, 10s)
//   - Client errors (4xx): no retry, fail immediately
//
// All attempts are logged with request_id for tracing.
const (
	retryMaxAttempts = 2
	retryBaseDelay   = 5 * time.Second
)

// sendWithRetry runs fn under the shared retry policy. The service name
// is only used for logging.
func sendWithRetry(ctx context.Context, service string, fn func(ctx context.Context) error) error {
	requestID, _ := ctx.Value(requestIDKey).(string)

	var lastErr error
	for attempt := 1; attempt <= retryMaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			slog.Info("delivery successful",
				slog.String("request_id", requestID),
				slog.String("service", service),
				slog.Int("attempt", attempt))
			return nil
		}

		lastErr = err

		if rateLimitErr, ok := is429Error(err); ok {
			slog.Warn("delivery rate limit hit, backing off",
				slog.String("request_id", requestID),
				slog.String("service", service),
				slog.Duration("retry_after", rateLimitErr.RetryAfter),
				slog.Int("attempt", attempt))

			select {
			case <-time.After(rateLimitErr.RetryAfter):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during rate limit backoff: %w", ctx.Err())
			}
		}

		if !isRetryableError(err) {
			slog.Error("delivery failed with non-retryable error",
				slog.String("request_id", requestID),
				slog.String("service", service),
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return err
		}

		if attempt < retryMaxAttempts {
			delay := retryBaseDelay * time.Duration(attempt)
			slog.Warn("delivery request failed, retrying",
				slog.String("request_id", requestID),
				slog.String("service", service),
				slog.Any("error", err),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))

			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
			}
		}
	}

	slog.Error("delivery failed after all retries",
		slog.String("request_id", requestID),
		slog.String("service", service),
		slog.Any("error", lastErr),
		slog.Int("max_attempts", retryMaxAttempts))

	return fmt.Errorf("%s delivery failed after %d attempts: %w", service, retryMaxAttempts, lastErr)
}
