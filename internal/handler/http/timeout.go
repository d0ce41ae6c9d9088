package http

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Timeout caps how long a request may run. A notify request fans out to
// external senders, so a stuck provider must not hold the client
// connection forever: past the deadline the client gets 504 and the
// request context is cancelled so in-flight sender calls unwind.
func Timeout(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()

			guarded := &deadlineWriter{ResponseWriter: w}
			done := make(chan struct{})

			go func() {
				defer close(done)
				next.ServeHTTP(guarded, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				guarded.expire()
			}
		})
	}
}

// deadlineWriter lets exactly one side produce the response: either the
// handler writes before the deadline, or expire writes the 504. The
// loser's writes are dropped.
type deadlineWriter struct {
	http.ResponseWriter

	mu      sync.Mutex
	expired bool
	written bool
}

func (dw *deadlineWriter) WriteHeader(statusCode int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired || dw.written {
		return
	}
	dw.written = true
	dw.ResponseWriter.WriteHeader(statusCode)
}

func (dw *deadlineWriter) Write(data []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired {
		return 0, http.ErrHandlerTimeout
	}
	if !dw.written {
		dw.written = true
		dw.ResponseWriter.WriteHeader(http.StatusOK)
	}
	return dw.ResponseWriter.Write(data)
}

// expire writes the timeout response unless the handler already
// responded, and blocks any later handler writes.
func (dw *deadlineWriter) expire() {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	dw.expired = true
	if dw.written {
		return
	}
	dw.Header().Set("Content-Type", "application/json")
	dw.ResponseWriter.WriteHeader(http.StatusGatewayTimeout)
	_, _ = dw.ResponseWriter.Write([]byte(`{"error":"request timeout"}`))
}
