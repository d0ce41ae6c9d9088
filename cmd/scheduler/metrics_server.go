package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	envconfig "nolofication/internal/pkg/config"
)

const defaultMetricsPort = 9090

// startMetricsServer serves GET /metrics for the Prometheus scraper and
// GET /health as a bare liveness probe, on METRICS_PORT (default 9090).
// The server runs until ctx is cancelled, then shuts down gracefully so
// an in-flight scrape still completes.
func startMetricsServer(ctx context.Context, logger *slog.Logger) *http.Server {
	port := envconfig.LoadEnvInt("METRICS_PORT", defaultMetricsPort, func(v int) error {
		return envconfig.ValidateIntRange(v, 1, 65535)
	}).Value.(int)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		} else {
			logger.Info("metrics server stopped")
		}
	}()

	return server
}
