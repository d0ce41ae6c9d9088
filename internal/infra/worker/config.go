package worker

import (
	"fmt"
	"log/slog"
	"time"

	"nolofication/internal/pkg/config"
)

// SchedulerConfig holds the configuration for the scheduler component.
// The scheduler drains due pending notifications on one cron schedule
// and purges stale cancelled entries on another.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// All fields have sensible defaults and validation rules so the
// scheduler can operate safely even with invalid or missing
// configuration.
type SchedulerConfig struct {
	// DrainSchedule is the cron expression for the drain job.
	// The queue promises minute-level delivery resolution, so the
	// default runs every minute.
	// Default: "* * * * *"
	DrainSchedule string

	// PurgeSchedule is the cron expression for the cancelled-entry
	// purge job.
	// Default: "0 3 * * *" (daily at 3:00)
	PurgeSchedule string

	// Timezone is the IANA timezone name for cron scheduling. Delivery
	// times are already resolved into UTC instants by the queue, so
	// this only shifts when the purge job fires.
	// Default: "UTC"
	Timezone string

	// DrainTimeout is the maximum duration for a single drain pass.
	// After this timeout the pass is cancelled; undelivered entries
	// stay queued and are retried on the next tick.
	// Default: 5 minutes
	DrainTimeout time.Duration

	// HealthPort is the port number for the health check HTTP server.
	// Range: 1024-65535 (avoid privileged ports)
	// Default: 9091
	HealthPort int
}

// DefaultConfig returns a SchedulerConfig with production defaults:
// minute-resolution draining, a nightly purge, and a 5-minute drain
// timeout so one slow downstream cannot wedge the loop.
func DefaultConfig() SchedulerConfig {
	return SchedulerConfig{
		DrainSchedule: "* * * * *",
		PurgeSchedule: "0 3 * * *",
		Timezone:      "UTC",
		DrainTimeout:  5 * time.Minute,
		HealthPort:    9091,
	}
}

// Validate checks the configuration using the reusable validators from
// internal/pkg/config. All field errors are collected and returned
// together.
func (c *SchedulerConfig) Validate() error {
	var errors []error

	if err := config.ValidateCronSchedule(c.DrainSchedule); err != nil {
		errors = append(errors, fmt.Errorf("drain schedule: %w", err))
	}

	if err := config.ValidateCronSchedule(c.PurgeSchedule); err != nil {
		errors = append(errors, fmt.Errorf("purge schedule: %w", err))
	}

	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errors = append(errors, fmt.Errorf("timezone: %w", err))
	}

	if err := config.ValidatePositiveDuration(c.DrainTimeout); err != nil {
		errors = append(errors, fmt.Errorf("drain timeout: %w", err))
	}

	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errors = append(errors, fmt.Errorf("health port: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}

	return nil
}

// LoadConfigFromEnv loads scheduler configuration from environment
// variables with validation and automatic fallback to defaults.
//
// Fail-open strategy: every invalid value falls back to its default
// with a warning and a metrics increment; the function never returns
// an error, so the scheduler always starts with a valid configuration.
//
// Environment variables:
//   - DRAIN_SCHEDULE: Cron expression (default: "* * * * *")
//   - PURGE_SCHEDULE: Cron expression (default: "0 3 * * *")
//   - SCHEDULER_TIMEZONE: IANA timezone name (default: "UTC")
//   - DRAIN_TIMEOUT: Duration string, 10s-1h (default: 5 minutes)
//   - SCHEDULER_HEALTH_PORT: Integer 1024-65535 (default: 9091)
func LoadConfigFromEnv(logger *slog.Logger, metrics *SchedulerMetrics) (*SchedulerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	result := config.LoadEnvWithFallback("DRAIN_SCHEDULE", cfg.DrainSchedule, config.ValidateCronSchedule)
	cfg.DrainSchedule = result.Value.(string)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("drain_schedule")
		metrics.RecordFallback("drain_schedule", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "DrainSchedule"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvWithFallback("PURGE_SCHEDULE", cfg.PurgeSchedule, config.ValidateCronSchedule)
	cfg.PurgeSchedule = result.Value.(string)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("purge_schedule")
		metrics.RecordFallback("purge_schedule", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "PurgeSchedule"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvWithFallback("SCHEDULER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("timezone")
		metrics.RecordFallback("timezone", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "Timezone"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvDuration("DRAIN_TIMEOUT", cfg.DrainTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 10*time.Second, time.Hour)
	})
	cfg.DrainTimeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("drain_timeout")
		metrics.RecordFallback("drain_timeout", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "DrainTimeout"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvInt("SCHEDULER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("health_port")
		metrics.RecordFallback("health_port", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "HealthPort"),
				slog.String("warning", warning))
		}
	}

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	// Always return valid config (fail-open strategy)
	return &cfg, nil
}
