package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	pgRepo "nolofication/internal/infra/adapter/persistence/postgres"
	"nolofication/internal/infra/db"
	"nolofication/internal/infra/sender"
	workerPkg "nolofication/internal/infra/worker"
	"nolofication/internal/observability/logging"
	"nolofication/internal/repository"
	"nolofication/internal/resilience/circuitbreaker"
	"nolofication/internal/usecase/dispatch"
	"nolofication/internal/usecase/prefs"
	"nolofication/internal/usecase/queue"
)

// waitForMigrations blocks until the API binary has run the schema
// migrations. The scheduler never migrates on its own.
func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM pending_notifications LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load scheduler configuration (fail-open strategy)
	metrics := workerPkg.NewSchedulerMetrics()
	metrics.MustRegister()
	cfg, err := workerPkg.LoadConfigFromEnv(logger, metrics)
	if err != nil {
		logger.Error("failed to load scheduler configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("scheduler configuration loaded",
		slog.String("drain_schedule", cfg.DrainSchedule),
		slog.String("purge_schedule", cfg.PurgeSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Duration("drain_timeout", cfg.DrainTimeout),
		slog.Int("health_port", cfg.HealthPort))

	queueSvc, pendingRepo := setupQueueService(logger, database)

	// Start metrics HTTP server
	startMetricsServer(ctx, logger)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", cfg.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	startCronScheduler(ctx, logger, queueSvc, pendingRepo, cfg, metrics, healthServer)
}

// initLogger initializes the structured logger and installs it as the
// process default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and waits for migrations to complete.
func initDatabase(logger *slog.Logger) *sql.DB {
	database, err := db.Open(os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	waitForMigrations(logger, database)
	return database
}

// setupQueueService wires the queue service with its repositories,
// preference resolution and the channel dispatcher. The pending
// repository is returned separately for queue depth sampling.
func setupQueueService(logger *slog.Logger, database *sql.DB) (queue.Service, repository.PendingNotificationRepository) {
	breaker := circuitbreaker.NewDBCircuitBreaker(database)

	userRepo := pgRepo.NewUserRepo(breaker)
	notificationRepo := pgRepo.NewNotificationRepo(breaker)
	pendingRepo := pgRepo.NewPendingNotificationRepo(breaker)
	profileRepo := pgRepo.NewPreferenceProfileRepo(breaker)
	sitePrefRepo := pgRepo.NewSitePreferenceRepo(breaker)
	catPrefRepo := pgRepo.NewUserCategoryPreferenceRepo(breaker)
	pushSubRepo := pgRepo.NewPushSubscriptionRepo(breaker)

	prefsSvc := prefs.NewService(profileRepo, sitePrefRepo, catPrefRepo)

	email, push, chat, webhook := sender.SendersFromEnv(logger)
	dispatcher := dispatch.NewService(email, push, chat, webhook, pushSubRepo, notificationRepo)

	return queue.NewService(pendingRepo, userRepo, prefsSvc, dispatcher), pendingRepo
}

// startCronScheduler registers the drain and purge cron jobs and blocks
// until the process receives a shutdown signal.
func startCronScheduler(
	ctx context.Context,
	logger *slog.Logger,
	queueSvc queue.Service,
	pendingRepo repository.PendingNotificationRepository,
	cfg *workerPkg.SchedulerConfig,
	metrics *workerPkg.SchedulerMetrics,
	healthServer *workerPkg.HealthServer,
) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.DrainSchedule, func() {
		runDrainJob(ctx, logger, queueSvc, pendingRepo, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add drain job", slog.Any("error", err))
		os.Exit(1)
	}

	_, err = c.AddFunc(cfg.PurgeSchedule, func() {
		runPurgeJob(ctx, logger, queueSvc, metrics)
	})
	if err != nil {
		logger.Error("failed to add purge job", slog.Any("error", err))
		os.Exit(1)
	}

	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("scheduler marked as ready")

	logger.Info("scheduler started",
		slog.String("drain_schedule", cfg.DrainSchedule),
		slog.String("purge_schedule", cfg.PurgeSchedule),
		slog.String("timezone", cfg.Timezone))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down scheduler...")

	// Let a running pass finish before exiting
	stopCtx := c.Stop()
	<-stopCtx.Done()
	logger.Info("scheduler stopped")
}

// runDrainJob executes a single drain pass with timeout and error handling.
func runDrainJob(
	ctx context.Context,
	logger *slog.Logger,
	queueSvc queue.Service,
	pendingRepo repository.PendingNotificationRepository,
	cfg *workerPkg.SchedulerConfig,
	metrics *workerPkg.SchedulerMetrics,
) {
	startTime := time.Now()
	metrics.RecordDrainRun("started")

	drainCtx, cancel := context.WithTimeout(ctx, cfg.DrainTimeout)
	defer cancel()

	delivered, err := queueSvc.DrainDue(drainCtx, time.Now().UTC())
	if err != nil {
		logger.Error("drain pass failed", slog.Any("error", err))
		metrics.RecordDrainRun("failure")
		metrics.RecordDrainDuration(time.Since(startTime).Seconds())
		return
	}

	metrics.RecordDrainRun("success")
	metrics.RecordDrainDuration(time.Since(startTime).Seconds())
	metrics.RecordDelivered(delivered)
	metrics.RecordLastSuccess()

	if depth, err := pendingRepo.CountActive(drainCtx); err == nil {
		metrics.SetQueueDepth(depth)
	}

	if delivered > 0 {
		logger.Info("drain pass completed",
			slog.Int("delivered", delivered),
			slog.Duration("duration", time.Since(startTime)))
	}
}

// runPurgeJob removes stale cancelled entries from the queue.
func runPurgeJob(ctx context.Context, logger *slog.Logger, queueSvc queue.Service, metrics *workerPkg.SchedulerMetrics) {
	purgeCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	purged, err := queueSvc.PurgeStaleCancelled(purgeCtx, time.Now().UTC())
	if err != nil {
		logger.Error("purge run failed", slog.Any("error", err))
		return
	}

	metrics.RecordPurged(purged)
	logger.Info("purge run completed", slog.Int64("purged", purged))
}
