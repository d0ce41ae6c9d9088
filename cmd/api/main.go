package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"nolofication/internal/common/pagination"
	"nolofication/internal/config"
	pgRepo "nolofication/internal/infra/adapter/persistence/postgres"
	"nolofication/internal/infra/db"
	"nolofication/internal/infra/sender"
	"nolofication/internal/observability/logging"
	"nolofication/internal/observability/tracing"
	envconfig "nolofication/internal/pkg/config"
	"nolofication/internal/resilience/circuitbreaker"
	"nolofication/internal/service/identity"

	"nolofication/internal/usecase/dispatch"
	"nolofication/internal/usecase/notify"
	"nolofication/internal/usecase/prefs"
	"nolofication/internal/usecase/queue"
	"nolofication/internal/usecase/schedule"

	hhttp "nolofication/internal/handler/http"
	hnotification "nolofication/internal/handler/http/notification"
	"nolofication/internal/handler/http/requestid"
)

// @title           Nolofication API
// @version         1.0
// @description     通知設定解決・スケジューリング・マルチチャネル配信エンジンの REST API
// @description     サイト向けの通知送信 API と、ユーザー向けの通知履歴 API を提供します。

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description サイト認証用 API キー。ヘッダー名は security.yaml で変更できます。

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT トークンによる認証。ヘッダーに "Bearer {token}" 形式で指定してください。

func main() {
	logger := initLogger()
	secCfg := loadSecurityConfig(logger)
	verifier := initVerifier(logger, secCfg)
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	handler := setupServer(logger, database, secCfg, verifier, version)

	runServer(logger, handler, version)
}

// initLogger initializes the structured logger and installs it as the
// process default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// loadSecurityConfig loads the security configuration (JWT verification,
// site API key header, public endpoints) from YAML. The server refuses
// to start without it.
func loadSecurityConfig(logger *slog.Logger) *config.SecurityConfig {
	path := envconfig.LoadEnvString("SECURITY_CONFIG_PATH", "config/security.yaml")
	cfg, err := config.LoadSecurityConfig(path)
	if err != nil {
		logger.Error("failed to load security configuration",
			slog.String("path", path),
			slog.Any("error", err))
		os.Exit(1)
	}
	return cfg
}

// initVerifier builds the bearer token verifier from the security
// configuration. A missing signing secret is a startup error.
func initVerifier(logger *slog.Logger, cfg *config.SecurityConfig) identity.Verifier {
	verifier, err := identity.NewJWTVerifierFromConfig(cfg)
	if err != nil {
		logger.Error("failed to initialize token verifier", slog.Any("error", err))
		os.Exit(1)
	}
	return verifier
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database, err := db.Open(os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// setupServer wires the repositories, usecases and HTTP handlers and
// returns the fully middleware-wrapped handler.
func setupServer(
	logger *slog.Logger,
	database *sql.DB,
	secCfg *config.SecurityConfig,
	verifier identity.Verifier,
	version string,
) http.Handler {
	// Repository queries run through the circuit breaker so a failing
	// database sheds load instead of stacking up timeouts.
	breaker := circuitbreaker.NewDBCircuitBreaker(database)

	siteRepo := pgRepo.NewSiteRepo(breaker)
	userRepo := pgRepo.NewUserRepo(breaker)
	categoryRepo := pgRepo.NewCategoryRepo(breaker)
	notificationRepo := pgRepo.NewNotificationRepo(breaker)
	pendingRepo := pgRepo.NewPendingNotificationRepo(breaker)
	profileRepo := pgRepo.NewPreferenceProfileRepo(breaker)
	sitePrefRepo := pgRepo.NewSitePreferenceRepo(breaker)
	catPrefRepo := pgRepo.NewUserCategoryPreferenceRepo(breaker)
	pushSubRepo := pgRepo.NewPushSubscriptionRepo(breaker)

	prefsSvc := prefs.NewService(profileRepo, sitePrefRepo, catPrefRepo)
	scheduleSvc := schedule.NewService(sitePrefRepo, catPrefRepo)

	email, push, chat, webhook := sender.SendersFromEnv(logger)
	dispatcher := dispatch.NewService(email, push, chat, webhook, pushSubRepo, notificationRepo)

	queueSvc := queue.NewService(pendingRepo, userRepo, prefsSvc, dispatcher)
	notifySvc := notify.NewService(userRepo, categoryRepo, prefsSvc, scheduleSvc, dispatcher, queueSvc)

	identitySvc := identity.NewService(verifier, secCfg.GetPublicEndpoints())
	paginationCfg := pagination.LoadFromEnv()

	mux := http.NewServeMux()

	// ヘルスチェックエンドポイント（認証不要）
	mux.Handle("GET    /healthz", &hhttp.HealthHandler{DB: database, Version: version})
	mux.Handle("GET    /ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("GET    /live", &hhttp.LiveHandler{})
	mux.Handle("GET    /metrics", hhttp.MetricsHandler())

	hnotification.Register(mux, hnotification.Deps{
		Notify:        notifySvc,
		Queue:         queueSvc,
		Notifications: notificationRepo,
		Sites:         siteRepo,
		Users:         userRepo,
		Identity:      identitySvc,
		PaginationCfg: paginationCfg,
		APIKeyHeader:  secCfg.GetSiteAPIKeyHeader(),
		Logger:        logger,
	})

	return applyMiddleware(logger, mux)
}

// applyMiddleware wraps the handler with the middleware chain.
// Order (outermost to innermost): Request ID → Tracing → Logging →
// Recovery → Body Limit → Timeout → Input Validation → Metrics.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	middlewareChain := handler

	// Apply in reverse order (innermost to outermost)
	middlewareChain = hhttp.MetricsMiddleware(middlewareChain)
	middlewareChain = hhttp.InputValidation()(middlewareChain)
	middlewareChain = hhttp.Timeout(30 * time.Second)(middlewareChain)
	middlewareChain = hhttp.LimitRequestBody(1 << 20)(middlewareChain) // 1MB limit
	middlewareChain = hhttp.Recover(logger)(middlewareChain)
	middlewareChain = hhttp.Logging(logger)(middlewareChain)
	middlewareChain = tracing.Middleware(middlewareChain)
	middlewareChain = requestid.Middleware(middlewareChain)

	return middlewareChain
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, handler http.Handler, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", ":8080"),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
