package main

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yourorg/bookingdesk/internal/handler"
	"github.com/yourorg/bookingdesk/internal/infrastructure/logger"
	"github.com/yourorg/bookingdesk/internal/infrastructure/redis"
	"github.com/yourorg/bookingdesk/internal/observability/tracing"
	"github.com/yourorg/bookingdesk/internal/reliability/retry"
	"github.com/yourorg/bookingdesk/internal/repository"
	"github.com/yourorg/bookingdesk/internal/security"
	"github.com/yourorg/bookingdesk/internal/security/audit"
	"github.com/yourorg/bookingdesk/internal/security/auth"
	"github.com/yourorg/bookingdesk/internal/security/lockout"
	"github.com/yourorg/bookingdesk/internal/security/middleware"
	"github.com/yourorg/bookingdesk/internal/security/ratelimit"
	"github.com/yourorg/bookingdesk/internal/service"
	"github.com/yourorg/bookingdesk/internal/worker"
	"github.com/yourorg/bookingdesk/pkg/config"
	"github.com/yourorg/bookingdesk/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting bookingdesk server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Tracing (no-op unless OTEL_EXPORTER_OTLP_ENDPOINT is set)
	shutdownTracing, err := tracing.Init(ctx, log, "bookingdesk", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Load token signing keys
	tokenManager, err := buildTokenManager(cfg)
	if err != nil {
		log.Error("failed to load signing keys", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Connect to Postgres, with retry for slow-starting databases
	dbCfg := &database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}
	pool, err := retry.Do(ctx, retry.DefaultConfig(), log, "database connect",
		func(ctx context.Context) (*database.ConnectionPool, error) {
			return database.NewConnectionPool(ctx, dbCfg, log)
		})
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 6. Redis is optional; without it the login lockout fails open
	var redisClient *redis.Client
	var lockoutStore service.LockoutStore
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		lockoutStore = lockout.NewStore(redisClient, cfg.LoginMaxAttempts, cfg.LoginWindow, log)
	} else {
		log.Warn("REDIS_URL not set, login lockout disabled")
	}

	// 7. Repositories and services
	bookingRepo := repository.NewPostgresBookingRepository(pool.GetDB(), log)
	userRepo := repository.NewPostgresUserRepository(pool.GetDB(), log)

	bookingService := service.NewBookingService(bookingRepo, log, cfg.StrictTransitions)
	authService := service.NewAuthService(userRepo, tokenManager, lockoutStore, log)

	// 8. Security components and handlers
	authz := security.NewAuthorizationService(log)
	auditLogger := audit.NewLogger(log)
	rateLimiter := ratelimit.NewLimiter(100, time.Minute)

	bookingHandler := handler.NewBookingHandler(bookingService, authz, auditLogger, log)
	loginHandler := handler.NewLoginHandler(authService, auditLogger, log)
	healthHandler := handler.NewHealthHandler(pool.GetDB(), redisClient, log)

	// 9. Routes
	mux := http.NewServeMux()
	mux.Handle("POST /api/login", loginHandler)
	mux.HandleFunc("POST /api/bookings", bookingHandler.Submit)
	mux.HandleFunc("GET /api/bookings", bookingHandler.List)
	mux.HandleFunc("POST /api/bookings/accept", bookingHandler.Accept)
	mux.HandleFunc("POST /api/bookings/reject", bookingHandler.Reject)
	mux.HandleFunc("DELETE /api/bookings/{id}", bookingHandler.Delete)
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Chain: request ID -> metrics -> content type -> login rate limit -> bearer auth
	rootHandler := middleware.RequestID(
		middleware.Metrics(
			middleware.ValidateJSONContentType(log)(
				middleware.LoginRateLimit(rateLimiter, cfg.LoginMaxAttempts, cfg.LoginWindow, log)(
					middleware.BearerAuth(tokenManager, userRepo, log)(mux),
				),
			),
		),
	)
	tracedHandler := otelhttp.NewHandler(rootHandler, "bookingdesk")

	// 10. Background stats worker
	statsWorker := worker.NewStatsWorker(bookingRepo, log, cfg.StatsInterval)
	go statsWorker.Start(ctx)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      tracedHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "bearer"),
		slog.Bool("strict_transitions", cfg.StrictTransitions),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	cancel()
	rateLimiter.Stop()
	log.Info("server stopped")
}

// buildTokenManager loads the Ed25519 key pair. The private key comes from
// the JWT_PRIVATE_KEY env var (PEM) or a file path; the public key is derived
// from it unless configured separately.
func buildTokenManager(cfg *config.Config) (*auth.TokenManager, error) {
	src, err := config.KeySource("JWT_PRIVATE_KEY", cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, err
	}
	pemBytes, err := src.Resolve()
	if err != nil {
		return nil, err
	}
	privateKey, err := auth.ParsePrivateKey(pemBytes)
	if err != nil {
		return nil, err
	}

	var publicKey ed25519.PublicKey
	if pubSrc, err := config.KeySource("JWT_PUBLIC_KEY", cfg.JWTPublicKeyPath); err == nil {
		pubPEM, err := pubSrc.Resolve()
		if err != nil {
			return nil, err
		}
		publicKey, err = auth.ParsePublicKey(pubPEM)
		if err != nil {
			return nil, err
		}
	} else {
		publicKey = privateKey.Public().(ed25519.PublicKey)
	}

	return auth.NewTokenManager(privateKey, publicKey, cfg.JWTIssuer, cfg.TokenTTL), nil
}
