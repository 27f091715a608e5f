package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/user/notes-saas/internal/adapter/api"
	"github.com/user/notes-saas/internal/adapter/api/middleware"
	"github.com/user/notes-saas/internal/adapter/metrics"
	"github.com/user/notes-saas/internal/adapter/repository/postgres"
	redisrepo "github.com/user/notes-saas/internal/adapter/repository/redis"
	"github.com/user/notes-saas/internal/pkg/config"
	"github.com/user/notes-saas/internal/pkg/logger"
	"github.com/user/notes-saas/internal/usecase"

	_ "github.com/lib/pq" // postgres driver
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("error").Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)

	m := metrics.NewAPIMetrics()

	// --- Metrics and health server ---
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: metricsMux,
	}

	go func() {
		log.Info("starting metrics server", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", "error", err)
		}
	}()

	// --- Graceful shutdown context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Error("postgres is not reachable", "error", err)
		os.Exit(1)
	}

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}
	if cfg.SeedDemoData {
		if err := postgres.Seed(ctx, db, log); err != nil {
			log.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
	}

	// --- Rate limiter: shared Redis window when configured, otherwise a
	// per-process limiter. ---
	var limiter middleware.RateLimiter = middleware.NewMemoryRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("failed to parse redis url", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("could not connect to redis, falling back to in-process rate limiting", "error", err)
		} else {
			limiter = redisrepo.NewRateLimitRepository(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow)
		}
	}

	// --- Repositories ---
	userRepo := postgres.NewUserRepository(db)
	tenantRepo := postgres.NewTenantRepository(db)
	noteRepo := postgres.NewNoteRepository(db)

	// --- Use cases ---
	authUseCase := usecase.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	noteUseCase := usecase.NewNoteService(noteRepo, cfg.FreePlanNoteLimit)
	tenantUseCase := usecase.NewTenantService(tenantRepo, userRepo, noteRepo, cfg.FreePlanNoteLimit)

	// --- API server ---
	router := api.NewRouter(cfg, log, m, limiter, authUseCase, noteUseCase, tenantUseCase)
	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		log.Info("starting api server", "addr", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("api server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	log.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown failed", "error", err)
	}
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error("api server shutdown failed", "error", err)
	}

	log.Info("servers shut down gracefully")
}
