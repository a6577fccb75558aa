package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/user/contact-finder/internal/adapter/chromedp_browser"
	"github.com/user/contact-finder/internal/adapter/postgres"
	redis_adapter "github.com/user/contact-finder/internal/adapter/redis"
	"github.com/user/contact-finder/internal/adapter/sink"
	"github.com/user/contact-finder/internal/delivery/http/handler"
	"github.com/user/contact-finder/internal/delivery/http/router"
	"github.com/user/contact-finder/internal/export"
	"github.com/user/contact-finder/internal/usecase"
	"github.com/user/contact-finder/pkg/config"
	"github.com/user/contact-finder/pkg/logger"
	"github.com/user/contact-finder/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg := config.Load()

	// --- Logger ---
	logger.Init(os.Stdout, logger.Level(cfg.LogLevel))
	slog.Info("Logger initialized", "level", cfg.LogLevel)

	// --- Metrics ---
	metrics.Init()
	slog.Info("Metrics initialized")

	// --- Database Connections ---
	ctx := context.Background()

	// PostgreSQL
	pgConnString := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB)
	dbpool, err := pgxpool.New(ctx, pgConnString)
	if err != nil {
		slog.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	slog.Info("PostgreSQL connection pool established")

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		slog.Error("Unable to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("Redis connection established")

	// --- Browser ---
	browserPool, err := chromedp_browser.NewBrowserPool(cfg.Concurrency)
	if err != nil {
		slog.Error("Unable to initialize browser pool", "error", err)
		os.Exit(1)
	}
	defer browserPool.Close()
	slog.Info("Browser pool initialized", "concurrency", cfg.Concurrency)

	// --- Repositories ---
	sessionStore := redis_adapter.NewSessionStore(rdb)
	resultArchive := postgres.NewResultArchive(dbpool)

	// --- Events ---
	broadcast := sink.NewBroadcast()
	recorder, err := export.NewRecorder(cfg.ExportDir)
	if err != nil {
		slog.Error("Unable to initialize export recorder", "error", err)
		os.Exit(1)
	}
	defer recorder.Close()
	events := sink.Tee{broadcast, sink.NewLogSink(), recorder}

	// --- Use Cases ---
	gate := usecase.NewAntiBotGate()
	fetcher := usecase.NewSiteFetcher(cfg.PageLoadTimeout)
	discovery := usecase.NewDiscoveryAgent(gate, cfg.SearchDelayMin, cfg.SearchDelayMax, cfg.AntiBotWindow)
	sessionManager := usecase.NewSessionManager(sessionStore)
	scheduler := usecase.NewScheduler(
		sessionStore,
		resultArchive,
		browserPool,
		fetcher,
		discovery,
		events,
		gate,
		cfg.Concurrency,
		cfg.DomainBudget,
		cfg.DispatchInterval,
		cfg.SearchHeadless,
	)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(sessionManager, scheduler, resultArchive, broadcast)
	httpRouter := router.New(apiHandler)

	server := &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     httpRouter,
		ReadTimeout: 5 * time.Second,
		// SSE connections stay open; no write timeout.
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Could not listen on port", "port", cfg.ServerPort, "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	slog.Info("Server stopped")
}
