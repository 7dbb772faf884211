package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/coachkit/checkin-engine/internal/authoring"
	"github.com/coachkit/checkin-engine/internal/cache"
	"github.com/coachkit/checkin-engine/internal/monitoring"
	"github.com/coachkit/checkin-engine/internal/ratelimit"
	"github.com/coachkit/checkin-engine/internal/scoring"
	"github.com/coachkit/checkin-engine/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	dataDir := getEnvOrDefault("DATA_DIR", "./data")
	port := getEnvOrDefault("PORT", "8080")
	origins := strings.Split(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"), ",")
	cacheTTL := getEnvDurationOrDefault("SCORE_CACHE_TTL", 15*time.Minute)
	requestsPerMin := getEnvIntOrDefault("RATE_LIMIT_PER_MIN", 120)

	db, err := store.Open(dataDir)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	a := &app{
		engine:  scoring.NewEngine(),
		store:   db,
		bands:   authoring.NewService(db),
		metrics: monitoring.NewMetrics(),
		cache:   cache.New(cacheTTL),
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMin: requestsPerMin, Burst: 20}),
		origins: origins,
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: newRouter(a),
	}

	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
