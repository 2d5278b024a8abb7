package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"privatenotes/config"
	"privatenotes/config/database"
	"privatenotes/internal/auth"
	"privatenotes/internal/note/repository"
	"privatenotes/middleware"
	"privatenotes/pkg/logger"
	"privatenotes/router"
	"privatenotes/socket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables from OS")
	}

	cfg := config.Load()
	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Sugar.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo := newRepository(ctx, cfg)
	defer closeRepo()

	hub := socket.NewHub()
	go hub.Run(ctx)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	handler := router.Setup(router.Dependencies{
		Repo:           repo,
		Verifier:       newVerifier(ctx, cfg),
		Hub:            hub,
		Limiter:        limiter,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Sugar.Infof("Notes backend listening on %s (store=%s, auth=%s)", cfg.Addr(), cfg.StoreDriver, cfg.AuthMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar.Errorf("Graceful shutdown failed: %v", err)
	}
}

func newRepository(ctx context.Context, cfg *config.Config) (repository.Repository, func()) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Sugar.Warn("Using the in-memory note store; notes are lost on restart")
		return repository.NewMemoryRepository(), func() {}
	}

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Sugar.Fatalf("Database unavailable: %v", err)
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logger.Sugar.Fatalf("Could not prepare schema: %v", err)
		}
	}
	return repository.NewPostgresRepository(db), func() { db.Close() }
}

func newVerifier(ctx context.Context, cfg *config.Config) auth.Verifier {
	switch cfg.AuthMode {
	case config.AuthModeJWT:
		return auth.NewJWTVerifier(cfg.SupabaseJWTSecret)
	case config.AuthModeJWKS:
		return auth.NewJWKSVerifier(ctx, cfg.SupabaseURL)
	default:
		return auth.NewRemoteVerifier(cfg.SupabaseURL, cfg.SupabaseAnonKey, nil)
	}
}
