package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/api"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/app/service"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/common/security"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/domain/repository"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/platform/cache"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/platform/config"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/platform/database"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/platform/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	appLogger := logger.Init(cfg.LogLevel, cfg.LogFormat)

	// 2. Initialize token signing
	tokens := security.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if tokens.Insecure() {
		log.Warn().Msg("JWT_SECRET is not set: signing tokens with the built-in fallback secret. This is a deployment misconfiguration.")
	}

	// 3. Initialize the store
	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	stores, err := database.Open(startCtx, cfg)
	if err != nil {
		cancelStart()
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	log.Info().Str("store", stores.Kind).Msg("Database connected")

	// 4. Initialize Redis cache (optional)
	todoRepo := stores.Todos
	if cfg.CacheEnabled() {
		rdb, err := cache.ConnectRedis(startCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			cancelStart()
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer rdb.Close()
		todoRepo = repository.NewCachedTodoRepository(todoRepo, rdb, cfg.TodoCacheTTL)
		log.Info().Str("addr", cfg.RedisAddr).Msg("Redis todo cache enabled")
	}
	cancelStart()

	// 5. Initialize Services
	authService := service.NewAuthService(stores.Users, todoRepo, tokens)
	todoService := service.NewTodoService(todoRepo)

	// 6. Initialize Router & HTTP Server
	router := api.NewRouter(authService, todoService, tokens, api.RouterOptions{
		Logger:         appLogger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 7. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.APIPort).Msg("Server is running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Str("port", cfg.APIPort).Msg("Could not listen")
		}
	}()

	<-stop // Wait for interrupt signal

	log.Info().Msg("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	if err := stores.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to close database")
	}

	log.Info().Msg("Server stopped gracefully")
}
