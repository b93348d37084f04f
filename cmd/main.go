package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/mstgnz/storepay/handler"
	"github.com/mstgnz/storepay/infra/config"
	"github.com/mstgnz/storepay/infra/logger"
	"github.com/mstgnz/storepay/infra/middle"
	"github.com/mstgnz/storepay/infra/opensearch"
	"github.com/mstgnz/storepay/infra/response"
	"github.com/mstgnz/storepay/provider"
	"github.com/mstgnz/storepay/router"
	v1 "github.com/mstgnz/storepay/router/v1"
)

const version = "1.0.0"

func main() {
	// Load Env; a missing .env is fine when the environment is set by the platform
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Load Env Error: %v", err)
	}

	cfg := config.GetAppConfig()

	// OpenSearch client and attempt logger
	var (
		osClient         *opensearch.Client
		openSearchLogger *opensearch.Logger
	)
	if cfg.EnableLogging {
		client, err := opensearch.NewClient(cfg)
		if err != nil {
			log.Printf("Failed to initialize OpenSearch client: %v", err)
			log.Println("Continuing without OpenSearch logging...")
		} else {
			osClient = client
			openSearchLogger = opensearch.NewLogger(client)
		}
	}

	logger.InitGlobalLogger(openSearchLogger)
	defer logger.Sync()

	// Settings store
	store, err := config.NewSettingsStore(cfg)
	if err != nil {
		logger.Fatal("Failed to open settings store", err, logger.LogContext{
			Fields: map[string]any{"driver": cfg.DBDriver},
		})
	}
	defer store.Close()

	selector := provider.NewSelector(store, nil)
	paymentService := provider.NewPaymentService(selector, openSearchLogger)

	rateLimiter := middle.NewRateLimiter()

	// Chi Define Routes
	r := chi.NewRouter()

	// Basic Middleware
	r.Use(middle.RequestIDMiddleware())
	r.Use(middle.AccessLogMiddleware())
	r.Use(middle.PanicRecoveryMiddleware())
	r.Use(middleware.Timeout(60 * time.Second))

	// Security Middleware
	r.Use(middle.SecurityHeadersMiddleware())
	r.Use(middle.IPWhitelistMiddleware())
	r.Use(middle.RequestValidationMiddleware())

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AppURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "Origin", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300, // Preflight cache time (second)
	}))

	// Health check endpoint (no auth required)
	healthHandler := handler.NewHealthHandler(store, osClient, nil, version)
	r.Get("/health", healthHandler.CheckHealth)

	router.Routes(r, v1.Dependencies{
		Checkout:    paymentService,
		Settings:    store,
		Logs:        openSearchLogger,
		APIKey:      cfg.APIKey,
		Validate:    config.App().Validator,
		RateLimiter: rateLimiter,
	})

	// Not Found
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Not Found", nil)
	})

	// Create a context that listens for interrupt and terminate signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rateLimiter.Cleanup()
			}
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run your HTTP server in a goroutine
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", err)
		}
	}()

	logger.Info("API is running", logger.LogContext{
		Fields: map[string]any{"port": cfg.Port, "version": version, "environment": cfg.Environment},
	})

	// Block until a signal is received
	<-ctx.Done()

	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", err)
	}
}
