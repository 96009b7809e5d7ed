package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HISASHIKUSANO/GeminiAPI01/config"
	"github.com/HISASHIKUSANO/GeminiAPI01/handler"
	"github.com/HISASHIKUSANO/GeminiAPI01/middleware"
	"github.com/HISASHIKUSANO/GeminiAPI01/pkg/logger"
	"github.com/HISASHIKUSANO/GeminiAPI01/service"
)

const version = "0.1.0"

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Load the system prompt; a missing prompt file is fatal
	promptData, err := os.ReadFile(cfg.Gemini.PromptFile)
	if err != nil {
		slog.Error("failed to load system prompt", "file", cfg.Gemini.PromptFile, "error", err)
		os.Exit(1)
	}
	systemPrompt := strings.TrimSpace(string(promptData))

	// Initialize services
	fetcherSvc := service.NewFetcherService(&cfg.Fetch)
	extractorSvc := service.NewExtractorService()

	generatorSvc, err := service.NewGeneratorService(context.Background(), &cfg.Gemini, systemPrompt)
	if err != nil {
		slog.Error("failed to initialize Gemini service", "error", err)
		os.Exit(1)
	}

	// Initialize handlers
	contractHandler := handler.NewContractHandler(fetcherSvc, extractorSvc, generatorSvc)
	healthHandler := handler.NewHealthHandler(version, generatorSvc)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	// Add custom middleware
	router.Use(middleware.RequestID())     // Request ID for tracing
	router.Use(middleware.Recovery())      // Panic recovery
	router.Use(middleware.RequestLogger()) // Access logging
	router.Use(corsMiddleware())           // CORS

	// Routes
	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.Health)
	router.POST("/contract", contractHandler.Generate)

	// Create server. Generation can be slow, so the write timeout leaves
	// room for one full model round-trip.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
