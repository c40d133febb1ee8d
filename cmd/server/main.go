package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/BerylCAtieno/paper-genie/internal/acquirer"
	"github.com/BerylCAtieno/paper-genie/internal/analyzer"
	"github.com/BerylCAtieno/paper-genie/internal/config"
	"github.com/BerylCAtieno/paper-genie/internal/router"
	"github.com/BerylCAtieno/paper-genie/internal/services"
	"github.com/BerylCAtieno/paper-genie/internal/utils"
)

func main() {
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	// Initialize completion client
	completer, err := analyzer.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize completion client", "error", err)
	}

	// Initialize analysis service
	pdfAcquirer := acquirer.New(nil, cfg.DownloadTimeout, cfg.MaxDownloadBytes)
	analysisService := services.NewService(pdfAcquirer, completer, cfg, logger)

	// Setup HTTP router
	handler := router.NewRouter(analysisService, cfg.MaxUploadBytes, logger)

	// Create HTTP server; writes must outlive a download plus a completion
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      cfg.DownloadTimeout + cfg.LLMTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "provider", cfg.LLMProvider, "model", cfg.Model())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
