package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/switchboard/internal/adapter/llm"
	"github.com/example/switchboard/internal/adapter/notify"
	"github.com/example/switchboard/internal/config"
	store "github.com/example/switchboard/internal/repository"
	"github.com/example/switchboard/internal/service"
	handler "github.com/example/switchboard/internal/transport/http"
	"github.com/example/switchboard/internal/workers"
	"github.com/example/switchboard/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting switchboard...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("LLM gateway: %s (cheap=%s power=%s)", cfg.LLMBaseURL, cfg.CheapModel, cfg.PowerModel)

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize LLM client
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout)

	// Initialize notifier
	notifier := notify.NewClient(cfg.NotifyWebhookURL)

	// Initialize worker registry
	registry := workers.NewRegistry(
		workers.NewHTTPWorker(workers.WorkerResearch, cfg.ResearchWorkerURL),
		workers.NewHTTPWorker(workers.WorkerCode, cfg.CodeWorkerURL),
		workers.NewHTTPWorker(workers.WorkerEmail, cfg.EmailWorkerURL),
		workers.NewHTTPWorker(workers.WorkerAnalytics, cfg.AnalyticsWorkerURL),
		workers.NewHTTPWorker(workers.WorkerMemory, cfg.MemoryWorkerURL),
	)

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultMatrix)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize service and server
	svc := service.New(db, llmClient, notifier, registry, cfg, policyEngine)
	server := handler.NewServer(svc)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down switchboard...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Switchboard stopped")
}
