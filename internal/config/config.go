// Package config provides configuration for the switchboard service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// LLM gateway (OpenAI-compatible; fronts the cheap and the
	// high-capability models)
	LLMBaseURL string
	LLMAPIKey  string
	LLMTimeout time.Duration

	// Escalation ladder models
	CheapModel string
	PowerModel string

	// Orchestration
	WorkerTimeout        time.Duration
	MaxConcurrentWorkers int64
	MaxSubTasks          int

	// Worker endpoints
	ResearchWorkerURL  string
	CodeWorkerURL      string
	EmailWorkerURL     string
	AnalyticsWorkerURL string
	MemoryWorkerURL    string

	// Notifications
	NotifyWebhookURL string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		HTTPPort:             getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:          getEnv("DATABASE_URL", "file:switchboard.db?cache=shared&mode=rwc"),
		LLMBaseURL:           getEnv("LLM_BASE_URL", "http://localhost:4000"),
		LLMAPIKey:            getEnv("LLM_API_KEY", ""),
		LLMTimeout:           time.Duration(getEnvInt("LLM_TIMEOUT_MS", 60000)) * time.Millisecond,
		CheapModel:           getEnv("CHEAP_MODEL", "ollama/llama3.1"),
		PowerModel:           getEnv("POWER_MODEL", "gpt-4o"),
		WorkerTimeout:        time.Duration(getEnvInt("WORKER_TIMEOUT_MS", 30000)) * time.Millisecond,
		MaxConcurrentWorkers: int64(getEnvInt("MAX_CONCURRENT_WORKERS", 4)),
		MaxSubTasks:          getEnvInt("MAX_SUBTASKS", 6),
		ResearchWorkerURL:    getEnv("RESEARCH_WORKER_URL", "http://localhost:8181"),
		CodeWorkerURL:        getEnv("CODE_WORKER_URL", "http://localhost:8182"),
		EmailWorkerURL:       getEnv("EMAIL_WORKER_URL", "http://localhost:8183"),
		AnalyticsWorkerURL:   getEnv("ANALYTICS_WORKER_URL", "http://localhost:8184"),
		MemoryWorkerURL:      getEnv("MEMORY_WORKER_URL", "http://localhost:8185"),
		NotifyWebhookURL:     getEnv("NOTIFY_WEBHOOK_URL", ""),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
