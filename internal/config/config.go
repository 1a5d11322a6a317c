package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	DocreflowAPIKey string

	// Renderer connection
	RendererURL    string
	RendererAPIKey string
	RenderTimeout  time.Duration

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Rule catalog
	RulesPath string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8092"),

		DocreflowAPIKey: os.Getenv("DOCREFLOW_API_KEY"),

		RendererURL:    envOr("RENDERER_URL", "http://localhost:3000"),
		RendererAPIKey: os.Getenv("RENDERER_API_KEY"),
		RenderTimeout:  envDuration("RENDER_TIMEOUT", 60*time.Second),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		RulesPath: os.Getenv("RULES_PATH"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = 60 * time.Second
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DocreflowAPIKey == "" {
		return fmt.Errorf("DOCREFLOW_API_KEY is required")
	}
	if c.RendererURL == "" {
		return fmt.Errorf("RENDERER_URL is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
