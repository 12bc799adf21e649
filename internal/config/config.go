// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/finance-insights/internal/analysis"
	"github.com/joho/godotenv"
)

// Generation backends.
const (
	BackendOllama = "ollama"
	BackendGemini = "gemini"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Log        LogConfig
	Generation GenerationConfig
	Analysis   AnalysisConfig
	RateLimit  RateLimitConfig
	Archive    ArchiveConfig
	Jobs       JobsConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Path string
}

type LogConfig struct {
	Level string
}

type GenerationConfig struct {
	Backend    string
	OllamaURL  string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

type AnalysisConfig struct {
	Language         string
	BatchCap         int
	VerifyDuplicates bool
}

// RateLimitConfig bounds AI endpoint calls per client.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
	// TrustProxy keys clients on X-Forwarded-For; enable only behind a proxy that sets it.
	TrustProxy bool
}

// ArchiveConfig enables run archiving. Empty values disable the corresponding sink.
type ArchiveConfig struct {
	BigQueryProject string
	BigQueryDataset string
	GCSBucket       string
}

type JobsConfig struct {
	Workers   int
	QueueSize int
	TTL       time.Duration
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnv("GENERATION_TIMEOUT", "120s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GENERATION_TIMEOUT: %w", err)
	}
	maxRetries, err := strconv.Atoi(getEnv("GENERATION_MAX_RETRIES", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid GENERATION_MAX_RETRIES: %w", err)
	}
	batchCap, err := strconv.Atoi(getEnv("ANALYSIS_BATCH_CAP", "50"))
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYSIS_BATCH_CAP: %w", err)
	}
	verify, err := strconv.ParseBool(getEnv("ANALYSIS_VERIFY_DUPLICATES", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYSIS_VERIFY_DUPLICATES: %w", err)
	}
	perMinute, err := strconv.Atoi(getEnv("AI_RATE_LIMIT_PER_MINUTE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid AI_RATE_LIMIT_PER_MINUTE: %w", err)
	}
	trustProxy, err := strconv.ParseBool(getEnv("TRUST_PROXY", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRUST_PROXY: %w", err)
	}
	workers, err := strconv.Atoi(getEnv("JOB_WORKERS", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_WORKERS: %w", err)
	}
	queueSize, err := strconv.Atoi(getEnv("JOB_QUEUE_SIZE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_QUEUE_SIZE: %w", err)
	}
	jobTTL, err := time.ParseDuration(getEnv("JOB_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_TTL: %w", err)
	}

	backend := strings.ToLower(getEnv("GENERATION_BACKEND", BackendOllama))
	if backend != BackendOllama && backend != BackendGemini {
		return nil, fmt.Errorf("invalid GENERATION_BACKEND: %q (want %s or %s)", backend, BackendOllama, BackendGemini)
	}
	model := analysis.DefaultModel
	if backend == BackendGemini {
		model = analysis.DefaultGeminiModel
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8000"),
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "finance.db"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Generation: GenerationConfig{
			Backend:    backend,
			OllamaURL:  getEnv("OLLAMA_URL", analysis.DefaultOllamaURL),
			Model:      getEnv("GENERATION_MODEL", model),
			Timeout:    timeout,
			MaxRetries: maxRetries,
		},
		Analysis: AnalysisConfig{
			Language:         getEnv("ANALYSIS_LANGUAGE", "Thai"),
			BatchCap:         batchCap,
			VerifyDuplicates: verify,
		},
		RateLimit: RateLimitConfig{
			PerMinute:  perMinute,
			TrustProxy: trustProxy,
			Burst:      3,
		},
		Archive: ArchiveConfig{
			BigQueryProject: getEnv("BQ_PROJECT", ""),
			BigQueryDataset: getEnv("BQ_DATASET", "finance"),
			GCSBucket:       getEnv("GCS_BUCKET", ""),
		},
		Jobs: JobsConfig{
			Workers:   workers,
			QueueSize: queueSize,
			TTL:       jobTTL,
		},
	}

	if cfg.Generation.Timeout <= 0 {
		return nil, fmt.Errorf("invalid GENERATION_TIMEOUT: must be positive")
	}
	if cfg.Generation.MaxRetries < 0 {
		return nil, fmt.Errorf("invalid GENERATION_MAX_RETRIES: must not be negative")
	}
	if cfg.Analysis.BatchCap < 1 {
		return nil, fmt.Errorf("invalid ANALYSIS_BATCH_CAP: must be at least 1")
	}
	if cfg.RateLimit.PerMinute < 1 {
		return nil, fmt.Errorf("invalid AI_RATE_LIMIT_PER_MINUTE: must be at least 1")
	}
	if cfg.Jobs.Workers < 1 {
		return nil, fmt.Errorf("invalid JOB_WORKERS: must be at least 1")
	}

	return cfg, nil
}

// ArchiveEnabled reports whether analysis runs are written to BigQuery.
func (c *Config) ArchiveEnabled() bool {
	return c.Archive.BigQueryProject != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
