package config

import (
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/analysis"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "8000" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "8000")
	}
	if cfg.Database.Path != "finance.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Generation.Backend != BackendOllama || cfg.Generation.Model != "qwen3-coder:30b" {
		t.Errorf("Generation = %+v", cfg.Generation)
	}
	if cfg.Generation.Timeout != 120*time.Second || cfg.Generation.MaxRetries != 1 {
		t.Errorf("Generation = %+v", cfg.Generation)
	}
	if cfg.Analysis.BatchCap != 50 || !cfg.Analysis.VerifyDuplicates || cfg.Analysis.Language != "Thai" {
		t.Errorf("Analysis = %+v", cfg.Analysis)
	}
	if cfg.Generation.OllamaURL != analysis.DefaultOllamaURL {
		t.Errorf("OllamaURL = %q", cfg.Generation.OllamaURL)
	}
	if cfg.RateLimit.PerMinute != 10 || cfg.RateLimit.Burst != 3 || cfg.RateLimit.TrustProxy {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
	if cfg.Jobs.Workers != 2 || cfg.Jobs.QueueSize != 100 || cfg.Jobs.TTL != time.Hour {
		t.Errorf("Jobs = %+v", cfg.Jobs)
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.ArchiveEnabled() {
		t.Error("archive should be disabled without BQ_PROJECT")
	}
}

func TestLoad_GeminiDefaultModel(t *testing.T) {
	t.Setenv("GENERATION_BACKEND", "Gemini")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Generation.Backend != BackendGemini || cfg.Generation.Model != analysis.DefaultGeminiModel {
		t.Errorf("Generation = %+v", cfg.Generation)
	}

	t.Setenv("GENERATION_MODEL", "gemini-2.5-pro")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Generation.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q, want explicit override", cfg.Generation.Model)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("BQ_PROJECT", "my-project")
	t.Setenv("ANALYSIS_VERIFY_DUPLICATES", "false")
	t.Setenv("JOB_TTL", "15m")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got := cfg.Server.AllowedOrigins; len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", got)
	}
	if !cfg.ArchiveEnabled() || cfg.Archive.BigQueryDataset != "finance" {
		t.Errorf("Archive = %+v", cfg.Archive)
	}
	if cfg.Analysis.VerifyDuplicates {
		t.Error("VerifyDuplicates should be false")
	}
	if cfg.Jobs.TTL != 15*time.Minute {
		t.Errorf("Jobs.TTL = %v", cfg.Jobs.TTL)
	}
	if !cfg.RateLimit.TrustProxy {
		t.Error("RateLimit.TrustProxy should be true")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "timeout", key: "GENERATION_TIMEOUT", value: "soon"},
		{name: "negative timeout", key: "GENERATION_TIMEOUT", value: "-1s"},
		{name: "retries", key: "GENERATION_MAX_RETRIES", value: "many"},
		{name: "negative retries", key: "GENERATION_MAX_RETRIES", value: "-2"},
		{name: "batch cap", key: "ANALYSIS_BATCH_CAP", value: "0"},
		{name: "verify", key: "ANALYSIS_VERIFY_DUPLICATES", value: "maybe"},
		{name: "rate", key: "AI_RATE_LIMIT_PER_MINUTE", value: "x"},
		{name: "zero rate", key: "AI_RATE_LIMIT_PER_MINUTE", value: "0"},
		{name: "negative rate", key: "AI_RATE_LIMIT_PER_MINUTE", value: "-1"},
		{name: "trust proxy", key: "TRUST_PROXY", value: "sometimes"},
		{name: "workers", key: "JOB_WORKERS", value: "0"},
		{name: "queue", key: "JOB_QUEUE_SIZE", value: "big"},
		{name: "ttl", key: "JOB_TTL", value: "1 hour"},
		{name: "backend", key: "GENERATION_BACKEND", value: "openai"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q expected error, got nil", tt.key, tt.value)
			}
		})
	}
}
