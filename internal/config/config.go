package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Artifact storage
	StorageDir string

	// OpenAI-compatible API
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// Models
	LLMModel         string
	LLMFallbackModel string
	LLMAltModel      string
	ChatModel        string
	EmbeddingModel   string

	// Transform budgets
	TokenLimit        int
	ChunkTokenBudget  int
	MaxSectionTextLen int

	// LLM timeout
	LLMTimeout time.Duration

	// Upload limits
	MaxUploadBytes int64

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8080"),

		StorageDir: envOr("STORAGE_DIR", "local_storage"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		LLMModel:         envOr("LLM_MODEL", "gpt-4.1"),
		LLMFallbackModel: envOr("LLM_FALLBACK_MODEL", "gpt-4.1-nano"),
		LLMAltModel:      envOr("LLM_ALT_MODEL", "gpt-5.1"),
		ChatModel:        envOr("CHAT_MODEL", "gpt-4.1"),
		EmbeddingModel:   envOr("EMBEDDING_MODEL", "text-embedding-3-large"),

		TokenLimit:        envInt("TOKEN_LIMIT", 175000),
		ChunkTokenBudget:  envInt("CHUNK_TOKEN_BUDGET", 100000),
		MaxSectionTextLen: envInt("MAX_SECTION_TEXT_LENGTH", 3000),

		LLMTimeout: envDuration("LLM_TIMEOUT", 5*time.Minute),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.TokenLimit <= 0 {
		cfg.TokenLimit = 175000
	}
	if cfg.ChunkTokenBudget <= 0 {
		cfg.ChunkTokenBudget = 100000
	}
	if cfg.MaxSectionTextLen <= 0 {
		cfg.MaxSectionTextLen = 3000
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 5 * time.Minute
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}

	return cfg
}

func (c Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
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

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
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
