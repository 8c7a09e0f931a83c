// Package config loads process configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the server and ingest binaries read from the
// environment.
type Config struct {
	// Port the HTTP shell listens on.
	Port string

	// DatabaseURL selects the Postgres vector store when set; otherwise
	// the local sqlite index at IndexPath is used.
	DatabaseURL string

	// IndexPath is the sqlite index file for the care-path corpus.
	IndexPath string

	// OpenAIKey enables embeddings and the external safety tier.
	OpenAIKey string

	// SafetyModel is the external arbiter model.
	SafetyModel string

	// EmbedModel is the embedding model; must match the ingest run.
	EmbedModel string

	// SafetyLLM toggles the external safety tier (on by default; it is
	// only attempted when OpenAIKey is also present).
	SafetyLLM bool

	// SafetyTimeout bounds the external arbiter call.
	SafetyTimeout time.Duration

	// SessionTTL evicts idle conversations.
	SessionTTL time.Duration
}

// Load reads the environment and applies defaults.
func Load() Config {
	cfg := Config{
		Port:          getenv("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		IndexPath:     getenv("TRIAGE_INDEX_PATH", ".triage/index.db"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		SafetyModel:   os.Getenv("OPENAI_MODEL_SAFETY"),
		EmbedModel:    os.Getenv("OPENAI_MODEL_EMBED"),
		SafetyLLM:     getenv("SAFETY_LLM", "1") == "1",
		SafetyTimeout: 3 * time.Second,
		SessionTTL:    12 * time.Hour,
	}
	if v, err := strconv.ParseFloat(getenv("SAFETY_LLM_TIMEOUT", ""), 64); err == nil && v > 0 {
		cfg.SafetyTimeout = time.Duration(v * float64(time.Second))
	}
	if v, err := strconv.Atoi(getenv("SESSION_TTL_HOURS", "")); err == nil && v > 0 {
		cfg.SessionTTL = time.Duration(v) * time.Hour
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
