package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "StudyBuddy.ai", cfg.AppName)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.LLMModel)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 1000, cfg.MaxTokens)
	assert.Equal(t, "sentence-transformers/all-MiniLM-L6-v2", cfg.EmbeddingModel)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxFileSize)
	assert.Equal(t, []string{".pdf"}, cfg.AllowedExtensions)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, "chroma", cfg.VectorBackend)
	assert.Equal(t, "memory", cfg.SessionBackend)
	assert.Equal(t, 30, cfg.RateLimitMax)
	assert.Equal(t, 60*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, 8000, cfg.Chroma.Port)
	assert.Equal(t, "default_tenant", cfg.Chroma.Tenant)
	assert.Equal(t, 384, cfg.Pinecone.Dimension)
	assert.Equal(t, 6379, cfg.Redis.Port)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_MODEL", "llama-3.3-70b-versatile")
	t.Setenv("TEMPERATURE", "0.2")
	t.Setenv("CHUNK_SIZE", "500")
	t.Setenv("VECTOR_BACKEND", "pinecone")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("RATE_LIMIT_MAX", "100")
	t.Setenv("ALLOWED_EXTENSIONS", ".pdf, .txt")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLMModel)
	assert.Equal(t, 0.2, cfg.Temperature)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, "pinecone", cfg.VectorBackend)
	assert.Equal(t, "redis", cfg.SessionBackend)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, []string{".pdf", ".txt"}, cfg.AllowedExtensions)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("TEMPERATURE", "warm")
	t.Setenv("DEBUG", "definitely")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.True(t, cfg.Debug)
}

func TestLoadDurationForms(t *testing.T) {
	t.Setenv("RATE_LIMIT_WINDOW", "2m")
	cfg := Load()
	assert.Equal(t, 2*time.Minute, cfg.RateLimitWindow)

	// Bare integers mean seconds
	t.Setenv("RATE_LIMIT_WINDOW", "45")
	cfg = Load()
	assert.Equal(t, 45*time.Second, cfg.RateLimitWindow)
}
