package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every environment-sourced setting the server recognizes.
// Unknown environment keys are simply ignored; missing provider keys are
// not an error here - the LLM client reports them at construction time.
type Config struct {
	// App metadata
	AppName string
	Version string
	Debug   bool
	Port    int

	// Provider keys
	GroqAPIKey string
	HFToken    string

	// LLM
	LLMModel    string
	Temperature float64
	MaxTokens   int

	// Embeddings
	EmbeddingModel string

	// Uploads
	UploadDir         string
	MaxFileSize       int64
	AllowedExtensions []string

	// Chunking
	ChunkSize    int
	ChunkOverlap int

	// Vector store
	VectorBackend string // "chroma" or "pinecone"
	Chroma        ChromaConfig
	Pinecone      PineconeConfig

	// Sessions
	SessionBackend string // "memory" or "redis"
	Redis          RedisConfig

	// Rate limiting
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// ChromaConfig holds connection settings for a ChromaDB instance
type ChromaConfig struct {
	Host     string
	Port     int
	Tenant   string
	Database string
	Timeout  time.Duration
}

// PineconeConfig holds connection settings for a Pinecone index
type PineconeConfig struct {
	APIKey    string
	IndexName string
	Cloud     string
	Region    string
	Dimension int
	Timeout   time.Duration
}

// RedisConfig holds connection settings for Redis
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// Load reads configuration from the environment, applying defaults for
// everything that is not set.
func Load() *Config {
	return &Config{
		AppName: getString("APP_NAME", "StudyBuddy.ai"),
		Version: getString("VERSION", "1.0.0"),
		Debug:   getBool("DEBUG", true),
		Port:    getInt("PORT", 8080),

		GroqAPIKey: os.Getenv("GROQ_API_KEY"),
		HFToken:    os.Getenv("HF_TOKEN"),

		LLMModel:    getString("LLM_MODEL", "llama-3.1-8b-instant"),
		Temperature: getFloat("TEMPERATURE", 0.7),
		MaxTokens:   getInt("MAX_TOKENS", 1000),

		EmbeddingModel: getString("EMBEDDING_MODEL", "sentence-transformers/all-MiniLM-L6-v2"),

		UploadDir:         getString("UPLOAD_DIR", "./uploads"),
		MaxFileSize:       getInt64("MAX_FILE_SIZE", 10*1024*1024),
		AllowedExtensions: getStringSlice("ALLOWED_EXTENSIONS", []string{".pdf"}),

		ChunkSize:    getInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getInt("CHUNK_OVERLAP", 200),

		VectorBackend: getString("VECTOR_BACKEND", "chroma"),
		Chroma: ChromaConfig{
			Host:     getString("CHROMA_HOST", "localhost"),
			Port:     getInt("CHROMA_PORT", 8000),
			Tenant:   getString("CHROMA_TENANT", "default_tenant"),
			Database: getString("CHROMA_DATABASE", "default_database"),
			Timeout:  getDuration("CHROMA_TIMEOUT", 30*time.Second),
		},
		Pinecone: PineconeConfig{
			APIKey:    os.Getenv("PINECONE_API_KEY"),
			IndexName: getString("PINECONE_INDEX_NAME", "studybuddy"),
			Cloud:     getString("PINECONE_CLOUD", "aws"),
			Region:    getString("PINECONE_REGION", "us-east-1"),
			Dimension: getInt("PINECONE_DIMENSION", 384),
			Timeout:   getDuration("PINECONE_TIMEOUT", 30*time.Second),
		},

		SessionBackend: getString("SESSION_BACKEND", "memory"),
		Redis: RedisConfig{
			Host:     getString("REDIS_HOST", "localhost"),
			Port:     getInt("REDIS_PORT", 6379),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
			PoolSize: getInt("REDIS_POOL_SIZE", 10),
		},

		RateLimitMax:    getInt("RATE_LIMIT_MAX", 30),
		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", 60*time.Second),
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// Bare integers are treated as seconds
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}

func getStringSlice(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
