package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"studybuddy/internal/config"
	"studybuddy/internal/db"
	"studybuddy/internal/handlers"
	"studybuddy/internal/middleware"
	"studybuddy/internal/repositories"
	"studybuddy/internal/routes"
	"studybuddy/internal/services"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewServer builds the fully wired HTTP server from environment config.
// Optional backends degrade gracefully: a missing GROQ_API_KEY disables
// LLM-backed endpoints, an unreachable Redis falls back to in-memory
// sessions. An unknown vector backend is a hard error.
func NewServer() (*http.Server, error) {
	logger := log.New(os.Stdout, "[SERVER] ", log.LstdFlags)
	cfg := config.Load()

	chunker, err := services.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("invalid chunking config: %w", err)
	}

	vectorRepo, err := initializeVectorRepository(cfg, logger)
	if err != nil {
		return nil, err
	}

	sessions := initializeSessionStore(cfg, logger)

	embedder := services.NewHuggingFaceEmbedder(cfg.HFToken, cfg.EmbeddingModel,
		log.New(os.Stdout, "[EMBED] ", log.LstdFlags))
	vectorService := services.NewVectorService(chunker, embedder, vectorRepo,
		log.New(os.Stdout, "[VECTOR] ", log.LstdFlags))
	pdfService := services.NewPDFService(cfg.UploadDir, cfg.MaxFileSize, cfg.AllowedExtensions,
		log.New(os.Stdout, "[PDF] ", log.LstdFlags))

	var llm services.LLMClient
	var breaker handlers.BreakerReporter
	groq, err := services.NewGroqClient(cfg.GroqAPIKey, cfg.LLMModel, cfg.Temperature, cfg.MaxTokens,
		log.New(os.Stdout, "[LLM] ", log.LstdFlags))
	if err != nil {
		logger.Printf("⚠️  LLM client disabled: %v", err)
		logger.Println("   Chat, RAG and PYQ endpoints will return configuration errors")
	} else {
		llm = groq
		breaker = groq
		logger.Printf("✅ LLM client initialized (model: %s)", groq.Model())
	}

	ragService := services.NewRAGService(vectorService, llm, sessions,
		log.New(os.Stdout, "[RAG] ", log.LstdFlags))
	pyqService := services.NewPYQService(vectorService, llm, services.NewKeywordExtractor(),
		log.New(os.Stdout, "[PYQ] ", log.LstdFlags))

	handlerLogger := log.New(os.Stdout, "[HTTP] ", log.LstdFlags)
	h := &routes.Handlers{
		Home:   handlers.NewHomeHandler(cfg, breaker, handlerLogger),
		Chat:   handlers.NewChatHandler(llm, cfg.LLMModel, handlerLogger),
		Upload: handlers.NewUploadHandler(pdfService, vectorService, handlerLogger),
		RAG:    handlers.NewRAGHandler(ragService, sessions, handlerLogger),
		PYQ:    handlers.NewPYQHandler(pdfService, pyqService, handlerLogger),
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, h)

	// Swagger UI
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Port)),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	limiter := middleware.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	rateLimit := limiter.Middleware(log.New(os.Stdout, "[RATELIMIT] ", log.LstdFlags))

	logger.Printf("✅ %s v%s listening on :%d (vector backend: %s, sessions: %s)",
		cfg.AppName, cfg.Version, cfg.Port, cfg.VectorBackend, cfg.SessionBackend)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           middleware.CORS(rateLimit(router)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second, // LLM completions can be slow
		IdleTimeout:       60 * time.Second,
	}, nil
}

// initializeVectorRepository creates the configured vector store backend
func initializeVectorRepository(cfg *config.Config, logger *log.Logger) (repositories.VectorRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.VectorBackend {
	case "chroma":
		logger.Printf("Connecting to ChromaDB: %s:%d", cfg.Chroma.Host, cfg.Chroma.Port)
		client := db.NewChromaClient(db.ChromaConfig{
			Host:     cfg.Chroma.Host,
			Port:     cfg.Chroma.Port,
			Tenant:   cfg.Chroma.Tenant,
			Database: cfg.Chroma.Database,
			Timeout:  cfg.Chroma.Timeout,
		})
		if err := client.Heartbeat(ctx); err != nil {
			logger.Printf("⚠️  ChromaDB heartbeat failed: %v", err)
			logger.Println("   Hint: Ensure ChromaDB is running (docker run -d -p 8000:8000 chromadb/chroma)")
		} else {
			logger.Println("✅ ChromaDB connected successfully")
		}
		return repositories.NewChromaVectorRepository(client), nil

	case "pinecone":
		if cfg.Pinecone.APIKey == "" {
			return nil, fmt.Errorf("PINECONE_API_KEY is required for the pinecone backend")
		}
		logger.Printf("Connecting to Pinecone index %q (%s/%s)",
			cfg.Pinecone.IndexName, cfg.Pinecone.Cloud, cfg.Pinecone.Region)
		client := db.NewPineconeClient(db.PineconeConfig{
			APIKey:    cfg.Pinecone.APIKey,
			IndexName: cfg.Pinecone.IndexName,
			Cloud:     cfg.Pinecone.Cloud,
			Region:    cfg.Pinecone.Region,
			Dimension: cfg.Pinecone.Dimension,
			Timeout:   cfg.Pinecone.Timeout,
		})
		if err := client.EnsureIndex(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure Pinecone index: %w", err)
		}
		logger.Println("✅ Pinecone index ready")
		return repositories.NewPineconeVectorRepository(client), nil

	default:
		return nil, fmt.Errorf("unknown vector backend %q (expected \"chroma\" or \"pinecone\")", cfg.VectorBackend)
	}
}

// initializeSessionStore creates the configured session backend, falling
// back to in-memory sessions when Redis is unreachable.
func initializeSessionStore(cfg *config.Config, logger *log.Logger) services.SessionStore {
	if cfg.SessionBackend != "redis" {
		logger.Println("Using in-memory session store")
		return services.NewMemorySessionStore()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Printf("Connecting to Redis: %s:%d (DB: %d)", cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.DB)
	client := db.NewRedisClient(db.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err := client.Ping(ctx); err != nil {
		logger.Printf("⚠️  Redis connection failed: %v", err)
		logger.Println("   Falling back to in-memory sessions")
		logger.Println("   Hint: Ensure Redis is running (docker run -d -p 6379:6379 redis:7-alpine)")
		return services.NewMemorySessionStore()
	}
	logger.Println("✅ Redis connected successfully")
	return services.NewRedisSessionStore(client.Client())
}
