package bootstrap

import (
	"log"

	"doc-qa-be/internal/config"
	"doc-qa-be/internal/controller"
	"doc-qa-be/internal/pkg/logger"
	"doc-qa-be/internal/ragconfig"
	"doc-qa-be/internal/service"
	"doc-qa-be/pkg/docloader"
	"doc-qa-be/pkg/embedding"
	"doc-qa-be/pkg/ingest"
	"doc-qa-be/pkg/llm/factory"
	"doc-qa-be/pkg/rag"
	"doc-qa-be/pkg/vectorstore"
	"doc-qa-be/pkg/vectorstore/memory"
	"doc-qa-be/pkg/vectorstore/pgvec"

	pktNats "doc-qa-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	QAController       controller.IQAController
	ConfigController   controller.IConfigController

	// Background services (exposed for main.go to run)
	IndexerService service.IIndexerService

	// Shared state
	Index      *vectorstore.Index
	RagConfig  *ragconfig.Manager
	NatsPub    *pktNats.Publisher
	vectorType string
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	ragManager, err := ragconfig.NewManager(cfg.Rag)
	if err != nil {
		log.Fatalf("[FATAL] Invalid RAG configuration: %v", err)
	}

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiApiKey, cfg.Rag.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: GEMINI (%s)", cfg.Rag.EmbeddingModel)
	} else {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Rag.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Rag.EmbeddingModel)
	}

	if cfg.App.RedisEnabled {
		opts, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Invalid REDIS_URL, embedding cache disabled: %v", err)
		} else {
			embeddingProvider = embedding.NewCachedProvider(embeddingProvider, redis.NewClient(opts), 0)
			log.Printf("[INFO] Embedding cache enabled (redis)")
		}
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Rag.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Rag.LLMModel)

	// 4. Vector store
	var newBackend vectorstore.BackendFactory
	switch cfg.Rag.VectorStoreType {
	case ragconfig.VectorStorePgvector:
		if db == nil {
			log.Fatalf("[FATAL] VECTOR_STORE_TYPE=pgvector requires DB_CONNECTION_STRING")
		}
		newBackend = func() (vectorstore.Backend, error) {
			return pgvec.NewStorage(db, cfg.Ai.EmbeddingDim)
		}
	default:
		newBackend = func() (vectorstore.Backend, error) {
			return memory.NewStorage(), nil
		}
	}
	index := vectorstore.NewIndex(embeddingProvider, newBackend)

	// 5. Ingestion pipeline
	pipeline := ingest.NewPipeline(docloader.New())

	// 6. NATS (optional, the service runs without it)
	var natsPub *pktNats.Publisher
	if cfg.App.NatsEnabled {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		}
	}

	// 7. Services
	publisherService := service.NewPublisherService(cfg.App.IndexTopicName, pubSub)
	indexerService := service.NewIndexerService(pubSub, cfg.App.IndexTopicName, pipeline, index, natsPub, sysLogger)
	documentService := service.NewDocumentService(
		pipeline,
		index,
		ragManager,
		publisherService,
		natsPub,
		sysLogger,
		cfg.App.UploadDir,
		cfg.App.MaxUploadSizeBytes,
	)
	engine := rag.NewEngine(index, llmProvider, ragManager)
	qaService := service.NewQAService(engine, sysLogger)
	configService := service.NewConfigService(ragManager, sysLogger)

	// 8. Controllers
	return &Container{
		DocumentController: controller.NewDocumentController(documentService),
		QAController:       controller.NewQAController(qaService),
		ConfigController:   controller.NewConfigController(configService),
		IndexerService:     indexerService,
		Index:              index,
		RagConfig:          ragManager,
		NatsPub:            natsPub,
		vectorType:         cfg.Rag.VectorStoreType,
	}
}

// Health reports liveness details for the health endpoint.
func (c *Container) Health() map[string]interface{} {
	stats := c.Index.GetStoreStats()
	return map[string]interface{}{
		"status":          "healthy",
		"vector_store":    c.vectorType,
		"total_documents": stats.TotalDocuments,
		"total_chunks":    stats.TotalChunks,
	}
}
