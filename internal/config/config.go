package config

import (
	"log"
	"os"
	"strconv"

	"doc-qa-be/internal/ragconfig"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Rag      ragconfig.Settings
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	UploadDir          string
	MaxUploadSizeBytes int64
	IndexTopicName     string
	NatsURL            string
	NatsEnabled        bool
	RedisURL           string
	RedisEnabled       bool
}

type DatabaseConfig struct {
	// Postgres DSN, only needed when VECTOR_STORE_TYPE=pgvector.
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	EmbeddingDim      int
	OllamaBaseURL     string
	LLMProvider       string // "ollama"
	GeminiApiKey      string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
			MaxUploadSizeBytes: int64(getEnvAsInt("MAX_UPLOAD_SIZE_BYTES", 10*1024*1024)),
			IndexTopicName:     getEnv("INDEX_DOCUMENT_TOPIC_NAME", "INDEX_DOCUMENT"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			NatsEnabled:        getEnv("NATS_ENABLED", "false") == "true",
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			RedisEnabled:       getEnv("REDIS_ENABLED", "false") == "true",
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingDim:      getEnvAsInt("EMBEDDING_DIM", 768),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			GeminiApiKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Rag: ragconfig.Settings{
			ChunkSize:       getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap:    getEnvAsInt("CHUNK_OVERLAP", 200),
			EmbeddingModel:  getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			VectorStoreType: getEnv("VECTOR_STORE_TYPE", "memory"),
			LLMModel:        getEnv("LLM_MODEL", "llama3"),
			LLMTemperature:  getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			LLMMaxTokens:    getEnvAsInt("LLM_MAX_TOKENS", 1000),
			TopK:            getEnvAsInt("TOP_K", 4),
			ScoreThreshold:  getEnvAsFloat("SCORE_THRESHOLD", 0.0),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
