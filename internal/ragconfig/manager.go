// Package ragconfig owns the runtime-tunable retrieval settings. The
// service keeps exactly one Manager; handlers read snapshots and apply
// validated partial updates instead of touching shared mutable state.
package ragconfig

import (
	"sync"

	"doc-qa-be/pkg/ragerr"
)

// Supported vector store backends.
const (
	VectorStoreMemory   = "memory"
	VectorStorePgvector = "pgvector"
)

// Settings is the complete runtime RAG configuration.
type Settings struct {
	ChunkSize       int     `json:"chunk_size"`
	ChunkOverlap    int     `json:"chunk_overlap"`
	EmbeddingModel  string  `json:"embedding_model"`
	VectorStoreType string  `json:"vector_store_type"`
	LLMModel        string  `json:"llm_model"`
	LLMTemperature  float64 `json:"llm_temperature"`
	LLMMaxTokens    int     `json:"llm_max_tokens"`
	TopK            int     `json:"top_k"`
	ScoreThreshold  float64 `json:"score_threshold"`
}

// Update carries the fields of a partial configuration update. Nil
// means "leave unchanged".
type Update struct {
	ChunkSize      *int     `json:"chunk_size"`
	ChunkOverlap   *int     `json:"chunk_overlap"`
	EmbeddingModel *string  `json:"embedding_model"`
	LLMModel       *string  `json:"llm_model"`
	LLMTemperature *float64 `json:"llm_temperature"`
	LLMMaxTokens   *int     `json:"llm_max_tokens"`
	TopK           *int     `json:"top_k"`
	ScoreThreshold *float64 `json:"score_threshold"`
}

// Validate checks every field against its documented range. The
// overlap-below-size invariant is enforced on every write.
func Validate(s Settings) error {
	if s.ChunkSize < 100 || s.ChunkSize > 10000 {
		return ragerr.DocumentProcessing("chunk_size must be between 100 and 10000, got %d", s.ChunkSize)
	}
	if s.ChunkOverlap < 0 || s.ChunkOverlap > 5000 {
		return ragerr.DocumentProcessing("chunk_overlap must be between 0 and 5000, got %d", s.ChunkOverlap)
	}
	if s.ChunkOverlap >= s.ChunkSize {
		return ragerr.DocumentProcessing("chunk_overlap (%d) must be smaller than chunk_size (%d)", s.ChunkOverlap, s.ChunkSize)
	}
	if s.LLMTemperature < 0 || s.LLMTemperature > 2 {
		return ragerr.DocumentProcessing("llm_temperature must be between 0 and 2, got %g", s.LLMTemperature)
	}
	if s.LLMMaxTokens < 1 || s.LLMMaxTokens > 4000 {
		return ragerr.DocumentProcessing("llm_max_tokens must be between 1 and 4000, got %d", s.LLMMaxTokens)
	}
	if s.TopK < 1 || s.TopK > 20 {
		return ragerr.DocumentProcessing("top_k must be between 1 and 20, got %d", s.TopK)
	}
	if s.VectorStoreType != VectorStoreMemory && s.VectorStoreType != VectorStorePgvector {
		return ragerr.DocumentProcessing("vector_store_type must be %q or %q, got %q", VectorStoreMemory, VectorStorePgvector, s.VectorStoreType)
	}
	if s.ScoreThreshold < 0 || s.ScoreThreshold > 1 {
		return ragerr.DocumentProcessing("score_threshold must be between 0 and 1, got %g", s.ScoreThreshold)
	}
	return nil
}

// Manager holds the single shared configuration instance behind a
// read-write lock. Updates replace the whole value after validation,
// so readers never observe a half-applied update.
type Manager struct {
	mu      sync.RWMutex
	current Settings
}

func NewManager(initial Settings) (*Manager, error) {
	if err := Validate(initial); err != nil {
		return nil, err
	}
	return &Manager{current: initial}, nil
}

// Snapshot returns a copy of the current settings.
func (m *Manager) Snapshot() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Apply merges a partial update over the current settings, validates
// the result, and installs it atomically. On validation failure the
// stored configuration is left untouched.
func (m *Manager) Apply(u Update) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.current
	if u.ChunkSize != nil {
		next.ChunkSize = *u.ChunkSize
	}
	if u.ChunkOverlap != nil {
		next.ChunkOverlap = *u.ChunkOverlap
	}
	if u.EmbeddingModel != nil {
		next.EmbeddingModel = *u.EmbeddingModel
	}
	if u.LLMModel != nil {
		next.LLMModel = *u.LLMModel
	}
	if u.LLMTemperature != nil {
		next.LLMTemperature = *u.LLMTemperature
	}
	if u.LLMMaxTokens != nil {
		next.LLMMaxTokens = *u.LLMMaxTokens
	}
	if u.TopK != nil {
		next.TopK = *u.TopK
	}
	if u.ScoreThreshold != nil {
		next.ScoreThreshold = *u.ScoreThreshold
	}

	if err := Validate(next); err != nil {
		return m.current, err
	}

	m.current = next
	return next, nil
}
