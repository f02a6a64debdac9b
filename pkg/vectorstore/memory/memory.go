// Package memory implements a brute-force in-memory vector backend.
// Similarity is cosine over the stored vectors; providers hand us
// unit-length vectors so the dot product would suffice, but the full
// formula keeps results correct for un-normalized inputs too.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"doc-qa-be/pkg/store"
	"doc-qa-be/pkg/vectorstore"
)

type Storage struct {
	mu      sync.RWMutex
	records []vectorstore.Record
}

var _ vectorstore.Backend = &Storage{}

func NewStorage() *Storage {
	return &Storage{}
}

func (s *Storage) Add(ctx context.Context, records []vectorstore.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

func (s *Storage) Search(ctx context.Context, vector []float32, k int) ([]store.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]store.ScoredChunk, 0, len(s.records))
	for _, rec := range s.records {
		scored = append(scored, store.ScoredChunk{
			Chunk: rec.Chunk,
			Score: cosineSimilarity(vector, rec.Vector),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

func (s *Storage) All(ctx context.Context) ([]vectorstore.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]vectorstore.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *Storage) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
