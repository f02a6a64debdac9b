package vectorstore

import (
	"context"

	"doc-qa-be/pkg/store"
)

// Record is what a backend persists: a chunk plus its embedding.
type Record struct {
	Chunk  store.Chunk
	Vector []float32
}

// Backend is the storage layer under the Index. Backends have no
// native point-delete; the Index rebuilds them through All/Reset when
// a document is removed.
type Backend interface {
	// Add appends records to the store.
	Add(ctx context.Context, records []Record) error

	// Search returns the k most similar chunks, most similar first.
	// Scores are cosine similarity in the embedding's native range.
	Search(ctx context.Context, vector []float32, k int) ([]store.ScoredChunk, error)

	// All returns every stored record. Unbounded full scan; acceptable
	// for the single-process design this service targets.
	All(ctx context.Context) ([]Record, error)

	// Reset discards every stored record.
	Reset(ctx context.Context) error
}

// BackendFactory defers backend construction so the Index can
// initialize its store lazily on first use.
type BackendFactory func() (Backend, error)
