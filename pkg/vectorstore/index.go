package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"doc-qa-be/pkg/embedding"
	"doc-qa-be/pkg/ragerr"
	"doc-qa-be/pkg/store"
)

// StoreStats summarizes the index registry.
type StoreStats struct {
	TotalDocuments int      `json:"total_documents"`
	TotalChunks    int      `json:"total_chunks"`
	DocumentIds    []string `json:"document_ids"`
}

// Index stores chunk embeddings and answers similarity queries. It
// owns the document registry: the mapping from document id to the
// ordered chunk ids created for it, used for existence checks, chunk
// counting and deletion.
//
// All mutating operations (AddDocuments, DeleteDocument, Clear) are
// serialized through a single mutex; the delete-and-rebuild cycle must
// never interleave with a concurrent add.
type Index struct {
	mu         sync.RWMutex
	initMu     sync.Mutex
	embedder   embedding.EmbeddingProvider
	newBackend BackendFactory
	backend    Backend
	registry   map[string][]string
}

func NewIndex(embedder embedding.EmbeddingProvider, newBackend BackendFactory) *Index {
	return &Index{
		embedder:   embedder,
		newBackend: newBackend,
		registry:   make(map[string][]string),
	}
}

// ensureBackend constructs the underlying store on first use. Guarded
// by its own mutex because read-locked callers may race on first touch.
// A failed construction is retried on the next call rather than cached.
func (ix *Index) ensureBackend() (Backend, error) {
	ix.initMu.Lock()
	defer ix.initMu.Unlock()

	if ix.backend != nil {
		return ix.backend, nil
	}
	b, err := ix.newBackend()
	if err != nil {
		return nil, ragerr.Wrap(ragerr.KindVectorStore, err, "failed to initialize vector store")
	}
	ix.backend = b
	return b, nil
}

// AddDocuments embeds the given chunks and appends them to the index,
// returning the synthetic chunk ids minted for registry bookkeeping.
// An empty input is a no-op. Re-adding a document does not deduplicate;
// delete it first.
func (ix *Index) AddDocuments(ctx context.Context, chunks []store.Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return []string{}, nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	backend, err := ix.ensureBackend()
	if err != nil {
		return nil, err
	}

	records := make([]Record, len(chunks))
	for i, chunk := range chunks {
		res, err := ix.embedder.Generate(chunk.Content, embedding.TaskRetrievalDocument)
		if err != nil {
			return nil, ragerr.Wrap(ragerr.KindVectorStore, err, "embedding failed")
		}
		records[i] = Record{Chunk: chunk, Vector: res.Embedding.Values}
	}

	if err := backend.Add(ctx, records); err != nil {
		return nil, ragerr.Wrap(ragerr.KindVectorStore, err, "failed to store chunks")
	}

	now := time.Now().UnixMilli()
	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		id := fmt.Sprintf("%s_chunk_%d_%d", chunk.DocumentID, i, now)
		ids[i] = id
		ix.registry[chunk.DocumentID] = append(ix.registry[chunk.DocumentID], id)
	}
	return ids, nil
}

// SimilaritySearch returns the k most similar chunks, most similar first.
func (ix *Index) SimilaritySearch(ctx context.Context, query string, k int) ([]store.Chunk, error) {
	scored, err := ix.SimilaritySearchWithScore(ctx, query, k)
	if err != nil {
		return nil, err
	}
	chunks := make([]store.Chunk, len(scored))
	for i, sc := range scored {
		chunks[i] = sc.Chunk
	}
	return chunks, nil
}

// SimilaritySearchWithScore returns the k most similar chunks paired
// with their cosine similarity. The score is also copied into each
// chunk's metadata so downstream consumers see it without carrying the
// pair around.
func (ix *Index) SimilaritySearchWithScore(ctx context.Context, query string, k int) ([]store.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ragerr.VectorStore("search query is empty")
	}
	if k < 1 {
		return nil, ragerr.VectorStore("k must be at least 1, got %d", k)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	backend, err := ix.ensureBackend()
	if err != nil {
		return nil, err
	}

	res, err := ix.embedder.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.KindVectorStore, err, "embedding failed")
	}

	scored, err := backend.Search(ctx, res.Embedding.Values, k)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.KindVectorStore, err, "similarity search failed")
	}

	out := make([]store.ScoredChunk, len(scored))
	for i, sc := range scored {
		meta := make(map[string]interface{}, len(sc.Chunk.Metadata)+1)
		for key, v := range sc.Chunk.Metadata {
			meta[key] = v
		}
		meta[store.MetaScore] = sc.Score
		sc.Chunk.Metadata = meta
		out[i] = sc
	}
	return out, nil
}

// SearchWithinDocument runs a global search over-fetching k*3
// candidates, then filters to the target document and truncates to k.
// Heuristic: the global top k*3 may not contain the document's true
// top k, so fewer than k results are possible even when the document
// has more chunks.
func (ix *Index) SearchWithinDocument(ctx context.Context, documentId, query string, k int) ([]store.Chunk, error) {
	candidates, err := ix.SimilaritySearch(ctx, query, k*3)
	if err != nil {
		return nil, err
	}

	matched := make([]store.Chunk, 0, k)
	for _, chunk := range candidates {
		if chunk.DocumentID == documentId {
			matched = append(matched, chunk)
			if len(matched) == k {
				break
			}
		}
	}
	return matched, nil
}

// DeleteDocument removes every chunk of a document. Returns false when
// the document is unknown to the registry. The backend has no point
// delete, so the store is rebuilt from a full scan minus the document.
func (ix *Index) DeleteDocument(ctx context.Context, documentId string) (bool, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, ok := ix.registry[documentId]; !ok {
		return false, nil
	}

	backend, err := ix.ensureBackend()
	if err != nil {
		return false, err
	}

	all, err := backend.All(ctx)
	if err != nil {
		return false, ragerr.Wrap(ragerr.KindVectorStore, err, "failed to scan store for rebuild")
	}

	remaining := make([]Record, 0, len(all))
	for _, rec := range all {
		if rec.Chunk.DocumentID != documentId {
			remaining = append(remaining, rec)
		}
	}

	if err := backend.Reset(ctx); err != nil {
		return false, ragerr.Wrap(ragerr.KindVectorStore, err, "failed to reset store")
	}
	if len(remaining) > 0 {
		if err := backend.Add(ctx, remaining); err != nil {
			return false, ragerr.Wrap(ragerr.KindVectorStore, err, "failed to rebuild store")
		}
	}

	delete(ix.registry, documentId)
	return true, nil
}

// GetDocumentMetadata returns all chunks stored for a document in
// chunk order, or an empty slice when the document is unknown.
func (ix *Index) GetDocumentMetadata(ctx context.Context, documentId string) ([]store.Chunk, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	backend, err := ix.ensureBackend()
	if err != nil {
		return nil, err
	}

	all, err := backend.All(ctx)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.KindVectorStore, err, "failed to scan store")
	}

	chunks := make([]store.Chunk, 0)
	for _, rec := range all {
		if rec.Chunk.DocumentID == documentId {
			chunks = append(chunks, rec.Chunk)
		}
	}
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})
	return chunks, nil
}

// GetStoreStats reports registry-derived counts. Pure bookkeeping, no
// backend access.
func (ix *Index) GetStoreStats() StoreStats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	ids := make([]string, 0, len(ix.registry))
	total := 0
	for id, chunkIds := range ix.registry {
		ids = append(ids, id)
		total += len(chunkIds)
	}
	sort.Strings(ids)

	return StoreStats{
		TotalDocuments: len(ix.registry),
		TotalChunks:    total,
		DocumentIds:    ids,
	}
}

func (ix *Index) HasDocument(documentId string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.registry[documentId]
	return ok
}

func (ix *Index) GetDocumentChunkCount(documentId string) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.registry[documentId])
}

// ClearStore discards all embeddings and the registry.
func (ix *Index) ClearStore(ctx context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	backend, err := ix.ensureBackend()
	if err != nil {
		return err
	}
	if err := backend.Reset(ctx); err != nil {
		return ragerr.Wrap(ragerr.KindVectorStore, err, "failed to clear store")
	}
	ix.registry = make(map[string][]string)
	return nil
}
