package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"doc-qa-be/internal/ragconfig"
	"doc-qa-be/internal/service"
	"doc-qa-be/pkg/docloader"
	"doc-qa-be/pkg/ingest"
	"doc-qa-be/pkg/ragerr"
	"doc-qa-be/pkg/store"
	"doc-qa-be/pkg/vectorstore"
	"doc-qa-be/pkg/vectorstore/memory"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faultyBackend wraps the in-memory storage and fails full scans on
// demand, which makes the index's delete-time rebuild fail.
type faultyBackend struct {
	vectorstore.Backend
	failScans atomic.Bool
}

func (f *faultyBackend) All(ctx context.Context) ([]vectorstore.Record, error) {
	if f.failScans.Load() {
		return nil, errors.New("store scan failed")
	}
	return f.Backend.All(ctx)
}

func newDocumentFixture(t *testing.T) (service.IDocumentService, *vectorstore.Index, *gochannel.GoChannel) {
	t.Helper()
	docs, index, pubSub, _ := newDocumentFixtureWithBackend(t)
	return docs, index, pubSub
}

func newDocumentFixtureWithBackend(t *testing.T) (service.IDocumentService, *vectorstore.Index, *gochannel.GoChannel, *faultyBackend) {
	t.Helper()

	backend := &faultyBackend{Backend: memory.NewStorage()}
	pipeline := ingest.NewPipeline(docloader.New())
	index := vectorstore.NewIndex(staticEmbedder{}, func() (vectorstore.Backend, error) {
		return backend, nil
	})
	manager, err := ragconfig.NewManager(ragconfig.Settings{
		ChunkSize:       1000,
		ChunkOverlap:    200,
		EmbeddingModel:  "nomic-embed-text",
		VectorStoreType: "memory",
		LLMModel:        "llama3",
		LLMTemperature:  0.7,
		LLMMaxTokens:    1000,
		TopK:            4,
	})
	require.NoError(t, err)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	publisher := service.NewPublisherService(testTopic, pubSub)
	indexer := service.NewIndexerService(pubSub, testTopic, pipeline, index, nil, nopLogger{})
	require.NoError(t, indexer.Consume(context.Background()))

	docs := service.NewDocumentService(pipeline, index, manager, publisher, nil, nopLogger{}, t.TempDir(), 1024*1024)
	return docs, index, pubSub, backend
}

func TestDocumentUploadFlow(t *testing.T) {
	docs, index, pubSub := newDocumentFixture(t)
	defer pubSub.Close()

	path, cleanup, err := docs.StageUpload("report.txt", []byte("A short report about nothing in particular."))
	require.NoError(t, err)
	defer cleanup()

	res, err := docs.Upload(context.Background(), path)
	require.NoError(t, err)
	assert.NotEmpty(t, res.DocumentId)
	assert.Equal(t, 1, res.ChunkCount)
	assert.Equal(t, "report.txt", res.Metadata.Filename)

	// The indexer picks the document up asynchronously.
	assert.Eventually(t, func() bool {
		return index.HasDocument(res.DocumentId)
	}, 2*time.Second, 10*time.Millisecond)

	status, err := docs.Status(context.Background(), res.DocumentId)
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, status.Status)
	assert.Equal(t, 100, status.Progress)
	assert.True(t, status.Indexed)

	list, err := docs.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	stats, err := docs.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalDocuments)
}

func TestDocumentUploadRejectsBadFile(t *testing.T) {
	docs, _, pubSub := newDocumentFixture(t)
	defer pubSub.Close()

	path, cleanup, err := docs.StageUpload("empty.txt", nil)
	require.NoError(t, err)
	defer cleanup()

	_, err = docs.Upload(context.Background(), path)
	require.Error(t, err)
	assert.True(t, ragerr.IsKind(err, ragerr.KindDocumentProcessing))
}

func TestDocumentDelete(t *testing.T) {
	docs, index, pubSub := newDocumentFixture(t)
	defer pubSub.Close()

	path, cleanup, err := docs.StageUpload("doc.txt", []byte("content to be removed"))
	require.NoError(t, err)
	defer cleanup()

	res, err := docs.Upload(context.Background(), path)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return index.HasDocument(res.DocumentId)
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, docs.Delete(context.Background(), res.DocumentId))
	assert.False(t, index.HasDocument(res.DocumentId))

	list, err := docs.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, list.Total)
}

func TestDocumentDeleteKeepsPipelineOnIndexFailure(t *testing.T) {
	docs, index, pubSub, backend := newDocumentFixtureWithBackend(t)
	defer pubSub.Close()

	path, cleanup, err := docs.StageUpload("doc.txt", []byte("content that refuses to go"))
	require.NoError(t, err)
	defer cleanup()

	res, err := docs.Upload(context.Background(), path)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return index.HasDocument(res.DocumentId)
	}, 2*time.Second, 10*time.Millisecond)

	backend.failScans.Store(true)
	err = docs.Delete(context.Background(), res.DocumentId)
	require.Error(t, err)
	assert.True(t, ragerr.IsKind(err, ragerr.KindVectorStore))

	// The failed delete must leave the document tracked so the caller
	// can retry instead of losing track of half-deleted state.
	list, err := docs.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	backend.failScans.Store(false)
	require.NoError(t, docs.Delete(context.Background(), res.DocumentId))
	assert.False(t, index.HasDocument(res.DocumentId))
}

func TestDocumentDeleteUnknown(t *testing.T) {
	docs, _, pubSub := newDocumentFixture(t)
	defer pubSub.Close()

	err := docs.Delete(context.Background(), "no-such-document")
	require.Error(t, err)
	assert.True(t, ragerr.IsKind(err, ragerr.KindRetrieval))
}

func TestStageUploadKeepsOriginalName(t *testing.T) {
	docs, _, pubSub := newDocumentFixture(t)
	defer pubSub.Close()

	path, cleanup, err := docs.StageUpload("../../../escape.txt", []byte("content"))
	require.NoError(t, err)
	defer cleanup()

	// Path traversal in the client-supplied name is neutralized.
	assert.Equal(t, "escape.txt", filepath.Base(path))
	_, err = os.Stat(path)
	require.NoError(t, err)
}
