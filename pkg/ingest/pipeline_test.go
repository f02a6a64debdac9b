package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"doc-qa-be/pkg/docloader"
	"doc-qa-be/pkg/ingest"
	"doc-qa-be/pkg/ragerr"
	"doc-qa-be/pkg/store"
	"doc-qa-be/pkg/textsplit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestPipeline() *ingest.Pipeline {
	return ingest.NewPipeline(docloader.New())
}

func TestIngestSmallTextDocument(t *testing.T) {
	p := newTestPipeline()
	path := writeTempFile(t, "short.txt", "This document is well below the chunk size.")
	cfg := textsplit.Config{ChunkSize: 1000, ChunkOverlap: 200}

	result := p.IngestDocument(context.Background(), path, cfg, 0)
	require.True(t, result.Success, "ingest failed: %s", result.Error)
	assert.Equal(t, 1, result.ChunkCount)

	status, err := p.GetIngestionStatus(result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, status.Status)
	assert.Equal(t, 100, status.Progress)

	meta := p.GetDocumentMetadata(result.DocumentID)
	require.NotNil(t, meta)
	assert.Equal(t, "short.txt", meta.Filename)
	assert.Equal(t, store.FileTypeTXT, meta.FileType)
	assert.Equal(t, 1, meta.ChunkCount)

	chunks := p.GetDocumentChunks(result.DocumentID)
	require.Len(t, chunks, 1)
	assert.Equal(t, result.DocumentID, chunks[0].DocumentID)
}

func TestIngestLargeTextDocument(t *testing.T) {
	p := newTestPipeline()
	text := strings.Repeat("All work and no play makes for dull documents. ", 100)
	path := writeTempFile(t, "long.txt", text)
	cfg := textsplit.Config{ChunkSize: 500, ChunkOverlap: 100}

	result := p.IngestDocument(context.Background(), path, cfg, 0)
	require.True(t, result.Success, "ingest failed: %s", result.Error)
	assert.Greater(t, result.ChunkCount, 1)

	chunks := p.GetDocumentChunks(result.DocumentID)
	require.Len(t, chunks, result.ChunkCount)
	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, result.ChunkCount, c.TotalChunks)
		assert.Equal(t, "long.txt", c.MetaString(store.MetaFilename))
	}
}

func TestIngestMissingFile(t *testing.T) {
	p := newTestPipeline()
	cfg := textsplit.Config{ChunkSize: 1000, ChunkOverlap: 200}

	result := p.IngestDocument(context.Background(), "/nonexistent/file.txt", cfg, 0)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)

	status, err := p.GetIngestionStatus(result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusFailed, status.Status)
	assert.NotEmpty(t, status.Error)
}

func TestIngestEmptyFile(t *testing.T) {
	p := newTestPipeline()
	path := writeTempFile(t, "empty.txt", "")
	cfg := textsplit.Config{ChunkSize: 1000, ChunkOverlap: 200}

	result := p.IngestDocument(context.Background(), path, cfg, 0)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "empty")
}

func TestIngestOversizedFile(t *testing.T) {
	p := newTestPipeline()
	path := writeTempFile(t, "big.txt", strings.Repeat("x", 2048))
	cfg := textsplit.Config{ChunkSize: 1000, ChunkOverlap: 200}

	result := p.IngestDocument(context.Background(), path, cfg, 1024)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "maximum size")
}

func TestIngestUnsupportedFileType(t *testing.T) {
	p := newTestPipeline()
	path := writeTempFile(t, "image.png", "not really an image")
	cfg := textsplit.Config{ChunkSize: 1000, ChunkOverlap: 200}

	result := p.IngestDocument(context.Background(), path, cfg, 0)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unsupported file type")
}

func TestIngestInvalidChunkConfig(t *testing.T) {
	p := newTestPipeline()
	path := writeTempFile(t, "doc.txt", "valid content")
	cfg := textsplit.Config{ChunkSize: 100, ChunkOverlap: 100}

	result := p.IngestDocument(context.Background(), path, cfg, 0)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "overlap")
}

func TestGetIngestionStatusUnknown(t *testing.T) {
	p := newTestPipeline()

	_, err := p.GetIngestionStatus("no-such-doc")
	require.Error(t, err)
	assert.True(t, ragerr.IsKind(err, ragerr.KindDocumentProcessing))
}

func TestGetAllDocumentsSkipsFailed(t *testing.T) {
	p := newTestPipeline()
	cfg := textsplit.Config{ChunkSize: 1000, ChunkOverlap: 200}

	ok := p.IngestDocument(context.Background(), writeTempFile(t, "good.txt", "fine content"), cfg, 0)
	require.True(t, ok.Success)
	bad := p.IngestDocument(context.Background(), "/nonexistent/file.txt", cfg, 0)
	require.False(t, bad.Success)

	docs := p.GetAllDocuments()
	require.Len(t, docs, 1)
	assert.Equal(t, ok.DocumentID, docs[0].DocumentID)
}

func TestRemoveDocument(t *testing.T) {
	p := newTestPipeline()
	cfg := textsplit.Config{ChunkSize: 1000, ChunkOverlap: 200}

	result := p.IngestDocument(context.Background(), writeTempFile(t, "doc.txt", "content"), cfg, 0)
	require.True(t, result.Success)

	assert.True(t, p.RemoveDocument(result.DocumentID))
	assert.False(t, p.RemoveDocument(result.DocumentID))
	assert.Nil(t, p.GetDocumentMetadata(result.DocumentID))
}
