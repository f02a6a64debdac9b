// Package ingest runs the load→validate→chunk pipeline for one
// document and tracks per-document state. Errors never escape
// IngestDocument: every failure is converted into a failed result so
// the transport layer decides how to surface it.
package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"doc-qa-be/pkg/docloader"
	"doc-qa-be/pkg/ragerr"
	"doc-qa-be/pkg/store"
	"doc-qa-be/pkg/textsplit"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// IngestResult is the outcome of one ingestion attempt.
type IngestResult struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"document_id"`
	ChunkCount int    `json:"chunk_count"`
	Error      string `json:"error,omitempty"`
}

// Status is a point-in-time view of a document's ingestion state.
// Progress runs 0-100; completed and failed are terminal.
type Status struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	Progress   int    `json:"progress"`
	Error      string `json:"error,omitempty"`
}

// record is the tracked state for one document. Records are replaced
// wholesale on every update so concurrent readers never observe a
// partially written entry.
type record struct {
	status   Status
	metadata *store.DocumentMetadata
	chunks   []store.Chunk
}

// Pipeline ingests documents and keeps their tracking state in a
// concurrent-safe table. State lives for the process lifetime only.
type Pipeline struct {
	loader docloader.Loader
	table  *cache.Cache
}

func NewPipeline(loader docloader.Loader) *Pipeline {
	return &Pipeline{
		loader: loader,
		table:  cache.New(cache.NoExpiration, 0),
	}
}

// IngestDocument loads, validates and chunks one file. The resulting
// chunks stay in the pipeline's own state; indexing them is a separate
// step driven by the caller.
func (p *Pipeline) IngestDocument(ctx context.Context, filePath string, cfg textsplit.Config, maxFileSize int64) *IngestResult {
	documentId := uuid.New().String()
	p.setProgress(documentId, 0)

	if err := p.validateFile(filePath, maxFileSize); err != nil {
		return p.fail(documentId, err)
	}
	p.setProgress(documentId, 10)

	if err := textsplit.ValidateConfig(cfg); err != nil {
		return p.fail(documentId, err)
	}

	loaded, err := p.loader.Load(filePath)
	if err != nil {
		return p.fail(documentId, err)
	}
	p.setProgress(documentId, 40)

	meta := map[string]interface{}{
		store.MetaDocumentID: documentId,
		store.MetaFilename:   loaded.Filename,
		store.MetaFileType:   loaded.FileType,
		store.MetaFileSize:   loaded.FileSize,
	}
	if loaded.PageCount > 0 {
		meta[store.MetaPageCount] = loaded.PageCount
	}

	chunks, err := textsplit.Split(loaded.Content, cfg, meta)
	if err != nil {
		return p.fail(documentId, err)
	}
	p.setProgress(documentId, 70)

	docMeta := &store.DocumentMetadata{
		DocumentID: documentId,
		Filename:   loaded.Filename,
		FileType:   loaded.FileType,
		UploadDate: time.Now(),
		FileSize:   loaded.FileSize,
		ChunkCount: len(chunks),
		PageCount:  loaded.PageCount,
	}
	p.setProgress(documentId, 90)

	p.table.Set(documentId, &record{
		status: Status{
			DocumentID: documentId,
			Status:     store.StatusCompleted,
			Progress:   100,
		},
		metadata: docMeta,
		chunks:   chunks,
	}, cache.NoExpiration)

	return &IngestResult{
		Success:    true,
		DocumentID: documentId,
		ChunkCount: len(chunks),
	}
}

// GetIngestionStatus reports the tracked state of a document.
func (p *Pipeline) GetIngestionStatus(documentId string) (*Status, error) {
	rec, ok := p.get(documentId)
	if !ok {
		return nil, ragerr.DocumentProcessing("unknown document: %s", documentId)
	}
	status := rec.status
	return &status, nil
}

// GetDocumentMetadata returns metadata for a document, nil if unknown
// or not yet completed.
func (p *Pipeline) GetDocumentMetadata(documentId string) *store.DocumentMetadata {
	rec, ok := p.get(documentId)
	if !ok {
		return nil
	}
	return rec.metadata
}

// GetDocumentChunks returns the chunks produced for a document, nil if
// unknown.
func (p *Pipeline) GetDocumentChunks(documentId string) []store.Chunk {
	rec, ok := p.get(documentId)
	if !ok {
		return nil
	}
	return rec.chunks
}

// GetAllDocuments lists metadata for completed documents only, newest
// upload first.
func (p *Pipeline) GetAllDocuments() []store.DocumentMetadata {
	items := p.table.Items()
	docs := make([]store.DocumentMetadata, 0, len(items))
	for _, item := range items {
		rec := item.Object.(*record)
		if rec.status.Status == store.StatusCompleted && rec.metadata != nil {
			docs = append(docs, *rec.metadata)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadDate.After(docs[j].UploadDate)
	})
	return docs
}

// RemoveDocument drops tracking state and reports whether it existed.
func (p *Pipeline) RemoveDocument(documentId string) bool {
	_, existed := p.get(documentId)
	p.table.Delete(documentId)
	return existed
}

func (p *Pipeline) validateFile(filePath string, maxFileSize int64) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return ragerr.Wrap(ragerr.KindDocumentProcessing, err, "file not found")
	}
	if info.Size() == 0 {
		return ragerr.DocumentProcessing("file is empty: %s", filepath.Base(filePath))
	}
	if maxFileSize > 0 && info.Size() > maxFileSize {
		return ragerr.DocumentProcessing("file exceeds maximum size of %d bytes", maxFileSize)
	}
	if _, err := p.loader.DetectType(filePath); err != nil {
		return err
	}
	return nil
}

func (p *Pipeline) setProgress(documentId string, progress int) {
	rec, ok := p.get(documentId)
	next := &record{
		status: Status{
			DocumentID: documentId,
			Status:     store.StatusProcessing,
			Progress:   progress,
		},
	}
	if ok {
		next.metadata = rec.metadata
		next.chunks = rec.chunks
	}
	p.table.Set(documentId, next, cache.NoExpiration)
}

func (p *Pipeline) fail(documentId string, err error) *IngestResult {
	rec, _ := p.get(documentId)
	progress := 0
	if rec != nil {
		progress = rec.status.Progress
	}
	p.table.Set(documentId, &record{
		status: Status{
			DocumentID: documentId,
			Status:     store.StatusFailed,
			Progress:   progress,
			Error:      err.Error(),
		},
	}, cache.NoExpiration)

	return &IngestResult{
		Success:    false,
		DocumentID: documentId,
		Error:      err.Error(),
	}
}

func (p *Pipeline) get(documentId string) (*record, bool) {
	if x, found := p.table.Get(documentId); found {
		return x.(*record), true
	}
	return nil, false
}
