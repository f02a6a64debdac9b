package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"doc-qa-be/internal/dto"
	"doc-qa-be/internal/pkg/logger"
	"doc-qa-be/internal/ragconfig"
	"doc-qa-be/pkg/events"
	"doc-qa-be/pkg/ingest"
	pktNats "doc-qa-be/pkg/nats"
	"doc-qa-be/pkg/ragerr"
	"doc-qa-be/pkg/store"
	"doc-qa-be/pkg/textsplit"
	"doc-qa-be/pkg/vectorstore"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Upload(ctx context.Context, tempPath string) (*dto.UploadDocumentResponse, error)
	List(ctx context.Context) (*dto.ListDocumentsResponse, error)
	Delete(ctx context.Context, documentId string) error
	Status(ctx context.Context, documentId string) (*dto.IngestionStatusResponse, error)
	Stats(ctx context.Context) (*dto.StoreStatsResponse, error)
	StageUpload(filename string, data []byte) (string, func(), error)
}

type documentService struct {
	pipeline         *ingest.Pipeline
	index            *vectorstore.Index
	config           *ragconfig.Manager
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	log              logger.ILogger
	uploadDir        string
	maxFileSize      int64
}

func NewDocumentService(
	pipeline *ingest.Pipeline,
	index *vectorstore.Index,
	config *ragconfig.Manager,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	uploadDir string,
	maxFileSize int64,
) IDocumentService {
	return &documentService{
		pipeline:         pipeline,
		index:            index,
		config:           config,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		log:              log,
		uploadDir:        uploadDir,
		maxFileSize:      maxFileSize,
	}
}

// StageUpload writes an uploaded file into a scratch directory under
// its original name, so the loader can detect the type from the
// extension. The returned cleanup removes the scratch directory; the
// file is not kept after ingestion.
func (ds *documentService) StageUpload(filename string, data []byte) (string, func(), error) {
	dir := filepath.Join(ds.uploadDir, uuid.New().String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", nil, ragerr.Wrap(ragerr.KindDocumentProcessing, err, "failed to stage upload")
	}

	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		os.RemoveAll(dir)
		return "", nil, ragerr.Wrap(ragerr.KindDocumentProcessing, err, "failed to stage upload")
	}

	return path, func() { os.RemoveAll(dir) }, nil
}

func (ds *documentService) Upload(ctx context.Context, tempPath string) (*dto.UploadDocumentResponse, error) {
	settings := ds.config.Snapshot()
	cfg := textsplit.Config{
		ChunkSize:    settings.ChunkSize,
		ChunkOverlap: settings.ChunkOverlap,
	}

	result := ds.pipeline.IngestDocument(ctx, tempPath, cfg, ds.maxFileSize)
	if !result.Success {
		ds.log.Warn("document", "ingestion failed", map[string]interface{}{
			"document_id": result.DocumentID,
			"error":       result.Error,
		})
		return nil, ragerr.DocumentProcessing("%s", result.Error)
	}

	meta := ds.pipeline.GetDocumentMetadata(result.DocumentID)

	// Indexing is a separate step: publish and let the indexer embed the
	// chunks off the request path.
	payload, err := json.Marshal(IndexDocumentMessage{DocumentId: result.DocumentID})
	if err != nil {
		return nil, ragerr.Wrap(ragerr.KindDocumentProcessing, err, "failed to marshal index message")
	}
	if err := ds.publisherService.Publish(ctx, payload); err != nil {
		return nil, ragerr.Wrap(ragerr.KindVectorStore, err, "failed to schedule indexing")
	}

	ds.log.Info("document", "document ingested", map[string]interface{}{
		"document_id": result.DocumentID,
		"chunk_count": result.ChunkCount,
		"filename":    meta.Filename,
	})
	ds.publishEvent(ctx, events.TypeDocumentIngested, map[string]interface{}{
		"document_id": result.DocumentID,
		"filename":    meta.Filename,
		"chunk_count": result.ChunkCount,
	})

	return &dto.UploadDocumentResponse{
		DocumentId: result.DocumentID,
		ChunkCount: result.ChunkCount,
		Metadata:   *meta,
	}, nil
}

func (ds *documentService) List(ctx context.Context) (*dto.ListDocumentsResponse, error) {
	docs := ds.pipeline.GetAllDocuments()
	return &dto.ListDocumentsResponse{
		Documents: docs,
		Total:     len(docs),
	}, nil
}

// Delete removes a document from both the ingestion pipeline and the
// vector index. The index goes first: it is the step that can fail, and
// pipeline tracking must survive a failed delete so the caller can
// retry. Unknown to both means 404 for the caller.
func (ds *documentService) Delete(ctx context.Context, documentId string) error {
	knownToIndex, err := ds.index.DeleteDocument(ctx, documentId)
	if err != nil {
		return err
	}

	knownToPipeline := ds.pipeline.RemoveDocument(documentId)

	if !knownToPipeline && !knownToIndex {
		return ragerr.Retrieval("document not found: %s", documentId)
	}

	ds.log.Info("document", "document deleted", map[string]interface{}{
		"document_id": documentId,
	})
	ds.publishEvent(ctx, events.TypeDocumentDeleted, map[string]interface{}{
		"document_id": documentId,
	})
	return nil
}

func (ds *documentService) Status(ctx context.Context, documentId string) (*dto.IngestionStatusResponse, error) {
	status, err := ds.pipeline.GetIngestionStatus(documentId)
	if err != nil {
		return nil, err
	}
	return &dto.IngestionStatusResponse{
		DocumentId: status.DocumentID,
		Status:     status.Status,
		Progress:   status.Progress,
		Indexed:    status.Status == store.StatusCompleted && ds.index.HasDocument(documentId),
		Error:      status.Error,
	}, nil
}

func (ds *documentService) Stats(ctx context.Context) (*dto.StoreStatsResponse, error) {
	return dto.NewStoreStatsResponse(ds.index.GetStoreStats()), nil
}

func (ds *documentService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if ds.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	// Events are auxiliary; a publish failure never fails the request.
	if err := ds.eventPublisher.Publish(ctx, evt); err != nil {
		ds.log.Warn("document", "failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}
