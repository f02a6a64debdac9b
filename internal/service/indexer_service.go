package service

import (
	"context"
	"encoding/json"
	"time"

	"doc-qa-be/internal/pkg/logger"
	"doc-qa-be/pkg/events"
	"doc-qa-be/pkg/ingest"
	pktNats "doc-qa-be/pkg/nats"
	"doc-qa-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IndexDocumentMessage asks the indexer to move a document's chunks
// from the ingestion pipeline into the vector index.
type IndexDocumentMessage struct {
	DocumentId string `json:"document_id"`
}

type IIndexerService interface {
	Consume(ctx context.Context) error
}

// indexerService subscribes to the index topic and embeds completed
// documents into the vector index. Indexing runs outside the upload
// request so slow embedding backends never block the HTTP response.
type indexerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	pipeline       *ingest.Pipeline
	index          *vectorstore.Index
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
}

func NewIndexerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	pipeline *ingest.Pipeline,
	index *vectorstore.Index,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IIndexerService {
	return &indexerService{
		pubSub:         pubSub,
		topicName:      topicName,
		pipeline:       pipeline,
		index:          index,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (is *indexerService) Consume(ctx context.Context) error {
	messages, err := is.pubSub.Subscribe(ctx, is.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			is.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (is *indexerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload IndexDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		is.log.Error("indexer", "failed to unmarshal index message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	chunks := is.pipeline.GetDocumentChunks(payload.DocumentId)
	if chunks == nil {
		// Document deleted (or never ingested) between publish and consume.
		is.log.Warn("indexer", "no chunks found for document", map[string]interface{}{"document_id": payload.DocumentId})
		msg.Ack()
		return
	}

	ids, err := is.index.AddDocuments(ctx, chunks)
	if err != nil {
		is.log.Error("indexer", "failed to index document", map[string]interface{}{
			"document_id": payload.DocumentId,
			"error":       err.Error(),
		})
		msg.Nack() // Nack for retriable errors
		return
	}

	is.log.Info("indexer", "document indexed", map[string]interface{}{
		"document_id": payload.DocumentId,
		"chunk_count": len(ids),
	})

	if is.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: events.TypeDocumentIndexed,
			Data: map[string]interface{}{
				"document_id": payload.DocumentId,
				"chunk_count": len(ids),
			},
			OccurredAt: time.Now(),
		}
		if err := is.eventPublisher.Publish(ctx, evt); err != nil {
			is.log.Warn("indexer", "failed to publish DOCUMENT_INDEXED event", map[string]interface{}{"error": err.Error()})
		}
	}

	msg.Ack()
}
