// Package pgvec implements the pgvector-backed vector backend, selected
// with VECTOR_STORE_TYPE=pgvector. It keeps the same contract as the
// in-memory backend, including the full-scan All used for rebuilds.
package pgvec

import (
	"context"
	"fmt"
	"time"

	"doc-qa-be/pkg/store"
	"doc-qa-be/pkg/vectorstore"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type chunkRow struct {
	Id          uuid.UUID          `gorm:"type:uuid;primaryKey"`
	DocumentId  string             `gorm:"index;not null"`
	ChunkIndex  int                `gorm:"not null"`
	TotalChunks int                `gorm:"not null"`
	Content     string             `gorm:"type:text;not null"`
	Metadata    datatypes.JSONMap  `gorm:"type:jsonb"`
	Embedding   pgvector.Vector    `gorm:"type:vector"`
	CreatedAt   time.Time
}

func (chunkRow) TableName() string {
	return "document_chunks"
}

type Storage struct {
	db *gorm.DB
}

var _ vectorstore.Backend = &Storage{}

// NewStorage prepares the pgvector extension and the chunk table. The
// vector column is dimensioned to the embedding model in use.
func NewStorage(db *gorm.DB, dimension int) (*Storage, error) {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("enable pgvector extension: %w", err)
	}

	createTable := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS document_chunks (
		id uuid PRIMARY KEY,
		document_id text NOT NULL,
		chunk_index int NOT NULL,
		total_chunks int NOT NULL,
		content text NOT NULL,
		metadata jsonb,
		embedding vector(%d),
		created_at timestamptz
	)`, dimension)
	if err := db.Exec(createTable).Error; err != nil {
		return nil, fmt.Errorf("create document_chunks table: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_document_chunks_document_id ON document_chunks (document_id)").Error; err != nil {
		return nil, fmt.Errorf("create document_chunks index: %w", err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Add(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]*chunkRow, len(records))
	for i, rec := range records {
		rows[i] = &chunkRow{
			Id:          uuid.New(),
			DocumentId:  rec.Chunk.DocumentID,
			ChunkIndex:  rec.Chunk.ChunkIndex,
			TotalChunks: rec.Chunk.TotalChunks,
			Content:     rec.Chunk.Content,
			Metadata:    datatypes.JSONMap(rec.Chunk.Metadata),
			Embedding:   pgvector.NewVector(rec.Vector),
			CreatedAt:   time.Now(),
		}
	}
	return s.db.WithContext(ctx).Create(rows).Error
}

func (s *Storage) Search(ctx context.Context, vector []float32, k int) ([]store.ScoredChunk, error) {
	// Cosine distance in pgvector is 1 - cosine_similarity, so
	// 1 - (embedding <=> query) recovers the similarity.
	type result struct {
		chunkRow
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(vector)
	err := s.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Order("similarity DESC").
		Limit(k).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]store.ScoredChunk, len(results))
	for i, res := range results {
		scored[i] = store.ScoredChunk{
			Chunk: rowToChunk(&res.chunkRow),
			Score: res.Similarity,
		}
	}
	return scored, nil
}

func (s *Storage) All(ctx context.Context) ([]vectorstore.Record, error) {
	var rows []*chunkRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]vectorstore.Record, len(rows))
	for i, row := range rows {
		records[i] = vectorstore.Record{
			Chunk:  rowToChunk(row),
			Vector: row.Embedding.Slice(),
		}
	}
	return records, nil
}

func (s *Storage) Reset(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec("DELETE FROM document_chunks").Error
}

func rowToChunk(row *chunkRow) store.Chunk {
	return store.Chunk{
		Content:     row.Content,
		ChunkIndex:  row.ChunkIndex,
		TotalChunks: row.TotalChunks,
		DocumentID:  row.DocumentId,
		Metadata:    map[string]interface{}(row.Metadata),
	}
}
