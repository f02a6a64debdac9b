package dto

import (
	"doc-qa-be/pkg/store"
	"doc-qa-be/pkg/vectorstore"
)

type UploadDocumentResponse struct {
	DocumentId string                 `json:"document_id"`
	ChunkCount int                    `json:"chunk_count"`
	Metadata   store.DocumentMetadata `json:"metadata"`
}

type ListDocumentsResponse struct {
	Documents []store.DocumentMetadata `json:"documents"`
	Total     int                      `json:"total"`
}

type IngestionStatusResponse struct {
	DocumentId string `json:"document_id"`
	Status     string `json:"status"`
	Progress   int    `json:"progress"`
	// Indexed reports whether the document's chunks have reached the
	// vector index; ingestion completes before indexing does.
	Indexed bool   `json:"indexed"`
	Error   string `json:"error,omitempty"`
}

type StoreStatsResponse struct {
	TotalDocuments int      `json:"total_documents"`
	TotalChunks    int      `json:"total_chunks"`
	DocumentIds    []string `json:"document_ids"`
}

func NewStoreStatsResponse(stats vectorstore.StoreStats) *StoreStatsResponse {
	return &StoreStatsResponse{
		TotalDocuments: stats.TotalDocuments,
		TotalChunks:    stats.TotalChunks,
		DocumentIds:    stats.DocumentIds,
	}
}
