package store

import "time"

// Document processing states. Terminal states are final; a failed
// document has to be re-uploaded, there is no retry.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// File types accepted by the loader.
const (
	FileTypePDF  = "pdf"
	FileTypeTXT  = "txt"
	FileTypeDOCX = "docx"
)

// Metadata keys shared between the chunker, the vector index and the
// query engine.
const (
	MetaDocumentID = "document_id"
	MetaFilename   = "filename"
	MetaFileType   = "file_type"
	MetaFileSize   = "file_size"
	MetaPageCount  = "page_count"
	MetaScore      = "score"
)

// Chunk is a bounded segment of a document's extracted text, the unit
// of embedding and retrieval. Immutable once created.
type Chunk struct {
	Content     string                 `json:"content"`
	ChunkIndex  int                    `json:"chunk_index"`
	TotalChunks int                    `json:"total_chunks"`
	DocumentID  string                 `json:"document_id"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// ScoredChunk pairs a retrieved chunk with its cosine similarity,
// higher meaning more similar.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// DocumentMetadata describes a fully ingested document.
type DocumentMetadata struct {
	DocumentID string    `json:"document_id"`
	Filename   string    `json:"filename"`
	FileType   string    `json:"file_type"`
	UploadDate time.Time `json:"upload_date"`
	FileSize   int64     `json:"file_size"`
	ChunkCount int       `json:"chunk_count"`
	PageCount  int       `json:"page_count,omitempty"`
}

// MetaString returns a string metadata value, or "" when absent or of
// another type.
func (c Chunk) MetaString(key string) string {
	if c.Metadata == nil {
		return ""
	}
	if v, ok := c.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// MetaFloat returns a numeric metadata value and whether it was present.
// JSON round-trips turn numbers into float64, so both are accepted.
func (c Chunk) MetaFloat(key string) (float64, bool) {
	if c.Metadata == nil {
		return 0, false
	}
	switch v := c.Metadata[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}
