package dto

import (
	"doc-qa-be/pkg/rag"
	"doc-qa-be/pkg/rag/history"
)

type AskRequest struct {
	Question string         `json:"question" validate:"required"`
	Config   *rag.Overrides `json:"config,omitempty"`
}

type ChatRequest struct {
	Question string            `json:"question" validate:"required"`
	History  []history.Message `json:"history" validate:"max=50,dive"`
	Config   *rag.Overrides    `json:"config,omitempty"`
}

type SourceDTO struct {
	DocumentId     string  `json:"document_id"`
	Filename       string  `json:"filename"`
	Content        string  `json:"content"`
	ChunkIndex     int     `json:"chunk_index"`
	RelevanceScore float64 `json:"relevance_score"`
}

type QAResponse struct {
	Answer         string      `json:"answer"`
	Sources        []SourceDTO `json:"sources"`
	Confidence     float64     `json:"confidence"`
	ProcessingTime int64       `json:"processing_time"`
}

func NewQAResponse(answer *rag.Answer) *QAResponse {
	sources := make([]SourceDTO, len(answer.Sources))
	for i, s := range answer.Sources {
		sources[i] = SourceDTO{
			DocumentId:     s.DocumentID,
			Filename:       s.Filename,
			Content:        s.Content,
			ChunkIndex:     s.ChunkIndex,
			RelevanceScore: s.RelevanceScore,
		}
	}
	return &QAResponse{
		Answer:         answer.Answer,
		Sources:        sources,
		Confidence:     answer.Confidence,
		ProcessingTime: answer.ProcessingTime,
	}
}
