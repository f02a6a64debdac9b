package dto

import "doc-qa-be/internal/ragconfig"

// UpdateConfigRequest is a partial configuration update; absent fields
// stay unchanged. Range checks live in ragconfig.Validate so the
// overlap-below-size invariant is enforced in one place.
type UpdateConfigRequest struct {
	ChunkSize      *int     `json:"chunk_size"`
	ChunkOverlap   *int     `json:"chunk_overlap"`
	EmbeddingModel *string  `json:"embedding_model"`
	LLMModel       *string  `json:"llm_model"`
	LLMTemperature *float64 `json:"llm_temperature"`
	LLMMaxTokens   *int     `json:"llm_max_tokens"`
	TopK           *int     `json:"top_k"`
	ScoreThreshold *float64 `json:"score_threshold"`
}

func (r *UpdateConfigRequest) ToUpdate() ragconfig.Update {
	return ragconfig.Update{
		ChunkSize:      r.ChunkSize,
		ChunkOverlap:   r.ChunkOverlap,
		EmbeddingModel: r.EmbeddingModel,
		LLMModel:       r.LLMModel,
		LLMTemperature: r.LLMTemperature,
		LLMMaxTokens:   r.LLMMaxTokens,
		TopK:           r.TopK,
		ScoreThreshold: r.ScoreThreshold,
	}
}

type ConfigResponse struct {
	Config ragconfig.Settings `json:"config"`
}
