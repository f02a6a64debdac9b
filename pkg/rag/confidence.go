package rag

import (
	"fmt"

	"doc-qa-be/pkg/store"
)

// CalculateConfidence derives a [0,1] reliability estimate from the
// retrieved chunks. With native similarity scores available it is the
// clamped mean; without them it falls back to a count-based heuristic:
// min(count/4, 1) * 0.8. The heuristic is a deliberate approximation,
// not a calibrated probability.
func CalculateConfidence(chunks []store.Chunk) float64 {
	if len(chunks) == 0 {
		return 0.0
	}

	var sum float64
	scoredCount := 0
	for _, chunk := range chunks {
		if score, ok := chunk.MetaFloat(store.MetaScore); ok {
			sum += score
			scoredCount++
		}
	}

	if scoredCount > 0 {
		mean := sum / float64(scoredCount)
		if mean < 0 {
			return 0
		}
		if mean > 1 {
			return 1
		}
		return mean
	}

	ratio := float64(len(chunks)) / 4.0
	if ratio > 1 {
		ratio = 1
	}
	return ratio * 0.8
}

// FormatSources converts retrieved chunks into answer attributions.
// Missing document ids become "unknown_{position}" and a missing score
// defaults to 1.0, i.e. unscored chunks are treated as maximally
// relevant rather than as missing data.
func FormatSources(chunks []store.Chunk) []Source {
	sources := make([]Source, len(chunks))
	for i, chunk := range chunks {
		documentId := chunk.DocumentID
		if documentId == "" {
			documentId = chunk.MetaString(store.MetaDocumentID)
		}
		if documentId == "" {
			documentId = fmt.Sprintf("unknown_%d", i)
		}

		score := 1.0
		if s, ok := chunk.MetaFloat(store.MetaScore); ok {
			score = s
		}

		sources[i] = Source{
			DocumentID:     documentId,
			Filename:       chunk.MetaString(store.MetaFilename),
			Content:        chunk.Content,
			ChunkIndex:     chunk.ChunkIndex,
			RelevanceScore: score,
		}
	}
	return sources
}
