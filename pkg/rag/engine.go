// Package rag implements the two query protocols of the service: a
// stateless ask and a history-aware conversational ask. Both share the
// same retrieve-then-generate shape and post-processing (sources,
// confidence, timing).
package rag

import (
	"context"
	"strings"
	"sync"
	"time"

	"doc-qa-be/internal/ragconfig"
	"doc-qa-be/pkg/llm"
	"doc-qa-be/pkg/rag/history"
	"doc-qa-be/pkg/rag/prompt"
	"doc-qa-be/pkg/ragerr"
	"doc-qa-be/pkg/store"
)

// Retriever is the slice of the vector index the engine needs.
type Retriever interface {
	SimilaritySearchWithScore(ctx context.Context, query string, k int) ([]store.ScoredChunk, error)
}

// Overrides are per-request tuning knobs layered over the global
// configuration.
type Overrides struct {
	TopK        *int     `json:"top_k"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
}

// Source attributes part of an answer to a retrieved chunk.
type Source struct {
	DocumentID     string  `json:"document_id"`
	Filename       string  `json:"filename"`
	Content        string  `json:"content"`
	ChunkIndex     int     `json:"chunk_index"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Answer is the result of one ask, either protocol.
type Answer struct {
	Answer         string   `json:"answer"`
	Sources        []Source `json:"sources"`
	Confidence     float64  `json:"confidence"`
	ProcessingTime int64    `json:"processing_time"` // milliseconds
}

// chain is the engine's memoized retrieval pipeline: the effective
// settings resolved from config plus overrides. The engine rebuilds it
// whenever the effective settings change instead of silently reusing a
// stale one.
type chain struct {
	topK        int
	temperature float64
	maxTokens   int
	model       string
}

// Engine runs retrieval-augmented generation against a retriever and
// an LLM provider.
type Engine struct {
	mu        sync.Mutex
	retriever Retriever
	provider  llm.LLMProvider
	config    *ragconfig.Manager
	current   *chain // nil until the first ask
}

func NewEngine(retriever Retriever, provider llm.LLMProvider, config *ragconfig.Manager) *Engine {
	return &Engine{
		retriever: retriever,
		provider:  provider,
		config:    config,
	}
}

// ensureChain resolves the effective settings for this call, building
// or rebuilding the memoized chain when they differ from the cached one.
func (e *Engine) ensureChain(overrides *Overrides) chain {
	settings := e.config.Snapshot()

	next := chain{
		topK:        settings.TopK,
		temperature: settings.LLMTemperature,
		maxTokens:   settings.LLMMaxTokens,
		model:       settings.LLMModel,
	}
	if overrides != nil {
		if overrides.TopK != nil {
			next.topK = *overrides.TopK
		}
		if overrides.Temperature != nil {
			next.temperature = *overrides.Temperature
		}
		if overrides.MaxTokens != nil {
			next.maxTokens = *overrides.MaxTokens
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil || *e.current != next {
		e.current = &next
	}
	return *e.current
}

// AskQuestion answers a question from the indexed documents without
// any conversation context.
func (e *Engine) AskQuestion(ctx context.Context, question string, overrides *Overrides) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ragerr.Retrieval("question is empty")
	}

	ch := e.ensureChain(overrides)
	started := time.Now()

	chunks, err := e.retrieve(ctx, question, ch.topK)
	if err != nil {
		return nil, err
	}

	answerPrompt := prompt.NewAnswerBuilder(chunks, question).Build()
	text, err := e.provider.Generate(ctx, answerPrompt,
		llm.WithTemperature(ch.temperature),
		llm.WithMaxTokens(ch.maxTokens),
		llm.WithModel(ch.model),
	)
	if err != nil {
		return nil, wrapEngineErr(err, "answer generation failed")
	}

	return e.finish(text, chunks, started), nil
}

// AskWithHistory answers a question in the context of prior turns. The
// latest question is first condensed into a standalone query for
// retrieval, then answered with the history included as prior turns.
func (e *Engine) AskWithHistory(ctx context.Context, question string, turns []history.Message, overrides *Overrides) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ragerr.Retrieval("question is empty")
	}

	messages, err := history.ToLLMMessages(turns)
	if err != nil {
		return nil, err
	}

	ch := e.ensureChain(overrides)
	started := time.Now()

	searchQuery := question
	if len(messages) > 0 {
		condensePrompt := prompt.NewCondenseBuilder(messages, question).Build()
		standalone, err := e.provider.Generate(ctx, condensePrompt,
			llm.WithTemperature(0),
			llm.WithModel(ch.model),
		)
		if err != nil {
			return nil, wrapEngineErr(err, "question condensing failed")
		}
		if s := strings.TrimSpace(standalone); s != "" {
			searchQuery = s
		}
	}

	chunks, err := e.retrieve(ctx, searchQuery, ch.topK)
	if err != nil {
		return nil, err
	}

	answerPrompt := prompt.NewAnswerBuilder(chunks, question).Build()
	conversation := append(append([]llm.Message{}, messages...), llm.Message{
		Role:    "user",
		Content: answerPrompt,
	})
	text, err := e.provider.Chat(ctx, conversation,
		llm.WithTemperature(ch.temperature),
		llm.WithMaxTokens(ch.maxTokens),
		llm.WithModel(ch.model),
	)
	if err != nil {
		return nil, wrapEngineErr(err, "answer generation failed")
	}

	return e.finish(text, chunks, started), nil
}

func (e *Engine) retrieve(ctx context.Context, query string, k int) ([]store.Chunk, error) {
	scored, err := e.retriever.SimilaritySearchWithScore(ctx, query, k)
	if err != nil {
		return nil, wrapEngineErr(err, "retrieval failed")
	}
	chunks := make([]store.Chunk, len(scored))
	for i, sc := range scored {
		chunks[i] = sc.Chunk
	}
	return chunks, nil
}

func (e *Engine) finish(text string, chunks []store.Chunk, started time.Time) *Answer {
	return &Answer{
		Answer:         text,
		Sources:        FormatSources(chunks),
		Confidence:     CalculateConfidence(chunks),
		ProcessingTime: time.Since(started).Milliseconds(),
	}
}

// wrapEngineErr keeps already-typed retrieval/LLM errors as they are
// and converts everything else into an LLM error so transport-specific
// failure shapes never leak out of the engine.
func wrapEngineErr(err error, message string) error {
	if ragerr.IsKind(err, ragerr.KindRetrieval) || ragerr.IsKind(err, ragerr.KindLLM) {
		return err
	}
	return ragerr.Wrap(ragerr.KindLLM, err, message)
}
