package service

import (
	"context"

	"doc-qa-be/internal/dto"
	"doc-qa-be/internal/pkg/logger"
	"doc-qa-be/pkg/rag"
)

type IQAService interface {
	Ask(ctx context.Context, req *dto.AskRequest) (*dto.QAResponse, error)
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.QAResponse, error)
}

type qaService struct {
	engine *rag.Engine
	log    logger.ILogger
}

func NewQAService(engine *rag.Engine, log logger.ILogger) IQAService {
	return &qaService{engine: engine, log: log}
}

func (qs *qaService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.QAResponse, error) {
	answer, err := qs.engine.AskQuestion(ctx, req.Question, req.Config)
	if err != nil {
		return nil, err
	}

	qs.log.Info("qa", "question answered", map[string]interface{}{
		"sources":            len(answer.Sources),
		"confidence":         answer.Confidence,
		"processing_time_ms": answer.ProcessingTime,
	})
	return dto.NewQAResponse(answer), nil
}

func (qs *qaService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.QAResponse, error) {
	answer, err := qs.engine.AskWithHistory(ctx, req.Question, req.History, req.Config)
	if err != nil {
		return nil, err
	}

	qs.log.Info("qa", "chat turn answered", map[string]interface{}{
		"history_turns":      len(req.History),
		"sources":            len(answer.Sources),
		"confidence":         answer.Confidence,
		"processing_time_ms": answer.ProcessingTime,
	})
	return dto.NewQAResponse(answer), nil
}
