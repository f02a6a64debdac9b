package service

import (
	"context"

	"doc-qa-be/internal/dto"
	"doc-qa-be/internal/pkg/logger"
	"doc-qa-be/internal/ragconfig"
)

type IConfigService interface {
	Get(ctx context.Context) *dto.ConfigResponse
	Update(ctx context.Context, req *dto.UpdateConfigRequest) (*dto.ConfigResponse, error)
}

type configService struct {
	manager *ragconfig.Manager
	log     logger.ILogger
}

func NewConfigService(manager *ragconfig.Manager, log logger.ILogger) IConfigService {
	return &configService{manager: manager, log: log}
}

func (cs *configService) Get(ctx context.Context) *dto.ConfigResponse {
	return &dto.ConfigResponse{Config: cs.manager.Snapshot()}
}

func (cs *configService) Update(ctx context.Context, req *dto.UpdateConfigRequest) (*dto.ConfigResponse, error) {
	settings, err := cs.manager.Apply(req.ToUpdate())
	if err != nil {
		return nil, err
	}

	cs.log.Info("config", "settings updated", map[string]interface{}{
		"chunk_size":    settings.ChunkSize,
		"chunk_overlap": settings.ChunkOverlap,
		"llm_model":     settings.LLMModel,
		"top_k":         settings.TopK,
	})
	return &dto.ConfigResponse{Config: settings}, nil
}
