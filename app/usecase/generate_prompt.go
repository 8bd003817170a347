package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"promptcraft/internal/domain/entity"
	"promptcraft/internal/domain/repository"
	"promptcraft/internal/infrastructure/metrics"
)

type PromptUsecase interface {
	GeneratePrompt(ctx context.Context, useCase string) (*entity.PromptResponse, error)
}

var _ PromptUsecase = (*PromptService)(nil)

// PromptService turns a use case into a structured prompt with one LLM call.
// It holds no per-request state and is safe for concurrent use.
type PromptService struct {
	llm     repository.LLMGenerator
	prompt  entity.Prompt
	timeout time.Duration
	logger  *slog.Logger
}

func NewPromptService(llm repository.LLMGenerator, timeout time.Duration, logger *slog.Logger) *PromptService {
	return &PromptService{
		llm:     llm,
		prompt:  entity.MetaPrompt,
		timeout: timeout,
		logger:  logger,
	}
}

// GeneratePrompt validates the use case, sends the composed meta-prompt to
// the model and checks the shape of what comes back. Errors wrap one of the
// entity sentinel errors; anything else should be treated as an upstream
// failure by callers.
func (s *PromptService) GeneratePrompt(ctx context.Context, useCase string) (*entity.PromptResponse, error) {
	useCase, err := entity.ValidateUseCase(useCase)
	if err != nil {
		metrics.IncGeneration("invalid_input")
		return nil, err
	}

	fullPrompt := s.prompt.Compose(useCase)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.llm.GenerateJSON(callCtx, fullPrompt)
	if err != nil {
		metrics.IncGeneration("upstream")
		if !errors.Is(err, entity.ErrUpstreamFailure) {
			err = fmt.Errorf("%w: %w", entity.ErrUpstreamFailure, err)
		}
		return nil, fmt.Errorf("generate with %s: %w", s.llm.Model(), err)
	}

	sp, err := entity.ParseStructuredPrompt(raw)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrMalformedUpstreamOutput):
			metrics.IncGeneration("malformed")
		default:
			metrics.IncGeneration("shape")
		}
		s.logger.Warn("model output rejected",
			"model", s.llm.Model(),
			"err", err,
			"response_bytes", len(raw),
		)
		return nil, err
	}

	placeholders := sp.Placeholders()
	lint := sp.Lint()
	metrics.IncGeneration("ok")
	metrics.ObservePromptQuality(len(placeholders), lint.Score)

	s.logger.Info("prompt generated",
		"model", s.llm.Model(),
		"duration", time.Since(start),
		"placeholders", len(placeholders),
		"lint_score", lint.Score,
		"lint_issues", len(lint.Issues),
	)
	if s.logger.Enabled(ctx, slog.LevelDebug) {
		s.logger.Debug("generated prompt", "markdown", sp.Markdown())
	}

	return &entity.PromptResponse{StructuredPrompt: *sp}, nil
}
