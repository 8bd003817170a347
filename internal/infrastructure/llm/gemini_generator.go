package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"promptcraft/internal/domain/entity"
	"promptcraft/internal/domain/repository"
	"promptcraft/internal/infrastructure/metrics"
)

const (
	jsonMimeType = "application/json"
	// maxErrorBody caps how much of a provider error body is kept for logs.
	maxErrorBody = 4 << 10
)

type GeminiGenerator struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	logger  *slog.Logger
}

var _ repository.LLMGenerator = (*GeminiGenerator)(nil)

// NewGeminiGenerator returns a client for the generateContent endpoint.
// timeout bounds every call; the caller's context can end it sooner.
func NewGeminiGenerator(apiKey, baseURL, model string, timeout time.Duration, logger *slog.Logger) *GeminiGenerator {
	return &GeminiGenerator{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

func (g *GeminiGenerator) Model() string {
	return g.model
}

func (g *GeminiGenerator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	metrics.IncLLMRequest(g.model)
	start := time.Now()
	defer func() { metrics.ObserveLLMDuration(g.model, time.Since(start)) }()

	request := generateRequest{
		Contents: []content{
			{
				Role:  "user",
				Parts: []part{{Text: prompt}},
			},
		},
		GenerationConfig: generationConfig{ResponseMimeType: jsonMimeType},
	}

	response, err := g.makeRequest(ctx, request)
	if err != nil {
		return "", fmt.Errorf("%w: gemini request: %w", entity.ErrUpstreamFailure, err)
	}

	text, err := g.parseResponse(response)
	if err != nil {
		metrics.IncError("llm", "parse_response")
		return "", fmt.Errorf("%w: gemini response: %w", entity.ErrUpstreamFailure, err)
	}

	g.logger.Debug("gemini generation finished",
		"model", g.model,
		"duration", time.Since(start),
		"response_bytes", len(text),
	)
	return text, nil
}

func (g *GeminiGenerator) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
}

func (g *GeminiGenerator) makeRequest(ctx context.Context, request generateRequest) (*generateResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		metrics.IncError("llm", "marshal_request")
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(jsonData))
	if err != nil {
		metrics.IncError("llm", "create_request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", jsonMimeType)
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			metrics.IncError("llm", "timeout")
		} else {
			metrics.IncError("llm", "http_do")
		}
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			g.logger.Warn("close gemini response body", "err", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		metrics.IncError("llm", fmt.Sprintf("api_error_%d", resp.StatusCode))
		return nil, fmt.Errorf("gemini api error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var response generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		metrics.IncError("llm", "decode_response")
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &response, nil
}

func (g *GeminiGenerator) parseResponse(response *generateResponse) (string, error) {
	if len(response.Candidates) == 0 {
		if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("prompt blocked: %s", response.PromptFeedback.BlockReason)
		}
		return "", errors.New("invalid response format: no candidates")
	}

	candidate := response.Candidates[0]
	if len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("invalid response format: no content (finish reason %q)", candidate.FinishReason)
	}

	var sb strings.Builder
	for _, p := range candidate.Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
