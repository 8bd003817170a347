package repository

import "context"

// LLMGenerator sends a prompt to a generation provider in JSON output mode.
type LLMGenerator interface {
	// GenerateJSON returns the raw model text, expected to be a JSON object.
	// Provider, transport and timeout errors wrap entity.ErrUpstreamFailure.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	// Model reports the model identifier used for every call.
	Model() string
}
