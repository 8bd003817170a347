package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Field names of a structured prompt, in presentation order.
const (
	FieldPersona     = "persona"
	FieldTask        = "task"
	FieldContext     = "context"
	FieldFormat      = "format"
	FieldConstraints = "constraints"
)

// RequiredKeys is the exact key set a model response must carry.
var RequiredKeys = []string{FieldPersona, FieldTask, FieldContext, FieldFormat, FieldConstraints}

// UseCaseRequest is the body of POST /generate-prompt. A nil UseCase means the
// field was absent or null.
type UseCaseRequest struct {
	UseCase *string `json:"use_case"`
}

// ValidateUseCase rejects empty and whitespace-only input. The returned
// string is the input unchanged.
func ValidateUseCase(useCase string) (string, error) {
	if strings.TrimSpace(useCase) == "" {
		return "", fmt.Errorf("%w: use case cannot be empty", ErrInvalidInput)
	}
	return useCase, nil
}

// StructuredPrompt is the five-field prompt produced from a use case.
type StructuredPrompt struct {
	Persona     string `json:"persona"`
	Task        string `json:"task"`
	Context     string `json:"context"`
	Format      string `json:"format"`
	Constraints string `json:"constraints"`
}

// PromptResponse is the success body of POST /generate-prompt.
type PromptResponse struct {
	StructuredPrompt StructuredPrompt `json:"structured_prompt"`
}

// ParseStructuredPrompt decodes raw model output. Anything that is not a JSON
// object yields ErrMalformedUpstreamOutput; an object whose key set differs
// from RequiredKeys, or whose values are not strings, yields
// ErrUnexpectedUpstreamShape. Values are kept verbatim.
func ParseStructuredPrompt(raw string) (*StructuredPrompt, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedUpstreamOutput, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: top-level value is null", ErrMalformedUpstreamOutput)
	}

	missing, unexpected := diffKeys(fields)
	if len(missing) > 0 || len(unexpected) > 0 {
		return nil, fmt.Errorf("%w: missing %v, unexpected %v", ErrUnexpectedUpstreamShape, missing, unexpected)
	}

	values := make(map[string]string, len(RequiredKeys))
	for _, key := range RequiredKeys {
		v, err := decodeString(fields[key])
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrUnexpectedUpstreamShape, key, err)
		}
		values[key] = v
	}

	return &StructuredPrompt{
		Persona:     values[FieldPersona],
		Task:        values[FieldTask],
		Context:     values[FieldContext],
		Format:      values[FieldFormat],
		Constraints: values[FieldConstraints],
	}, nil
}

func diffKeys(fields map[string]json.RawMessage) (missing, unexpected []string) {
	required := make(map[string]struct{}, len(RequiredKeys))
	for _, key := range RequiredKeys {
		required[key] = struct{}{}
		if _, ok := fields[key]; !ok {
			missing = append(missing, key)
		}
	}
	for key := range fields {
		if _, ok := required[key]; !ok {
			unexpected = append(unexpected, key)
		}
	}
	sort.Strings(unexpected)
	return missing, unexpected
}

func decodeString(raw json.RawMessage) (string, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", fmt.Errorf("value is null")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("value is not a string")
	}
	return s, nil
}

// Markdown renders the prompt in the export layout used by the web client.
func (p StructuredPrompt) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# Prompt\n")
	for _, section := range []struct{ title, body string }{
		{"Persona", p.Persona},
		{"Task", p.Task},
		{"Context", p.Context},
		{"Format", p.Format},
		{"Constraints", p.Constraints},
	} {
		fmt.Fprintf(&sb, "\n**%s**  \n%s\n", section.title, section.body)
	}
	return sb.String()
}
