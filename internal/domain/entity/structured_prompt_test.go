package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUseCase(t *testing.T) {
	for _, in := range []string{"", " ", "\t", "\n  \r\n"} {
		_, err := ValidateUseCase(in)
		assert.ErrorIs(t, err, ErrInvalidInput, "input %q", in)
	}

	got, err := ValidateUseCase("  Write a haiku  ")
	require.NoError(t, err)
	assert.Equal(t, "  Write a haiku  ", got)
}

func TestComposeQuotesUseCaseAtEnd(t *testing.T) {
	full := MetaPrompt.Compose("Write a product description")

	assert.True(t, strings.HasPrefix(full, MetaPrompt.Text))
	assert.True(t, strings.HasSuffix(full, "USER USE CASE:\n\"Write a product description\""))
	for _, key := range RequiredKeys {
		assert.Contains(t, MetaPrompt.Text, `"`+key+`"`)
	}
	assert.Contains(t, MetaPrompt.Text, "[User to insert ...]")
}

func TestParseStructuredPrompt(t *testing.T) {
	raw := `{"persona":"Expert \"editor\"","task":"Edit  text\n","context":"[User to insert draft]","format":"Markdown","constraints":"<= 200 words & formal"}`

	sp, err := ParseStructuredPrompt(raw)
	require.NoError(t, err)

	assert.Equal(t, StructuredPrompt{
		Persona:     `Expert "editor"`,
		Task:        "Edit  text\n",
		Context:     "[User to insert draft]",
		Format:      "Markdown",
		Constraints: "<= 200 words & formal",
	}, *sp)
}

func TestParseStructuredPromptKeyOrderDoesNotMatter(t *testing.T) {
	_, err := ParseStructuredPrompt(`{"constraints":"e","format":"d","context":"c","task":"b","persona":"a"}`)
	assert.NoError(t, err)
}

func TestParseStructuredPromptMalformed(t *testing.T) {
	for _, raw := range []string{
		"not json",
		"",
		`{"persona":`,
		`[]`,
		`["persona","task","context","format","constraints"]`,
		`"a string"`,
		`42`,
		`true`,
		`null`,
		`{"persona":"a"} trailing`,
	} {
		_, err := ParseStructuredPrompt(raw)
		assert.ErrorIs(t, err, ErrMalformedUpstreamOutput, "raw %q", raw)
		assert.NotErrorIs(t, err, ErrUnexpectedUpstreamShape, "raw %q", raw)
	}
}

func TestParseStructuredPromptWrongShape(t *testing.T) {
	for _, raw := range []string{
		`{}`,
		`{"persona":"x"}`,
		`{"persona":"a","task":"b","context":"c","format":"d"}`,
		`{"persona":"a","task":"b","context":"c","format":"d","constraints":"e","extra":"f"}`,
		`{"Persona":"a","task":"b","context":"c","format":"d","constraints":"e"}`,
		`{"persona":1,"task":"b","context":"c","format":"d","constraints":"e"}`,
		`{"persona":null,"task":"b","context":"c","format":"d","constraints":"e"}`,
		`{"persona":{"name":"a"},"task":"b","context":"c","format":"d","constraints":"e"}`,
	} {
		_, err := ParseStructuredPrompt(raw)
		assert.ErrorIs(t, err, ErrUnexpectedUpstreamShape, "raw %q", raw)
		assert.NotErrorIs(t, err, ErrMalformedUpstreamOutput, "raw %q", raw)
	}
}

func TestParseStructuredPromptReportsKeyDiff(t *testing.T) {
	_, err := ParseStructuredPrompt(`{"persona":"a","task":"b","notes":"x"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing [context format constraints]")
	assert.Contains(t, err.Error(), "unexpected [notes]")
}

func TestMarkdown(t *testing.T) {
	sp := StructuredPrompt{Persona: "P", Task: "T", Context: "C", Format: "F", Constraints: "K"}

	want := "# Prompt\n\n**Persona**  \nP\n\n**Task**  \nT\n\n**Context**  \nC\n\n**Format**  \nF\n\n**Constraints**  \nK\n"
	assert.Equal(t, want, sp.Markdown())
}
