package entity

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	placeholderRx    = regexp.MustCompile(`(?i)\[(?:User\s+to\s+insert\s+([^\]]+)|([^\]]+?)\s+to\s+insert|([^\]]+?))\]`)
	placeholderKeyRx = regexp.MustCompile(`[^a-z0-9]+`)
	userInsertRx     = regexp.MustCompile(`(?i)\[User to insert`)
	toneStyleRx      = regexp.MustCompile(`(?i)tone|style`)
	lengthLimitRx    = regexp.MustCompile(`(?i)limit|under|\bmax\b|\bwords?\b`)
)

// Placeholder is a marker a human must fill in before the prompt is used.
type Placeholder struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Placeholders returns the unique bracketed markers found in the context
// field, in order of first appearance.
func (p StructuredPrompt) Placeholders() []Placeholder {
	return ExtractPlaceholders(p.Context)
}

// ExtractPlaceholders returns the unique bracketed markers in text, keyed by
// their normalised label.
func ExtractPlaceholders(text string) []Placeholder {
	var items []Placeholder
	seen := make(map[string]struct{})

	for _, m := range placeholderRx.FindAllStringSubmatch(text, -1) {
		label := ""
		for _, g := range m[1:] {
			if g != "" {
				label = strings.TrimSpace(g)
				break
			}
		}
		if label == "" {
			continue
		}
		key := placeholderKey(label)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		items = append(items, Placeholder{Key: key, Label: label})
	}
	return items
}

func placeholderKey(label string) string {
	return placeholderKeyRx.ReplaceAllString(strings.ToLower(strings.TrimSpace(label)), "_")
}

// LintSeverity grades a LintIssue.
type LintSeverity string

const (
	LintInfo  LintSeverity = "info"
	LintWarn  LintSeverity = "warn"
	LintError LintSeverity = "error"
)

// LintIssue is a single finding about a prompt's quality.
type LintIssue struct {
	Severity LintSeverity `json:"severity"`
	Message  string       `json:"message"`
}

// LintReport is the outcome of Lint: a 0-100 score and the issues behind it.
type LintReport struct {
	Score  int         `json:"score"`
	Issues []LintIssue `json:"issues"`
}

// maxTaskLength is measured in characters, not bytes.
const maxTaskLength = 220

// Lint scores a prompt out of 100: each error costs 25, each warning 10.
func (p StructuredPrompt) Lint() LintReport {
	var issues []LintIssue

	fields := []struct{ name, value string }{
		{FieldPersona, p.Persona},
		{FieldTask, p.Task},
		{FieldContext, p.Context},
		{FieldFormat, p.Format},
		{FieldConstraints, p.Constraints},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			issues = append(issues, LintIssue{Severity: LintError, Message: "Missing " + f.name + "."})
		}
	}

	if utf8.RuneCountInString(p.Task) > maxTaskLength {
		issues = append(issues, LintIssue{Severity: LintWarn, Message: "Task is quite long; consider tightening."})
	}
	if !userInsertRx.MatchString(p.Context) {
		issues = append(issues, LintIssue{Severity: LintInfo, Message: "No placeholders found in context."})
	}
	if !toneStyleRx.MatchString(p.Constraints) {
		issues = append(issues, LintIssue{Severity: LintInfo, Message: "Consider specifying tone/style in constraints."})
	}
	if !lengthLimitRx.MatchString(p.Constraints) {
		issues = append(issues, LintIssue{Severity: LintInfo, Message: "Consider setting word/length limits."})
	}

	score := 100
	for _, issue := range issues {
		switch issue.Severity {
		case LintError:
			score -= 25
		case LintWarn:
			score -= 10
		}
	}
	score = max(0, min(100, score))

	return LintReport{Score: score, Issues: issues}
}
