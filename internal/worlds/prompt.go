package worlds

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Alias1177/Forecaster/models"
)

const (
	maxFactsPerPrompt = 5
	maxFactLength     = 200
)

// RenderPrompt builds the world-sampling prompt for one question: title,
// optional description, up to five truncated context facts, and a
// machine-readable output hint keyed by the question type.
//
// For multiple choice the hint must use the question's actual option names as
// JSON keys. Placeholder keys would make every sample parse as an all-zero
// score vector and fail the whole question.
func RenderPrompt(q *models.Question, facts []string) string {
	var sb strings.Builder

	sb.WriteString("You are sampling ONE plausible future 'world' consistent with the facts below.\n")
	sb.WriteString("Return ONLY a JSON object matching the output schema exactly.\n\n")

	sb.WriteString("Question: ")
	sb.WriteString(q.Title)
	sb.WriteString("\n")
	if q.Description != "" {
		sb.WriteString("Background: ")
		sb.WriteString(q.Description)
		sb.WriteString("\n")
	}

	sb.WriteString("\nRecent facts:\n")
	if len(facts) == 0 {
		sb.WriteString("- (no recent facts)\n")
	}
	for i, f := range facts {
		if i >= maxFactsPerPrompt {
			break
		}
		sb.WriteString("- ")
		sb.WriteString(truncate(f, maxFactLength))
		sb.WriteString("\n")
	}

	sb.WriteString("\nIn this world, the question resolves. Output schema (strict):\n")
	sb.WriteString(outputHint(q))
	sb.WriteString("\n- Keep the outcome coherent with the facts; if uncertain, be conservative.\n")
	sb.WriteString("- JSON only, no commentary.\n")

	return sb.String()
}

func outputHint(q *models.Question) string {
	switch q.Type {
	case models.Binary:
		return `{"world_summary": "100-150 word narrative of the world dynamics", "yes": true|false}`
	case models.MultipleChoice:
		keys := make([]string, 0, len(q.Options))
		for _, name := range q.Options {
			keys = append(keys, fmt.Sprintf("%q: number", name))
		}
		return fmt.Sprintf(
			`{"world_summary": "100-150 word narrative of the world dynamics", "scores": {%s}}`,
			strings.Join(keys, ", "))
	case models.Numeric:
		return `{"world_summary": "100-150 word narrative of the world dynamics", "value": number}`
	}
	return `{"world_summary": "narrative"}`
}

// truncate cuts s to at most n bytes without splitting a UTF-8 rune.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
