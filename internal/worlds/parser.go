package worlds

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Alias1177/Forecaster/models"
)

// Parse converts one raw oracle response into a typed partial answer plus a
// short outcome summary. A nil answer means parse failure, which is an
// expected outcome, never an error: the oracle's output shape is not fully
// controllable and a failed attempt simply contributes nothing.
func Parse(q *models.Question, raw string) (*models.ParsedAnswer, string) {
	body := extractJSON(raw)
	if body == "" {
		return nil, "unparseable response"
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		return nil, "unparseable response"
	}

	var parsed *models.ParsedAnswer
	switch q.Type {
	case models.Binary:
		parsed = parseBinary(obj)
	case models.MultipleChoice:
		parsed = parseMultipleChoice(q.Options, obj)
	case models.Numeric:
		parsed = parseNumeric(body, obj)
	}

	if parsed == nil {
		return nil, "unparseable response"
	}
	return parsed, summarize(q, parsed, obj)
}

// extractJSON strips any markdown fencing or commentary around the response
// and returns the first top-level {...} span.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return raw[start : end+1]
}

// parseBinary looks for a boolean-valued field meaning "the resolution is
// yes". A legitimate false is a valid parsed value, not a failure.
func parseBinary(obj map[string]any) *models.ParsedAnswer {
	if v, ok := obj["yes"]; ok {
		if b, ok := asBool(v); ok {
			return &models.ParsedAnswer{Yes: b}
		}
	}
	// Nested shapes some models produce: {"binary": {"yes": ...}} or
	// {"outcome": {"binary": {"yes": ...}}}.
	for _, outer := range []string{"binary", "outcome"} {
		if nested, ok := obj[outer].(map[string]any); ok {
			if b := parseBinary(nested); b != nil {
				return b
			}
		}
	}
	return nil
}

// parseMultipleChoice resolves one score per configured option name, in
// descriptor order. Scores live under "scores" or, as a fallback, as the
// top-level object itself. A missing option scores 0.
//
// All-zero vectors are rejected: a real forecast is never a perfect tie at
// zero, so all-zeros always means a key mismatch or degenerate output.
func parseMultipleChoice(options []string, obj map[string]any) *models.ParsedAnswer {
	if len(options) == 0 {
		return nil
	}

	scores, ok := obj["scores"].(map[string]any)
	if !ok {
		scores = obj
	}

	vec := make([]float64, len(options))
	allZero := true
	for i, name := range options {
		if v, ok := scores[name]; ok {
			// Scores are non-negative relative weights; a negative value is
			// model noise and clamps to 0.
			if f, ok := asFloat(v); ok && f > 0 {
				vec[i] = f
			}
		}
		if vec[i] != 0 {
			allZero = false
		}
	}
	if allZero {
		return nil
	}
	return &models.ParsedAnswer{Scores: vec}
}

// parseNumeric looks for a "value" field; when it is absent or not coercible
// it falls back to scanning the response object's fields in document order
// and takes the first finite numeric (or numeric-string) value.
func parseNumeric(body string, obj map[string]any) *models.ParsedAnswer {
	if v, ok := obj["value"]; ok {
		if f, ok := asFloat(v); ok {
			return &models.ParsedAnswer{Value: f}
		}
	}
	for _, v := range fieldsInOrder(body) {
		if f, ok := asFloat(v); ok {
			return &models.ParsedAnswer{Value: f}
		}
	}
	return nil
}

// fieldsInOrder returns the top-level field values of a JSON object in
// document order. Go maps are unordered, so the fallback scan walks the
// decoder's token stream instead.
func fieldsInOrder(body string) []any {
	dec := json.NewDecoder(strings.NewReader(body))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}
	var values []any
	for dec.More() {
		if _, err := dec.Token(); err != nil { // field name
			return values
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return values
		}
		values = append(values, v)
	}
	return values
}

func asBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1":
			return true, true
		case "false", "no", "0":
			return false, true
		}
	}
	return false, false
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// summarize prefers the model's own world narrative when present, falling
// back to a formatted outcome. Used only for rationale text downstream.
func summarize(q *models.Question, a *models.ParsedAnswer, obj map[string]any) string {
	if ws, ok := obj["world_summary"].(string); ok {
		if ws = strings.TrimSpace(ws); ws != "" {
			return truncate(ws, 160)
		}
	}
	switch q.Type {
	case models.Binary:
		if a.Yes {
			return "resolves yes"
		}
		return "resolves no"
	case models.MultipleChoice:
		top := 0
		for i, s := range a.Scores {
			if s > a.Scores[top] {
				top = i
			}
		}
		return "leading option: " + q.Options[top]
	case models.Numeric:
		return fmt.Sprintf("value %.4g", a.Value)
	}
	return ""
}
