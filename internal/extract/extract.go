// Package extract recovers structured JSON from free-text model completions.
// Generative models wrap their output in code fences, prose, or slightly
// broken JSON; every caller that consumes a completion goes through here so
// the repair heuristics stay in one place.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// StripFence removes a surrounding triple-backtick code fence, optionally
// tagged "json", and returns the trimmed interior. Text without a fence is
// returned trimmed but otherwise untouched.
func StripFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}

// Object locates the first '{' and the last '}' in text and attempts to
// parse the substring as a JSON object. The second return is false when no
// parseable object is present; callers must fall back to their sentinels.
func Object(text string) (map[string]any, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	var out map[string]any
	if err := unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, false
	}
	return out, true
}

// Array strips any code fence from text and attempts to parse the result as
// a JSON array. Elements are returned raw so callers can validate each one
// independently.
func Array(text string) ([]json.RawMessage, bool) {
	s := StripFence(text)
	var out []json.RawMessage
	if err := unmarshal([]byte(s), &out); err != nil {
		return nil, false
	}
	return out, true
}

// unmarshal decodes JSON into v, running a repair pass when the input fails
// with a syntax error (trailing commas, single quotes and the like are
// common in model output).
func unmarshal(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	if _, ok := err.(*json.SyntaxError); ok {
		fixed, rerr := jsonrepair.JSONRepair(string(data))
		if rerr != nil {
			return err
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return err
}
