// Package jsonutil parses JSON out of model-generated text, which tends to
// arrive wrapped in markdown fences or padded with prose.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences removes a leading ```json (or bare ```) fence and its closing
// fence. Text without fences comes back unchanged.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	// Drop the opening fence line.
	if idx := strings.Index(text, "\n"); idx != -1 {
		text = text[idx+1:]
	} else {
		return text
	}

	// Drop everything from the closing fence on.
	if idx := strings.LastIndex(text, "```"); idx != -1 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// Extract returns the first JSON object or array embedded in text, matching
// the opening delimiter with the last closing one of the same shape.
func Extract(text string) (string, error) {
	text = strings.TrimSpace(text)

	objIdx := strings.Index(text, "{")
	arrIdx := strings.Index(text, "[")
	if objIdx == -1 && arrIdx == -1 {
		return "", fmt.Errorf("no JSON object or array in text")
	}

	start, closer := objIdx, "}"
	if objIdx == -1 || (arrIdx != -1 && arrIdx < objIdx) {
		start, closer = arrIdx, "]"
	}

	text = text[start:]
	end := strings.LastIndex(text, closer)
	if end == -1 {
		return "", fmt.Errorf("unterminated JSON: missing %q", closer)
	}
	return text[:end+1], nil
}

// Parse strips fences, extracts the embedded JSON and unmarshals it into T.
func Parse[T any](raw string) (T, error) {
	var out T

	jsonStr, err := Extract(StripFences(raw))
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		preview := jsonStr
		if len(preview) > 160 {
			preview = preview[:160] + "..."
		}
		return out, fmt.Errorf("unmarshal model JSON: %w (text: %s)", err, preview)
	}
	return out, nil
}
