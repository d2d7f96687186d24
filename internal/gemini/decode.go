package gemini

import (
	"encoding/json"
	"strings"

	"pegasusedge/internal/logging"
)

// Decode parses a model response as JSON into T, tolerating the markdown
// code fences models like to wrap JSON in. It never fails: any parse
// problem logs and returns the caller's fallback value unchanged, so a
// malformed response degrades a panel instead of breaking the wizard.
func Decode[T any](raw string, fallback T) T {
	cleaned := stripFences(raw)
	if cleaned == "" {
		logging.GeminiWarn("Decode: empty response, using fallback")
		return fallback
	}

	var out T
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		preview := cleaned
		if len(preview) > 120 {
			preview = preview[:120]
		}
		logging.GeminiWarn("Decode: parse failed, using fallback: %v (response: %q)", err, preview)
		return fallback
	}
	return out
}

// stripFences removes a surrounding markdown code fence, with or without
// a language tag, and trims whitespace.
func stripFences(response string) string {
	cleaned := strings.TrimSpace(response)

	if strings.HasPrefix(cleaned, "```") {
		// Drop the opening fence line including any language tag.
		if idx := strings.Index(cleaned, "\n"); idx >= 0 {
			cleaned = cleaned[idx+1:]
		} else {
			cleaned = strings.TrimPrefix(cleaned, "```json")
			cleaned = strings.TrimPrefix(cleaned, "```")
		}
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	}

	return strings.TrimSpace(cleaned)
}
