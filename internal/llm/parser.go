package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CleanResponse strips markdown code fences and surrounding prose that
// models emit despite instructions to return raw JSON.
func CleanResponse(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		// Drop the opening fence line, with or without a language tag.
		if idx := strings.Index(content, "\n"); idx >= 0 {
			content = content[idx+1:]
		} else {
			content = strings.TrimPrefix(content, "```")
		}
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
		return strings.TrimSpace(content)
	}

	return content
}

// wrapperKeys are object keys models sometimes wrap an array under.
var wrapperKeys = []string{"transactions", "results", "items", "data"}

// ExtractJSONArray pulls a JSON array out of a model response. It accepts a
// bare array, an object wrapping the array under a known key, or an array
// embedded in surrounding text.
func ExtractJSONArray(content string) ([]json.RawMessage, error) {
	content = CleanResponse(content)
	if content == "" {
		return nil, fmt.Errorf("empty response")
	}

	var arr []json.RawMessage
	if err := json.Unmarshal([]byte(content), &arr); err == nil {
		return arr, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &obj); err == nil {
		for _, key := range wrapperKeys {
			raw, ok := obj[key]
			if !ok {
				continue
			}
			if err := json.Unmarshal(raw, &arr); err == nil {
				return arr, nil
			}
		}
		// Single-object response: treat as a one-element array.
		return []json.RawMessage{json.RawMessage(content)}, nil
	}

	// Last resort: slice out the outermost bracket pair.
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(content[start:end+1]), &arr); err == nil {
			return arr, nil
		}
	}

	return nil, fmt.Errorf("no JSON array found in response")
}
