// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON pulls the JSON payload out of a model response. Models
// routinely wrap JSON in a fenced code block or preface it with prose,
// so we strip fences first and fall back to the outermost brace or
// bracket pair.
func extractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty model response")
	}

	if fenced, ok := stripFence(s); ok {
		s = fenced
	}

	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return "", fmt.Errorf("no JSON found in model response")
	}
	var end int
	if s[start] == '[' {
		end = strings.LastIndex(s, "]")
	} else {
		end = strings.LastIndex(s, "}")
	}
	if end <= start {
		return "", fmt.Errorf("unterminated JSON in model response")
	}
	return s[start : end+1], nil
}

// stripFence removes a ```json ... ``` (or bare ```) wrapper.
func stripFence(s string) (string, bool) {
	if !strings.HasPrefix(s, "```") {
		return "", false
	}
	body := strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		// Drop the language tag line ("json", "JSON", or nothing).
		body = body[nl+1:]
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body), true
}

// decodeJSON extracts and unmarshals the JSON payload from a model
// response into v.
func decodeJSON(raw string, v any) error {
	payload, err := extractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("decode model response: %w", err)
	}
	return nil
}
