// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON is returned when no JSON object can be located in a
// model response.
var ErrNoJSON = errors.New("no JSON object found in response")

// ExtractJSONObject pulls a JSON object out of a model response.
//
// Models asked for "only JSON" still wrap it in markdown fences or
// prose often enough that structured callers need this. The order of
// attempts:
//
//  1. direct unmarshal of the trimmed response
//  2. the contents of the first ``` fenced block
//  3. the substring from the first '{' to the last '}'
func ExtractJSONObject(response string) (map[string]any, error) {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return nil, ErrNoJSON
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		return parsed, nil
	}

	if fenced := extractFencedBlock(trimmed); fenced != "" {
		if err := json.Unmarshal([]byte(fenced), &parsed); err == nil {
			return parsed, nil
		}
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start != -1 && end > start {
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), &parsed); err == nil {
			return parsed, nil
		}
		// The first-to-last span can straddle two objects; fall back to
		// scanning for the first balanced object.
		if obj := firstBalancedObject(trimmed[start:]); obj != "" {
			if err := json.Unmarshal([]byte(obj), &parsed); err == nil {
				return parsed, nil
			}
		}
	}

	return nil, ErrNoJSON
}

// extractFencedBlock returns the contents of the first ``` block,
// tolerating a language tag after the opening fence.
func extractFencedBlock(s string) string {
	start := strings.Index(s, "```")
	if start == -1 {
		return ""
	}
	rest := s[start+3:]
	if nl := strings.Index(rest, "\n"); nl != -1 {
		// Drop the language tag line ("json", "JSON", or empty).
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

// firstBalancedObject scans s (which must start at a '{') and returns
// the first brace-balanced object, respecting strings and escapes.
func firstBalancedObject(s string) string {
	depth := 0
	inString := false
	escaped := false
	for i, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[:i+1]
				}
			}
		}
	}
	return ""
}
