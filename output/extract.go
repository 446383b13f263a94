package output

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \\t]*\\r?\\n?(.*?)```")

// ExtractJSON finds the first JSON object in text. Candidates are tried in
// order: the raw text, every fenced block, every balanced-brace substring,
// then the span from the first '{' to the last '}'. Each candidate is parsed
// as-is and then after every cumulative repair step. It returns nil when no
// candidate yields an object.
func ExtractJSON(text string) map[string]any {
	for _, c := range Candidates(text) {
		if obj := parseRepaired(c); obj != nil {
			return obj
		}
	}
	return nil
}

// Candidates returns the deduplicated candidate substrings in try order.
func Candidates(text string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	add(text)
	for _, m := range fencePattern.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, obj := range balancedObjects(text) {
		add(obj)
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		add(text[start : end+1])
	}
	return out
}

// balancedObjects returns every outermost {...} span whose braces balance.
// Braces inside double-quoted strings are ignored. An opening brace that
// never closes is skipped so objects nested after it are still found.
func balancedObjects(s string) []string {
	var out []string
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		end := matchBrace(s, i)
		if end < 0 {
			continue
		}
		out = append(out, s[i:end+1])
		i = end
	}
	return out
}

func matchBrace(s string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseRepaired tries the candidate, then each cumulative repair.
func parseRepaired(candidate string) map[string]any {
	if obj := decodeObject(candidate); obj != nil {
		return obj
	}
	current := candidate
	for _, step := range Repairs {
		next := step.Apply(current)
		if next == current {
			continue
		}
		current = next
		if obj := decodeObject(current); obj != nil {
			return obj
		}
	}
	return nil
}

// decodeObject accepts only a JSON object; arrays and scalars are rejected.
func decodeObject(s string) map[string]any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return obj
}
