package statement

import "strings"

// CleanModelJSON strips the decoration extraction models put around JSON
// despite instructions: markdown code fences and prose before/after the
// payload. It keeps only the span from the first '[' (or '{') to the last
// matching ']' (or '}'). The result may still fail to parse; callers treat
// that as an empty batch, never a partial one.
func CleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Drop ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	// Keep only the outermost JSON value. Arrays take priority: the
	// statement prompt asks for an array, and an array of objects also
	// contains braces.
	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end > start {
			return strings.TrimSpace(s[start : end+1])
		}
	}
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			return strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
