package openai

import "strings"

// cleanResponse strips markdown code fences and repairs common JSON defects
// in model output.
func cleanResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	// Some models wrap the object in chatter; keep the outermost braces.
	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start >= 0 && end > start {
		s = s[start : end+1]
	}
	return repairJSON(s)
}

// clampScore bounds a model supplied confidence to [0, 100].
func clampScore(n int) int {
	return max(0, min(100, n))
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
