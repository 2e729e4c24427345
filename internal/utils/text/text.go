// Package text provides utilities for text measurement and shaping shared
// by the extractor and the thread writer. All limits operate on Unicode
// characters (runes), not bytes, so multi-byte scripts and emoji count as
// single characters.
package text

import "strings"

// Ellipsis marks truncated text.
const Ellipsis = "…"

// CountRunes counts the number of Unicode characters in the given text.
func CountRunes(s string) int {
	return len([]rune(s))
}

// Clamp truncates s to at most maxRunes characters. No ellipsis is added;
// this is a hard input-size guard, not a display helper.
func Clamp(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

// Excerpt returns the first maxRunes characters of s, trimmed, with an
// ellipsis appended when anything was cut off.
func Excerpt(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(runes[:maxRunes])) + Ellipsis
}

// EnforceCharLimit shortens a post to at most maxRunes characters.
// It prefers cutting at a word boundary when one falls in the last 40% of
// the budget; otherwise it truncates hard. Either way the result ends with
// an ellipsis when shortened.
func EnforceCharLimit(post string, maxRunes int) string {
	trimmed := strings.TrimSpace(post)
	runes := []rune(trimmed)
	if len(runes) <= maxRunes {
		return trimmed
	}

	cut := string(runes[:maxRunes-len([]rune(Ellipsis))])
	if idx := strings.LastIndex(cut, " "); idx > int(float64(maxRunes)*0.6) {
		return strings.TrimRight(cut[:idx], " ") + Ellipsis
	}
	return strings.TrimRight(cut, " ") + Ellipsis
}

// EnforceCharLimitBatch applies EnforceCharLimit to every post.
func EnforceCharLimitBatch(posts []string, maxRunes int) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = EnforceCharLimit(p, maxRunes)
	}
	return out
}
