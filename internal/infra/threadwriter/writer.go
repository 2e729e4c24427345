// Package threadwriter turns extracted article text into social-media
// thread copy through a two-stage language model flow: an outline stage
// that plans the thread as topics with supporting bullets, and a render
// stage that turns the outline into final posts capped at 280 characters.
//
// Adapters for OpenAI and Claude wrap their API calls in circuit breaker
// and retry logic, plus a client-side rate limiter to stay inside
// provider quotas. A deterministic no-op writer supports development
// without API keys.
package threadwriter

import (
	"context"
	"strconv"
)

// MaxPostChars is the hard per-post character limit, counted in runes.
const MaxPostChars = 280

// OutlineItem is one planned post: a short topic label plus the points
// the rendered post should make.
type OutlineItem struct {
	Topic   string   `json:"topic"`
	Bullets []string `json:"bullets"`
}

// Outline is the planned structure of a thread, one item per post.
type Outline []OutlineItem

// Options carries the generation settings chosen by the client.
type Options struct {
	// Tone of the thread copy, e.g. "professional" or "casual".
	Tone string

	// Length is the requested post count as a string ("7" through "10").
	Length string

	// Angle is an optional focus for the thread.
	Angle string

	// Language is the output language. Empty or "English" means English.
	Language string

	// SourceURL, when set, must appear verbatim in the final post.
	SourceURL string
}

// Writer produces thread copy from article text.
//
// Outline plans the thread; Render turns a plan into final posts. Both
// stages may fail with LLM_* classified errors.
type Writer interface {
	Outline(ctx context.Context, articleText string, opts Options) (Outline, error)
	Render(ctx context.Context, outline Outline, opts Options) ([]string, error)
}

// postCountForLength maps the requested length to a target post count.
// Unknown values fall back to 8.
func postCountForLength(length string) int {
	n, err := strconv.Atoi(length)
	if err != nil || n < 1 || n > 15 {
		return 8
	}
	return n
}
