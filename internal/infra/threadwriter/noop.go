package threadwriter

import (
	"context"
	"fmt"

	"news-thread/internal/apperror"
	"news-thread/internal/utils/text"
)

// NoOp produces deterministic thread copy without calling any API.
// It is used in development and tests when no provider key is wanted.
type NoOp struct {
	config Config
}

// NewNoOp creates a NoOp thread writer.
func NewNoOp(cfg Config) *NoOp {
	return &NoOp{config: cfg}
}

// Outline slices the article into as many segments as posts requested,
// one excerpt bullet per segment.
func (n *NoOp) Outline(_ context.Context, articleText string, opts Options) (Outline, error) {
	body := clampInput(articleText, n.config.MaxInputChars)
	count := postCountForLength(opts.Length)

	runes := []rune(body)
	segment := len(runes) / count
	if segment == 0 {
		segment = len(runes)
	}

	outline := make(Outline, 0, count)
	for i := 0; i < count; i++ {
		start := i * segment
		if start >= len(runes) {
			break
		}
		end := start + segment
		if end > len(runes) || i == count-1 {
			end = len(runes)
		}
		outline = append(outline, OutlineItem{
			Topic:   fmt.Sprintf("Part %d", i+1),
			Bullets: []string{text.Excerpt(string(runes[start:end]), 120)},
		})
	}
	return outline, nil
}

// Render joins each outline item into a numbered post.
func (n *NoOp) Render(_ context.Context, outline Outline, _ Options) ([]string, error) {
	posts := make([]string, 0, len(outline))
	for i, item := range outline {
		post := fmt.Sprintf("%d/ %s", i+1, item.Topic)
		for _, bullet := range item.Bullets {
			post += " " + bullet
		}
		posts = append(posts, post)
	}
	return text.EnforceCharLimitBatch(posts, MaxPostChars), nil
}

// MissingKey rejects every call with LLM_MISSING_KEY. It stands in for
// a real provider when its API key is absent, so startup still succeeds
// and the failure surfaces per request instead.
type MissingKey struct{}

// NewMissingKey creates a MissingKey writer.
func NewMissingKey() *MissingKey {
	return &MissingKey{}
}

// Outline always fails with LLM_MISSING_KEY.
func (m *MissingKey) Outline(context.Context, string, Options) (Outline, error) {
	return nil, m.err()
}

// Render always fails with LLM_MISSING_KEY.
func (m *MissingKey) Render(context.Context, Outline, Options) ([]string, error) {
	return nil, m.err()
}

func (m *MissingKey) err() error {
	return apperror.New(apperror.CodeLLMMissingKey,
		"Language model API key is not configured.")
}
