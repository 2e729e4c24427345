// Package entity defines the core domain objects of the thread-generation
// pipeline: the extracted article and the rendered thread.
package entity

import "time"

// ExtractedArticle is the readable content recovered from a fetched page or
// supplied as pasted text. Instances are created once per successful
// extraction and are immutable thereafter; the caller of the extraction
// step owns them. Nothing is persisted server-side.
type ExtractedArticle struct {
	Title    string
	SiteName string
	Byline   string // optional
	Text     string
	Excerpt  string // optional
}

// Thread is a ready-to-post social-media thread rendered from an article.
type Thread struct {
	Tweets []string
	Meta   ThreadMeta
	Debug  ThreadDebug
}

// ThreadMeta describes the source and settings a thread was generated with.
type ThreadMeta struct {
	Title     string
	SiteName  string
	URL       string // empty for pasted text
	Tone      string
	Length    string
	CreatedAt time.Time
}

// ThreadDebug carries non-sensitive diagnostics returned to the client.
type ThreadDebug struct {
	ExtractedCharCount int
	Model              string
}
