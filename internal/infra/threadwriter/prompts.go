package threadwriter

import (
	"fmt"
	"strings"
)

// buildOutlineSystemPrompt instructs the model to plan the thread as a
// JSON object of topics and bullets, grounded only in the article text.
func buildOutlineSystemPrompt(opts Options) string {
	var b strings.Builder

	b.WriteString(`You are an expert at turning news articles into engaging X (Twitter) threads.
Style inspiration: punchy hooks, clear value. Use emojis sparingly to highlight key points.

Output valid JSON only. No markdown code fences.
`)
	fmt.Fprintf(&b, "Output a JSON object with a single key \"tweets\", an array of exactly %d items.\n", postCountForLength(opts.Length))
	b.WriteString(`Each item: { "topic": "short topic label", "bullets": ["point 1", "point 2", ...] }.
Base the outline ONLY on the provided article text. Do not invent facts, numbers, or quotes. If something is not in the text, note "not confirmed" in the bullet.
`)
	fmt.Fprintf(&b, "Tone: %s.\n", opts.Tone)
	b.WriteString("First tweet should be a hook. Last tweet should be a CTA (question or call to action).")

	appendSharedLines(&b, opts)
	return b.String()
}

// buildRenderSystemPrompt instructs the model to turn an outline into
// final post copy, one JSON string per post.
func buildRenderSystemPrompt(opts Options) string {
	var b strings.Builder

	b.WriteString(`You are an expert at writing X (Twitter) thread copy.
Style: punchy, scroll-stopping. Clear hooks, one idea per tweet, emojis to highlight when helpful.

Convert the outline into final tweet copy.
Output valid JSON only. No markdown code fences.
Output a JSON object with a single key "tweets": array of strings, one per tweet, in order.
Each tweet MUST be at most 280 characters.
`)
	fmt.Fprintf(&b, "No invented facts, numbers, or quotes. Tone: %s.\n", opts.Tone)
	b.WriteString("First tweet: hook. Last tweet: CTA (question or call to action).")

	appendSharedLines(&b, opts)
	return b.String()
}

// appendSharedLines adds the optional angle, language and source link
// instructions common to both stages.
func appendSharedLines(b *strings.Builder, opts Options) {
	if opts.Angle != "" {
		fmt.Fprintf(b, "\nOptional angle/focus: %s.", opts.Angle)
	}
	if opts.Language != "" && opts.Language != "English" {
		fmt.Fprintf(b, "\nWrite the entire thread in %s. Keep the same structure (hook, points, CTA).", opts.Language)
	}
	if opts.SourceURL != "" {
		fmt.Fprintf(b, "\nIMPORTANT: Include this exact link in the last tweet (CTA): %s\nDo NOT modify or shorten this URL. Include it exactly as provided. Ensure the final tweet with the link stays under 280 characters.", opts.SourceURL)
	}
}
