package text

import (
	"strings"
	"testing"
)

func TestCountRunes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"hello", 5},
		{"こんにちは", 5},
		{"hello世界", 7},
		{"Hello👋", 6},
		{"", 0},
	}
	for _, tt := range tests {
		if got := CountRunes(tt.in); got != tt.want {
			t.Errorf("CountRunes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp("hello", 10); got != "hello" {
		t.Errorf("Clamp() = %q, want unchanged", got)
	}
	if got := Clamp("hello world", 5); got != "hello" {
		t.Errorf("Clamp() = %q, want %q", got, "hello")
	}
	if got := Clamp("こんにちは世界", 5); got != "こんにちは" {
		t.Errorf("Clamp() = %q, want こんにちは", got)
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("short text", 300); got != "short text" {
		t.Errorf("Excerpt() = %q, want unchanged", got)
	}

	long := strings.Repeat("a", 400)
	got := Excerpt(long, 300)
	if !strings.HasSuffix(got, Ellipsis) {
		t.Errorf("Excerpt() should end with ellipsis, got %q", got[len(got)-10:])
	}
	if CountRunes(got) != 301 {
		t.Errorf("Excerpt() length = %d runes, want 301", CountRunes(got))
	}
}

func TestEnforceCharLimit_WithinLimit(t *testing.T) {
	post := "A short post."
	if got := EnforceCharLimit(post, 280); got != post {
		t.Errorf("EnforceCharLimit() = %q, want unchanged", got)
	}
}

func TestEnforceCharLimit_WordBoundary(t *testing.T) {
	post := strings.Repeat("word ", 70) // 350 chars
	got := EnforceCharLimit(post, 280)

	if CountRunes(got) > 280 {
		t.Errorf("EnforceCharLimit() length = %d, want <= 280", CountRunes(got))
	}
	if !strings.HasSuffix(got, Ellipsis) {
		t.Errorf("shortened post should end with ellipsis: %q", got)
	}
	if strings.Contains(got, "wor"+Ellipsis) {
		t.Errorf("should cut at word boundary, got %q", got)
	}
}

func TestEnforceCharLimit_NoWordBoundary(t *testing.T) {
	post := strings.Repeat("x", 400)
	got := EnforceCharLimit(post, 280)

	if CountRunes(got) > 280 {
		t.Errorf("EnforceCharLimit() length = %d, want <= 280", CountRunes(got))
	}
	if !strings.HasSuffix(got, Ellipsis) {
		t.Errorf("shortened post should end with ellipsis")
	}
}

func TestEnforceCharLimitBatch(t *testing.T) {
	posts := []string{"ok", strings.Repeat("y", 300)}
	got := EnforceCharLimitBatch(posts, 280)

	if len(got) != 2 {
		t.Fatalf("batch length = %d, want 2", len(got))
	}
	if got[0] != "ok" {
		t.Errorf("short post changed: %q", got[0])
	}
	if CountRunes(got[1]) > 280 {
		t.Errorf("long post not limited: %d runes", CountRunes(got[1]))
	}
}
