package feedback_test

import (
	"strings"
	"testing"

	"github.com/speakbright/speakbright/internal/feedback"
)

func TestFilter_Clean(t *testing.T) {
	t.Parallel()

	f := feedback.NewFilter()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"banned word replaced", "That was wrong!", "That was let's practice!"},
		{"case-insensitive", "That was WRONG!", "That was let's practice!"},
		{"mixed case", "Too Bad.", "Too let's practice."},
		{"apostrophe word", "You can't do it", "You will soon do it"},
		{"multiple banned words", "bad and terrible", "let's practice and let's practice"},
		{"clean text untouched", "Great job on the 's' sound!", "Great job on the 's' sound!"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := f.Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Default matching is substring: banned words embedded in larger words are
// rewritten too. Pinned deliberately; the word-boundary mode is opt-in.
func TestFilter_SubstringSemantics(t *testing.T) {
	t.Parallel()

	f := feedback.NewFilter()
	got := f.Clean("a badge of honor")
	if got == "a badge of honor" {
		t.Error("default filter should rewrite substrings inside larger words")
	}
	if !strings.Contains(got, "let's practice") {
		t.Errorf("Clean = %q, want embedded replacement", got)
	}
}

func TestFilter_WordBoundary(t *testing.T) {
	t.Parallel()

	f := feedback.NewFilter(feedback.WithWordBoundary())

	if got := f.Clean("a badge of honor"); got != "a badge of honor" {
		t.Errorf("word-boundary filter rewrote embedded match: %q", got)
	}
	if got := f.Clean("that is bad"); got != "that is let's practice" {
		t.Errorf("word-boundary filter missed whole word: %q", got)
	}
}

func TestFilter_Idempotent(t *testing.T) {
	t.Parallel()

	f := feedback.NewFilter()

	inputs := []string{
		"wrong bad incorrect failed poor terrible error mistake can't unable",
		"That was WRONG and a Mistake",
		"clean text stays clean",
	}
	for _, in := range inputs {
		once := f.Clean(in)
		twice := f.Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent: %q -> %q -> %q", in, once, twice)
		}
		if f.Contains(once) {
			t.Errorf("banned word survived one pass: %q -> %q", in, once)
		}
	}
}

func TestFilter_CleanAll(t *testing.T) {
	t.Parallel()

	f := feedback.NewFilter()
	got := f.CleanAll([]string{"so bad", "all good"})
	if got[0] != "so let's practice" || got[1] != "all good" {
		t.Errorf("CleanAll = %v", got)
	}
}
