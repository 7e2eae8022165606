package feedback

import (
	"regexp"
	"strings"
)

// bannedWords maps negative words to their positive replacements. The filter
// is the last line of defense before text reaches a child, so it runs on
// every outgoing string, templated or not. Replacements must themselves be
// free of banned words so a second pass is a no-op.
var bannedWords = map[string]string{
	"wrong":     "let's practice",
	"bad":       "let's practice",
	"incorrect": "let's practice",
	"failed":    "tried hard",
	"poor":      "growing",
	"terrible":  "let's practice",
	"error":     "practice moment",
	"mistake":   "practice moment",
	"can't":     "will soon",
	"unable":    "learning",
}

// FilterOption configures a [Filter].
type FilterOption func(*Filter)

// WithWordBoundary restricts matching to whole words. The default is plain
// substring matching, which also rewrites banned words embedded in larger
// words; both behaviors are supported because downstream text sources differ
// in how they compose messages.
func WithWordBoundary() FilterOption {
	return func(f *Filter) {
		f.wordBoundary = true
	}
}

// rule is one banned word with its compiled matcher.
type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Filter rewrites banned negative language into encouraging alternatives.
// Matching is case-insensitive. A Filter is immutable after construction and
// safe for concurrent use.
type Filter struct {
	wordBoundary bool
	rules        []rule
}

// NewFilter compiles the banned-word rules with the given options.
func NewFilter(opts ...FilterOption) *Filter {
	f := &Filter{}
	for _, o := range opts {
		o(f)
	}
	f.rules = make([]rule, 0, len(bannedWords))
	for word, replacement := range bannedWords {
		expr := "(?i)" + regexp.QuoteMeta(word)
		if f.wordBoundary {
			expr = `(?i)\b` + regexp.QuoteMeta(word) + `\b`
		}
		f.rules = append(f.rules, rule{
			pattern:     regexp.MustCompile(expr),
			replacement: replacement,
		})
	}
	return f
}

// Clean returns s with every banned word replaced. Clean is idempotent:
// running it on already-cleaned text changes nothing.
func (f *Filter) Clean(s string) string {
	if s == "" {
		return s
	}
	for _, r := range f.rules {
		if r.pattern.MatchString(s) {
			s = r.pattern.ReplaceAllString(s, r.replacement)
		}
	}
	return s
}

// CleanAll applies [Filter.Clean] to every string in place and returns the
// slice for chaining.
func (f *Filter) CleanAll(ss []string) []string {
	for i, s := range ss {
		ss[i] = f.Clean(s)
	}
	return ss
}

// Contains reports whether s still contains any banned word under this
// filter's matching rules. Used by tests and by the policy engine's
// scan-for-absence check.
func (f *Filter) Contains(s string) bool {
	ls := strings.ToLower(s)
	for _, r := range f.rules {
		if r.pattern.MatchString(ls) {
			return true
		}
	}
	return false
}
