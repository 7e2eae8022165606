// Package lexicon holds the static phoneme inventory: the mapping from
// practice words to their expected phoneme sequences, the simplification of
// ARPABET symbols into articulator classes, and the syllable breakdown used
// for visual display.
//
// Unknown words are a supported condition, not an error path the caller has
// to handle: [Lexicon.Resolve] first tries an exact lookup, then a phonetic
// nearest-known-word match (Double Metaphone candidate filtering ranked by
// Jaro-Winkler similarity), and finally falls back to a single placeholder
// unit so an analysis can always complete.
package lexicon

import (
	"errors"
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/speakbright/speakbright/pkg/types"
)

// ErrLexiconMiss is returned by [Lexicon.Lookup] for words with no phoneme
// mapping. Callers that must not fail use [Lexicon.Resolve] instead.
var ErrLexiconMiss = errors.New("word not found in lexicon")

// nearestThreshold is the minimum Jaro-Winkler similarity for a phonetic
// candidate to substitute for an unknown word.
const nearestThreshold = 0.85

// PlaceholderSymbol is the expected symbol of the single-unit sequence
// substituted for words that resolve to nothing.
const PlaceholderSymbol = "UNK"

// words maps each practice word to its expected phoneme sequence in
// ARPABET-style symbols.
var words = map[string][]string{
	"butterfly":  {"B", "AH", "T", "ER", "F", "L", "AY"},
	"rainbow":    {"R", "EY", "N", "B", "OW"},
	"hi":         {"HH", "AY"},
	"me":         {"M", "IY"},
	"sun":        {"S", "AH", "N"},
	"jumping":    {"JH", "AH", "M", "P", "IH", "NG"},
	"happy":      {"HH", "AE", "P", "IY"},
	"red":        {"R", "EH", "D"},
	"run":        {"R", "AH", "N"},
	"rain":       {"R", "EY", "N"},
	"see":        {"S", "IY"},
	"sit":        {"S", "IH", "T"},
	"sea":        {"S", "IY"},
	"think":      {"TH", "IH", "NG", "K"},
	"thank":      {"TH", "AE", "NG", "K"},
	"three":      {"TH", "R", "IY"},
	"like":       {"L", "AY", "K"},
	"let":        {"L", "EH", "T"},
	"look":       {"L", "UH", "K"},
	"fun":        {"F", "AH", "N"},
	"find":       {"F", "AY", "N", "D"},
	"fall":       {"F", "AO", "L"},
	"strawberry": {"S", "T", "R", "AO", "B", "EH", "R", "IY"},
	"telephone":  {"T", "EH", "L", "AH", "F", "OW", "N"},
}

// classes maps ARPABET symbols to the simplified articulator class used for
// feedback lookups and progress grouping. Vowels collapse to a single class
// because they rarely need articulation correction in this therapy model.
var classes = map[string]string{
	"R": "r", "S": "s", "TH": "th", "DH": "th", "L": "l",
	"F": "f", "V": "v",
	"B": "b", "P": "p", "M": "m",
	"T": "t", "D": "d", "N": "n",
	"K": "k", "G": "g", "NG": "ng",
	"CH": "ch", "JH": "j",
	"HH": "h", "W": "w", "Y": "y",
	"AH": "vowel", "AE": "vowel", "EH": "vowel",
	"IH": "vowel", "IY": "vowel", "AY": "vowel",
	"OW": "vowel", "UH": "vowel", "EY": "vowel",
	"AO": "vowel", "ER": "vowel",
}

// syllables maps words to their display syllable breakdown. Words without an
// entry display as a single chunk.
var syllables = map[string][]string{
	"butterfly":  {"but", "ter", "fly"},
	"rainbow":    {"rain", "bow"},
	"happy":      {"hap", "py"},
	"jumping":    {"jump", "ing"},
	"telephone":  {"tel", "e", "phone"},
	"strawberry": {"straw", "ber", "ry"},
}

// Level groups practice words by difficulty for the word-list endpoint.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// wordLevels assigns each practice word a difficulty level.
var wordLevels = map[Level][]string{
	LevelBeginner:     {"hi", "me", "sun", "see", "run", "fun"},
	LevelIntermediate: {"rainbow", "butterfly", "jumping", "happy", "think", "thank"},
	LevelAdvanced:     {"strawberry", "telephone", "three"},
}

// Lexicon resolves words to phoneme sequences. It is read-only after
// construction and safe for concurrent use.
type Lexicon struct {
	words     map[string][]string
	classes   map[string]string
	syllables map[string][]string
	known     []string // sorted-insertion word list for phonetic matching
}

// New returns a Lexicon backed by the built-in English inventory.
func New() *Lexicon {
	known := make([]string, 0, len(words))
	for w := range words {
		known = append(known, w)
	}
	return &Lexicon{
		words:     words,
		classes:   classes,
		syllables: syllables,
		known:     known,
	}
}

// Lookup returns the expected phoneme sequence for word, or [ErrLexiconMiss]
// if the word has no mapping. Matching is case-insensitive.
func (l *Lexicon) Lookup(word string) ([]types.PhonemeUnit, error) {
	symbols, ok := l.words[normalize(word)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrLexiconMiss, word)
	}
	return l.toUnits(symbols), nil
}

// Resolve returns a phoneme sequence for word, degrading through three
// stages: exact lookup, phonetic nearest-known-word substitution, and a
// single-unit placeholder. The second return value is the word the sequence
// actually belongs to (equal to word unless a phonetic substitute was used).
// Resolve never fails.
func (l *Lexicon) Resolve(word string) ([]types.PhonemeUnit, string) {
	w := normalize(word)
	if symbols, ok := l.words[w]; ok {
		return l.toUnits(symbols), w
	}

	if nearest, ok := l.nearest(w); ok {
		return l.toUnits(l.words[nearest]), nearest
	}

	return []types.PhonemeUnit{{Expected: PlaceholderSymbol, Class: strings.ToLower(PlaceholderSymbol)}}, w
}

// Class returns the simplified articulator class for an ARPABET symbol.
// Unmapped symbols lower-case to themselves, mirroring the word's own
// spelling for display.
func (l *Lexicon) Class(symbol string) string {
	if c, ok := l.classes[strings.ToUpper(symbol)]; ok {
		return c
	}
	return strings.ToLower(symbol)
}

// Syllables returns the display syllable breakdown for word. Words without a
// table entry are returned as a single syllable.
func (l *Lexicon) Syllables(word string) []string {
	if s, ok := l.syllables[normalize(word)]; ok {
		return s
	}
	return []string{normalize(word)}
}

// WordsByLevel returns the practice words for a difficulty level along with
// their phoneme class sequences. Unknown levels return nil.
func (l *Lexicon) WordsByLevel(level Level) []WordEntry {
	list, ok := wordLevels[level]
	if !ok {
		return nil
	}
	entries := make([]WordEntry, 0, len(list))
	for _, w := range list {
		units := l.toUnits(l.words[w])
		cls := make([]string, len(units))
		for i, u := range units {
			cls[i] = u.Class
		}
		entries = append(entries, WordEntry{Word: w, Phonemes: cls})
	}
	return entries
}

// Levels returns all difficulty levels in ascending order.
func Levels() []Level {
	return []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}
}

// WordEntry is one practice word with its simplified phoneme classes.
type WordEntry struct {
	Word     string   `json:"word"`
	Phonemes []string `json:"phonemes"`
}

// nearest finds the known word most phonetically similar to w. A candidate
// must share a Double Metaphone code with w and score at least
// nearestThreshold on Jaro-Winkler similarity.
func (l *Lexicon) nearest(w string) (string, bool) {
	p1, s1 := matchr.DoubleMetaphone(w)

	var (
		best      string
		bestScore float64
	)
	for _, cand := range l.known {
		cp, cs := matchr.DoubleMetaphone(cand)
		if !codesOverlap(p1, s1, cp, cs) {
			continue
		}
		if score := matchr.JaroWinkler(w, cand, false); score >= nearestThreshold && score > bestScore {
			best, bestScore = cand, score
		}
	}
	return best, best != ""
}

// codesOverlap reports whether any non-empty metaphone code is shared
// between the two (primary, secondary) pairs.
func codesOverlap(p1, s1, p2, s2 string) bool {
	for _, a := range [2]string{p1, s1} {
		if a == "" {
			continue
		}
		if a == p2 || a == s2 {
			return true
		}
	}
	return false
}

func (l *Lexicon) toUnits(symbols []string) []types.PhonemeUnit {
	units := make([]types.PhonemeUnit, len(symbols))
	for i, s := range symbols {
		units[i] = types.PhonemeUnit{Expected: s, Class: l.Class(s)}
	}
	return units
}

func normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
