// Package types defines the shared domain types used across all SpeakBright
// packages.
//
// These types form the lingua franca between the lexicon, the acoustic
// scorer, the feedback policy engine, and the progress tracker. They are
// intentionally minimal — each package defines its own internal types, but
// cross-cutting data structures live here to avoid circular imports.
package types

import "time"

// PhonemeUnit is the canonical identity of a single sound to be scored.
// Units are immutable and sourced from the lexicon.
type PhonemeUnit struct {
	// Expected is the expected phoneme symbol in ARPABET-style notation
	// (e.g., "R", "TH", "AH").
	Expected string

	// Class is the simplified articulator class shown to users and used
	// for feedback lookups and progress grouping (e.g., "r", "th", "vowel").
	Class string
}

// PhonemeScore is the scored outcome for one expected phoneme in one
// analysis pass. It is immutable after normalization.
//
// Only Confidence survives into persisted history; Detected and RawScore are
// request-scoped diagnostics and must never cross the privacy boundary into
// a ProgressRecord.
type PhonemeScore struct {
	// Phoneme identifies the sound that was expected at this position.
	Phoneme PhonemeUnit

	// Detected is the acoustic model's best guess for what was actually
	// produced. Equal to the expected symbol on the heuristic path.
	Detected string

	// RawScore is the pre-normalization score produced by the scorer.
	RawScore float64

	// Confidence is the normalized score. Always within [0.50, 1.00] after
	// normalization, rounded to two decimals.
	Confidence float64
}

// SessionResult is the complete outcome of one analysis pass. It is owned by
// the pipeline for the duration of the call, then handed to the progress
// tracker for persistence and to the caller for response assembly.
type SessionResult struct {
	// SessionID is an opaque unique identifier for this analysis.
	SessionID string

	// TargetWord is the word the user practiced.
	TargetWord string

	// PhonemeScores holds one entry per expected phoneme, in word order.
	PhonemeScores []PhonemeScore

	// OverallScore is round(mean(confidence) × 100), in [0, 100].
	OverallScore int

	// Timestamp is when the analysis completed.
	Timestamp time.Time
}

// ProgressRecord is the lossy, privacy-preserving projection of a
// SessionResult that is persisted to a user's history. It deliberately drops
// detected symbols and raw scores: nothing finer-grained than per-class
// confidence and the improved / needs-practice classification may cross into
// storage.
type ProgressRecord struct {
	// Timestamp is when the session was recorded.
	Timestamp time.Time `json:"timestamp"`

	// Word is the word practiced in the session.
	Word string `json:"word"`

	// OverallScore is the session's 0–100 score.
	OverallScore int `json:"overall_score"`

	// Confidences maps phoneme class to the normalized confidence achieved
	// in this session. This is the only acoustic-derived datum permitted in
	// history; it is what baselines are computed from.
	Confidences map[string]float64 `json:"confidences"`

	// Improved lists phoneme classes that beat the user's own baseline.
	Improved []string `json:"improved"`

	// NeedsPractice lists phoneme classes below the corrective threshold.
	NeedsPractice []string `json:"needs_practice"`
}
