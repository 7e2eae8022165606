// Package progress tracks each user's per-phoneme history and classifies
// session-over-baseline improvement.
//
// The comparison is always against the user's own history, never an absolute
// standard. Baselines are derived on demand from the stored records rather
// than cached, so they always reflect the latest history.
package progress

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/speakbright/speakbright/internal/feedback"
	"github.com/speakbright/speakbright/pkg/types"
)

// ErrHistoryUnavailable indicates the persistence collaborator could not be
// read. Callers treat it as "no history": a user must never be blocked from
// practicing because their history is unreachable.
var ErrHistoryUnavailable = errors.New("progress history unavailable")

// ImprovementThreshold is the minimum session-over-baseline delta for a
// phoneme class to be classified as improved. An explicit, non-statistical
// cutoff keeps the classification legible to non-technical users.
const ImprovementThreshold = 0.05

// Store is the persistence collaborator for user progress logs. The log is
// append-only: no update or delete operations exist.
type Store interface {
	// Append adds record to the user's log.
	Append(ctx context.Context, userID string, record types.ProgressRecord) error

	// ReadHistory returns the user's records in append order. An empty
	// history is a nil or empty slice, not an error.
	ReadHistory(ctx context.Context, userID string) ([]types.ProgressRecord, error)
}

// Summary is the outcome of comparing one session against a user's history.
type Summary struct {
	// IsFirstAttempt is true iff the user has no stored history. It is never
	// inferred from a zero or default baseline.
	IsFirstAttempt bool `json:"is_first_attempt"`

	// Improved lists phoneme classes whose confidence beat the baseline by
	// at least [ImprovementThreshold], in word order.
	Improved []string `json:"improved"`

	// NeedsMorePractice lists phoneme classes below the corrective
	// threshold, in word order.
	NeedsMorePractice []string `json:"needs_more_practice"`

	// Baseline maps phoneme class to the user's historical mean confidence.
	// Empty on a first attempt.
	Baseline map[string]float64 `json:"baseline,omitempty"`
}

// Tracker computes progress summaries and appends completed sessions.
type Tracker struct {
	store Store
}

// NewTracker returns a Tracker backed by store.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

// Compute compares the session's scores against the user's historical
// baselines. A history read failure is absorbed: the session is treated as a
// first attempt and the failure is logged, never surfaced to the user.
func (t *Tracker) Compute(ctx context.Context, userID string, scores []types.PhonemeScore) Summary {
	history, err := t.store.ReadHistory(ctx, userID)
	if err != nil {
		slog.Warn("progress history unavailable, treating as first attempt",
			"user_id", userID, "error", err)
		history = nil
	}

	s := Summary{
		NeedsMorePractice: needsPractice(scores),
	}
	if len(history) == 0 {
		s.IsFirstAttempt = true
		return s
	}

	s.Baseline = Baselines(history)
	for _, ps := range scores {
		base, ok := s.Baseline[ps.Phoneme.Class]
		if !ok {
			continue
		}
		if ps.Confidence-base >= ImprovementThreshold {
			s.Improved = append(s.Improved, ps.Phoneme.Class)
		}
	}
	return s
}

// Record builds the privacy-preserving projection of result and appends it to
// the user's log. Only the per-class confidence and the improvement
// classification cross the privacy boundary; detected symbols and raw scores
// never do.
func (t *Tracker) Record(ctx context.Context, userID string, result types.SessionResult, summary Summary) error {
	return t.store.Append(ctx, userID, Project(result, summary))
}

// Project converts a SessionResult into its lossy ProgressRecord form.
func Project(result types.SessionResult, summary Summary) types.ProgressRecord {
	confidences := make(map[string]float64, len(result.PhonemeScores))
	for _, ps := range result.PhonemeScores {
		confidences[ps.Phoneme.Class] = ps.Confidence
	}
	ts := result.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return types.ProgressRecord{
		Timestamp:     ts,
		Word:          result.TargetWord,
		OverallScore:  result.OverallScore,
		Confidences:   confidences,
		Improved:      summary.Improved,
		NeedsPractice: summary.NeedsMorePractice,
	}
}

// Baselines groups history by phoneme class and returns each class's mean
// confidence.
func Baselines(history []types.ProgressRecord) map[string]float64 {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, rec := range history {
		for class, c := range rec.Confidences {
			sums[class] += c
			counts[class]++
		}
	}
	means := make(map[string]float64, len(sums))
	for class, sum := range sums {
		means[class] = sum / float64(counts[class])
	}
	return means
}

// HistorySummary condenses a user's history for the progress endpoint:
// session count, latest and average overall scores, practiced words, and
// per-class baselines.
type HistorySummary struct {
	Sessions       int                `json:"sessions"`
	LatestScore    int                `json:"latest_score,omitempty"`
	LatestWord     string             `json:"latest_word,omitempty"`
	AverageScore   int                `json:"average_score,omitempty"`
	WordsPracticed []string           `json:"words_practiced"`
	Baselines      map[string]float64 `json:"baselines"`
	Practicing     []string           `json:"practicing"`
}

// Summarize builds a HistorySummary from stored records.
func Summarize(history []types.ProgressRecord) HistorySummary {
	s := HistorySummary{
		Sessions:       len(history),
		WordsPracticed: []string{},
		Baselines:      Baselines(history),
	}
	if len(history) > 0 {
		last := history[len(history)-1]
		s.LatestScore = last.OverallScore
		s.LatestWord = last.Word
	}

	var total int
	words := map[string]bool{}
	practicing := map[string]bool{}
	for _, rec := range history {
		total += rec.OverallScore
		if rec.Word != "" && !words[rec.Word] {
			words[rec.Word] = true
			s.WordsPracticed = append(s.WordsPracticed, rec.Word)
		}
		for _, class := range rec.NeedsPractice {
			practicing[class] = true
		}
	}
	if len(history) > 0 {
		s.AverageScore = total / len(history)
	}
	for class := range practicing {
		s.Practicing = append(s.Practicing, class)
	}
	sort.Strings(s.Practicing)
	return s
}

func needsPractice(scores []types.PhonemeScore) []string {
	var out []string
	for _, ps := range scores {
		if ps.Confidence < feedback.Corrective {
			out = append(out, ps.Phoneme.Class)
		}
	}
	return out
}
