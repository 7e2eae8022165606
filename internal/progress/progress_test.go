package progress_test

import (
	"context"
	"encoding/json"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/speakbright/speakbright/internal/progress"
	"github.com/speakbright/speakbright/pkg/types"
)

func phonemeScore(symbol, class string, confidence float64) types.PhonemeScore {
	return types.PhonemeScore{
		Phoneme:    types.PhonemeUnit{Expected: symbol, Class: class},
		Detected:   symbol,
		RawScore:   confidence,
		Confidence: confidence,
	}
}

func record(word string, confidences map[string]float64) types.ProgressRecord {
	return types.ProgressRecord{
		Timestamp:   time.Now().UTC(),
		Word:        word,
		Confidences: confidences,
	}
}

func TestCompute_FirstAttempt(t *testing.T) {
	t.Parallel()

	tracker := progress.NewTracker(progress.NewMemStore())
	s := tracker.Compute(context.Background(), "u1", []types.PhonemeScore{
		phonemeScore("S", "s", 0.80),
	})

	if !s.IsFirstAttempt {
		t.Error("empty history should be a first attempt")
	}
	if len(s.Improved) != 0 {
		t.Errorf("Improved = %v, want none on first attempt", s.Improved)
	}
	if len(s.Baseline) != 0 {
		t.Errorf("Baseline = %v, want empty on first attempt", s.Baseline)
	}
}

func TestCompute_ImprovementThreshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		current  float64
		improved bool
	}{
		{"exactly at threshold", 0.75, true},
		{"just below threshold", 0.749, false},
		{"well above", 0.82, true},
		{"equal to baseline", 0.70, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := progress.NewMemStore()
			ctx := context.Background()
			if err := store.Append(ctx, "u1", record("sun", map[string]float64{"s": 0.70})); err != nil {
				t.Fatalf("Append: %v", err)
			}

			s := progress.NewTracker(store).Compute(ctx, "u1", []types.PhonemeScore{
				phonemeScore("S", "s", tt.current),
			})
			if s.IsFirstAttempt {
				t.Fatal("history exists, should not be a first attempt")
			}
			got := slices.Contains(s.Improved, "s")
			if got != tt.improved {
				t.Errorf("improved = %v for current %f over baseline 0.70, want %v",
					got, tt.current, tt.improved)
			}
		})
	}
}

func TestCompute_BaselineIsMean(t *testing.T) {
	t.Parallel()

	store := progress.NewMemStore()
	ctx := context.Background()
	_ = store.Append(ctx, "u1", record("sun", map[string]float64{"s": 0.60}))
	_ = store.Append(ctx, "u1", record("see", map[string]float64{"s": 0.80}))

	s := progress.NewTracker(store).Compute(ctx, "u1", []types.PhonemeScore{
		phonemeScore("S", "s", 0.74),
	})
	if got := s.Baseline["s"]; math.Abs(got-0.70) > 1e-9 {
		t.Errorf("baseline[s] = %f, want 0.70", got)
	}
	// 0.74 over 0.70 is below the 0.05 threshold.
	if slices.Contains(s.Improved, "s") {
		t.Error("delta 0.04 should not classify as improved")
	}
}

func TestCompute_ClassWithoutBaselineSkipped(t *testing.T) {
	t.Parallel()

	store := progress.NewMemStore()
	ctx := context.Background()
	_ = store.Append(ctx, "u1", record("sun", map[string]float64{"s": 0.70}))

	s := progress.NewTracker(store).Compute(ctx, "u1", []types.PhonemeScore{
		phonemeScore("R", "r", 0.95),
	})
	if slices.Contains(s.Improved, "r") {
		t.Error("class with no history must not be classified as improved")
	}
}

// failStore always fails reads, simulating an unreachable persistence layer.
type failStore struct{}

func (failStore) Append(context.Context, string, types.ProgressRecord) error {
	return progress.ErrHistoryUnavailable
}

func (failStore) ReadHistory(context.Context, string) ([]types.ProgressRecord, error) {
	return nil, progress.ErrHistoryUnavailable
}

func TestCompute_ReadFailureTreatedAsFirstAttempt(t *testing.T) {
	t.Parallel()

	s := progress.NewTracker(failStore{}).Compute(context.Background(), "u1",
		[]types.PhonemeScore{phonemeScore("S", "s", 0.80)})
	if !s.IsFirstAttempt {
		t.Error("unreachable history must degrade to a first attempt")
	}
}

func TestProject_PrivacyProjection(t *testing.T) {
	t.Parallel()

	result := types.SessionResult{
		SessionID:  "sess-1",
		TargetWord: "sun",
		PhonemeScores: []types.PhonemeScore{
			{
				Phoneme:    types.PhonemeUnit{Expected: "S", Class: "s"},
				Detected:   "Z",
				RawScore:   0.61,
				Confidence: 0.62,
			},
		},
		OverallScore: 62,
		Timestamp:    time.Now().UTC(),
	}
	rec := progress.Project(result, progress.Summary{NeedsMorePractice: []string{"s"}})

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, banned := range []string{"detected", "detected_symbol", "raw_score", "session_id"} {
		if _, ok := fields[banned]; ok {
			t.Errorf("persisted record leaks %q", banned)
		}
	}
	if rec.Confidences["s"] != 0.62 {
		t.Errorf("Confidences[s] = %f, want 0.62", rec.Confidences["s"])
	}
	if rec.Word != "sun" {
		t.Errorf("Word = %q, want sun", rec.Word)
	}
}

func TestTracker_RecordAppends(t *testing.T) {
	t.Parallel()

	store := progress.NewMemStore()
	tracker := progress.NewTracker(store)
	ctx := context.Background()

	result := types.SessionResult{
		TargetWord:    "sun",
		PhonemeScores: []types.PhonemeScore{phonemeScore("S", "s", 0.80)},
		OverallScore:  80,
		Timestamp:     time.Now().UTC(),
	}
	if err := tracker.Record(ctx, "u1", result, progress.Summary{}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	history, err := store.ReadHistory(ctx, "u1")
	if err != nil {
		t.Fatalf("ReadHistory: %v", err)
	}
	if len(history) != 1 || history[0].Word != "sun" {
		t.Errorf("history = %+v, want one record for sun", history)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	history := []types.ProgressRecord{
		{Word: "sun", OverallScore: 70, Confidences: map[string]float64{"s": 0.60}, NeedsPractice: []string{"s"}},
		{Word: "see", OverallScore: 82, Confidences: map[string]float64{"s": 0.80}},
	}
	s := progress.Summarize(history)
	if s.Sessions != 2 {
		t.Errorf("Sessions = %d, want 2", s.Sessions)
	}
	if s.LatestScore != 82 || s.LatestWord != "see" {
		t.Errorf("latest = %d/%q, want 82/see", s.LatestScore, s.LatestWord)
	}
	if math.Abs(s.Baselines["s"]-0.70) > 1e-9 {
		t.Errorf("Baselines[s] = %f, want 0.70", s.Baselines["s"])
	}
	if s.AverageScore != 76 {
		t.Errorf("AverageScore = %d, want 76", s.AverageScore)
	}
	if !slices.Equal(s.WordsPracticed, []string{"sun", "see"}) {
		t.Errorf("WordsPracticed = %v, want [sun see]", s.WordsPracticed)
	}
	if !slices.Contains(s.Practicing, "s") {
		t.Errorf("Practicing = %v, want to include s", s.Practicing)
	}
}
