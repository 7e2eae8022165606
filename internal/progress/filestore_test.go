package progress_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/speakbright/speakbright/internal/progress"
	"github.com/speakbright/speakbright/pkg/types"
)

func TestFileStore_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "progress.jsonl")
	store := progress.NewFileStore(path)
	ctx := context.Background()

	rec := types.ProgressRecord{
		Timestamp:     time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Word:          "sun",
		OverallScore:  79,
		Confidences:   map[string]float64{"s": 0.55, "vowel": 0.90, "n": 0.92},
		NeedsPractice: []string{"s"},
	}
	if err := store.Append(ctx, "u1", rec); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append(ctx, "u2", types.ProgressRecord{Word: "red"}); err != nil {
		t.Fatalf("Append u2: %v", err)
	}

	history, err := store.ReadHistory(ctx, "u1")
	if err != nil {
		t.Fatalf("ReadHistory: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("got %d records for u1, want 1", len(history))
	}
	got := history[0]
	if got.Word != "sun" || got.OverallScore != 79 {
		t.Errorf("record = %+v", got)
	}
	if got.Confidences["s"] != 0.55 {
		t.Errorf("Confidences[s] = %f, want 0.55", got.Confidences["s"])
	}
	if !got.Timestamp.Equal(rec.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, rec.Timestamp)
	}
}

func TestFileStore_MissingFileIsEmptyHistory(t *testing.T) {
	t.Parallel()

	store := progress.NewFileStore(filepath.Join(t.TempDir(), "nope.jsonl"))
	history, err := store.ReadHistory(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ReadHistory: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("got %d records, want 0", len(history))
	}
}

func TestFileStore_AppendOrderPreserved(t *testing.T) {
	t.Parallel()

	store := progress.NewFileStore(filepath.Join(t.TempDir(), "progress.jsonl"))
	ctx := context.Background()

	words := []string{"sun", "see", "sit"}
	for _, w := range words {
		if err := store.Append(ctx, "u1", types.ProgressRecord{Word: w}); err != nil {
			t.Fatalf("Append %s: %v", w, err)
		}
	}

	history, err := store.ReadHistory(ctx, "u1")
	if err != nil {
		t.Fatalf("ReadHistory: %v", err)
	}
	for i, w := range words {
		if history[i].Word != w {
			t.Errorf("history[%d].Word = %q, want %q", i, history[i].Word, w)
		}
	}
}
