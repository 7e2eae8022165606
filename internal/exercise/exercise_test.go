package exercise_test

import (
	"slices"
	"testing"

	"github.com/speakbright/speakbright/internal/exercise"
	"github.com/speakbright/speakbright/pkg/types"
)

func score(class string, confidence float64) types.PhonemeScore {
	return types.PhonemeScore{
		Phoneme:    types.PhonemeUnit{Expected: class, Class: class},
		Confidence: confidence,
	}
}

func newSelector() *exercise.Selector {
	return exercise.NewSelector(exercise.WithSeed(1))
}

func TestSelect_NeverEmpty(t *testing.T) {
	t.Parallel()

	inputs := [][]types.PhonemeScore{
		nil,
		{score("s", 0.95), score("n", 0.90)},
		{score("s", 0.55)},
		{score("vowel", 0.60)},
	}
	for _, scores := range inputs {
		if plan := newSelector().Select(scores); len(plan) == 0 {
			t.Errorf("Select(%v) returned an empty plan", scores)
		}
	}
}

func TestSelect_AllClearGivesCelebration(t *testing.T) {
	t.Parallel()

	plan := newSelector().Select([]types.PhonemeScore{
		score("s", 0.92), score("vowel", 0.88), score("n", 0.90),
	})
	if len(plan) != 2 {
		t.Fatalf("got %d drills, want celebration + challenge", len(plan))
	}
	if plan[0].Type != "celebration" || plan[1].Type != "challenge" {
		t.Errorf("plan types = %s, %s", plan[0].Type, plan[1].Type)
	}
}

func TestSelect_WorstFirstProgression(t *testing.T) {
	t.Parallel()

	plan := newSelector().Select([]types.PhonemeScore{
		score("s", 0.70),
		score("r", 0.55),
		score("vowel", 0.90),
	})

	if plan[0].Type != "warmup" {
		t.Errorf("plan[0].Type = %s, want warmup", plan[0].Type)
	}
	if plan[len(plan)-1].Type != "coordination" {
		t.Errorf("last drill type = %s, want coordination", plan[len(plan)-1].Type)
	}

	var focus []string
	var levels []string
	for _, d := range plan {
		if d.Type != "articulation" {
			continue
		}
		if !slices.Contains(focus, d.Phoneme) {
			focus = append(focus, d.Phoneme)
		}
		if d.Phoneme == "r" {
			levels = append(levels, d.Level)
		}
	}
	// r scored lower than s, so its drills come first.
	if !slices.Equal(focus, []string{"r", "s"}) {
		t.Errorf("focus order = %v, want [r s]", focus)
	}
	if !slices.Equal(levels, []string{"isolation", "syllable", "word"}) {
		t.Errorf("r progression = %v, want isolation → syllable → word", levels)
	}
}

func TestSelect_CapsFocus(t *testing.T) {
	t.Parallel()

	plan := newSelector().Select([]types.PhonemeScore{
		score("r", 0.55), score("s", 0.58), score("th", 0.60), score("l", 0.62), score("f", 0.64),
	})

	classes := map[string]bool{}
	for _, d := range plan {
		if d.Type == "articulation" {
			classes[d.Phoneme] = true
		}
	}
	if len(classes) != exercise.MaxFocus {
		t.Errorf("focused classes = %d, want %d", len(classes), exercise.MaxFocus)
	}
	// The highest-confidence sounds are deferred, not drilled.
	if classes["l"] || classes["f"] {
		t.Errorf("classes %v should exclude l and f", classes)
	}
}

func TestSelect_DuplicateClassDrilledOnce(t *testing.T) {
	t.Parallel()

	plan := newSelector().Select([]types.PhonemeScore{
		score("s", 0.55), score("s", 0.60),
	})

	var isolationDrills int
	for _, d := range plan {
		if d.Type == "articulation" && d.Level == "isolation" {
			isolationDrills++
		}
	}
	if isolationDrills != 1 {
		t.Errorf("isolation drills = %d, want 1 for repeated class", isolationDrills)
	}
}

func TestHomeTips(t *testing.T) {
	t.Parallel()

	tips := exercise.HomeTips("r")
	if len(tips) < 2 {
		t.Fatalf("got %d tips, want class tip plus general tips", len(tips))
	}
	if !slices.ContainsFunc(tips, func(s string) bool {
		return s == "Practice 'r' words during car rides - 'red car', 'race', 'road'!"
	}) {
		t.Errorf("tips = %v, want r-specific tip", tips)
	}

	generic := exercise.HomeTips("zh")
	if len(generic) == 0 {
		t.Error("unknown class should still get general tips")
	}
}
