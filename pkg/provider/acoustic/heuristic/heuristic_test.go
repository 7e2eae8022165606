package heuristic_test

import (
	"testing"

	"github.com/speakbright/speakbright/pkg/provider/acoustic/heuristic"
)

func TestDraw_Bands(t *testing.T) {
	t.Parallel()

	g := heuristic.New(heuristic.WithSeed(42))

	for range 500 {
		if c := g.Draw("r"); c < 0.60 || c > 0.85 {
			t.Fatalf("difficult class draw %f outside [0.60, 0.85]", c)
		}
		if c := g.Draw("vowel"); c < 0.75 || c > 0.95 {
			t.Fatalf("typical class draw %f outside [0.75, 0.95]", c)
		}
	}
}

func TestDraw_Deterministic(t *testing.T) {
	t.Parallel()

	a := heuristic.New(heuristic.WithSeed(7))
	b := heuristic.New(heuristic.WithSeed(7))

	for i := range 50 {
		if av, bv := a.Draw("s"), b.Draw("s"); av != bv {
			t.Fatalf("draw %d diverged with identical seeds: %f vs %f", i, av, bv)
		}
	}
}

func TestJitter_Bounded(t *testing.T) {
	t.Parallel()

	g := heuristic.New(heuristic.WithSeed(1))
	for range 500 {
		if j := g.Jitter(0.03); j < -0.03 || j > 0.03 {
			t.Fatalf("jitter %f outside [-0.03, 0.03]", j)
		}
	}
}

func TestDifficult(t *testing.T) {
	t.Parallel()

	for _, c := range []string{"r", "s", "th", "l"} {
		if !heuristic.Difficult(c) {
			t.Errorf("Difficult(%q) = false, want true", c)
		}
	}
	for _, c := range []string{"vowel", "m", "b", ""} {
		if heuristic.Difficult(c) {
			t.Errorf("Difficult(%q) = true, want false", c)
		}
	}
}
