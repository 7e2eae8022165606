// Package heuristic provides the difficulty-conditioned fallback score
// generator used whenever no acoustic backend is configured or the backend
// call fails.
//
// The generator encodes a domain prior rather than a trained model: the
// sounds children most commonly struggle with (r, s, th, l) draw from a
// lower confidence band than everything else. The random source is injected
// so production and test runs share the same code path — tests pass a fixed
// seed to make draws deterministic.
package heuristic

import (
	"math/rand"
	"sync"
	"time"
)

// Confidence bands per difficulty class.
const (
	difficultLow  = 0.60
	difficultHigh = 0.85
	typicalLow    = 0.75
	typicalHigh   = 0.95
)

// difficult is the fixed set of articulator classes that are intrinsically
// harder for children.
var difficult = map[string]bool{
	"r": true, "s": true, "th": true, "l": true,
}

// Option is a functional option for configuring a [Generator].
type Option func(*Generator)

// WithSeed fixes the random seed so draws are reproducible. Without it the
// generator seeds from the current time.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand injects a fully custom random source.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		g.rng = rng
	}
}

// Generator draws per-phoneme base confidences. Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Generator configured with the supplied options.
func New(opts ...Option) *Generator {
	g := &Generator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Draw samples a base confidence for the given articulator class: uniform in
// [0.60, 0.85] for the difficult set, [0.75, 0.95] otherwise.
func (g *Generator) Draw(class string) float64 {
	lo, hi := typicalLow, typicalHigh
	if difficult[class] {
		lo, hi = difficultLow, difficultHigh
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return lo + g.rng.Float64()*(hi-lo)
}

// Jitter samples a symmetric perturbation in [-bound, +bound]. The GOP
// scorer adds it to table-derived confidences for naturalism.
func (g *Generator) Jitter(bound float64) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return (g.rng.Float64()*2 - 1) * bound
}

// Difficult reports whether class belongs to the fixed difficult set.
func Difficult(class string) bool {
	return difficult[class]
}
