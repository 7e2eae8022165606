// Package scoring turns a decoded audio signal and a target word into
// normalized per-phoneme confidences.
//
// The pipeline inside [Scorer.Score] is fixed: resolve the word's expected
// phoneme sequence, obtain a base score per phoneme (acoustic backend through
// the Goodness-of-Pronunciation table when one is configured, the
// difficulty-conditioned heuristic otherwise), apply the dialect-neutrality
// boost, and normalize into the canonical [0.50, 1.00] band. Backend failure
// is never a hard error; the heuristic path is a mandatory fallback so the
// product degrades gracefully without the external dependency.
package scoring

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/speakbright/speakbright/internal/lexicon"
	"github.com/speakbright/speakbright/internal/observe"
	"github.com/speakbright/speakbright/pkg/audio"
	"github.com/speakbright/speakbright/pkg/provider/acoustic"
	"github.com/speakbright/speakbright/pkg/provider/acoustic/heuristic"
	"github.com/speakbright/speakbright/pkg/types"
)

// DefaultBackendTimeout bounds a single acoustic backend call. A slow backend
// must not stall an analysis past what a child will wait for.
const DefaultBackendTimeout = 10 * time.Second

// Option is a functional option for configuring a [Scorer].
type Option func(*Scorer)

// WithBackend attaches a real acoustic backend. Without one every analysis
// takes the heuristic path.
func WithBackend(backend acoustic.Recognizer) Option {
	return func(s *Scorer) {
		s.backend = backend
	}
}

// WithGenerator replaces the heuristic fallback generator; tests inject a
// seeded one for deterministic draws.
func WithGenerator(gen *heuristic.Generator) Option {
	return func(s *Scorer) {
		s.gen = gen
	}
}

// WithBackendTimeout overrides [DefaultBackendTimeout].
func WithBackendTimeout(d time.Duration) Option {
	return func(s *Scorer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMetrics replaces the default metric instruments.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Scorer) {
		if m != nil {
			s.metrics = m
		}
	}
}

// Scorer produces per-phoneme confidences for a target word. Safe for
// concurrent use.
type Scorer struct {
	lex      *lexicon.Lexicon
	backend  acoustic.Recognizer
	gen      *heuristic.Generator
	adjuster Adjuster
	timeout  time.Duration
	metrics  *observe.Metrics
}

// New returns a Scorer over the given lexicon, configured with opts.
func New(lex *lexicon.Lexicon, opts ...Option) *Scorer {
	s := &Scorer{
		lex:     lex,
		gen:     heuristic.New(),
		timeout: DefaultBackendTimeout,
		metrics: observe.DefaultMetrics(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Score scores targetWord against signal. The returned slice has one entry
// per expected phoneme in word order, each already dialect-adjusted and
// normalized. The second return value is the word the scores belong to (a
// phonetic substitute or placeholder when targetWord is unknown). Score never
// fails: unknown words degrade to a placeholder sequence and backend failures
// degrade to the heuristic path.
func (s *Scorer) Score(ctx context.Context, signal audio.Signal, targetWord string) ([]types.PhonemeScore, string) {
	units, resolved := s.lex.Resolve(targetWord)

	alignments, lo, hi := s.recognize(ctx, signal, resolved)

	scores := make([]types.PhonemeScore, len(units))
	for i, unit := range units {
		scores[i] = s.scoreUnit(unit, alignments, i, lo, hi)
	}
	return scores, resolved
}

// recognize calls the configured backend and returns its alignments plus the
// min and max acoustic likelihood across the utterance. A nil slice means the
// heuristic path applies to every position.
func (s *Scorer) recognize(ctx context.Context, signal audio.Signal, word string) ([]acoustic.Alignment, float64, float64) {
	if s.backend == nil {
		s.metrics.HeuristicFallbacks.Add(ctx, 1)
		return nil, 0, 0
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec, err := s.backend.Recognize(ctx, signal, word)
	if err != nil {
		slog.Warn("acoustic backend unavailable, using heuristic scores",
			"word", word, "error", err)
		s.metrics.RecordBackendRequest(ctx, "acoustic", "error")
		s.metrics.RecordBackendError(ctx, "acoustic")
		s.metrics.HeuristicFallbacks.Add(ctx, 1)
		return nil, 0, 0
	}
	s.metrics.RecordBackendRequest(ctx, "acoustic", "ok")

	lo, hi := likelihoodRange(rec.Alignments)
	return rec.Alignments, lo, hi
}

// scoreUnit produces the final score for the expected phoneme at position i.
// Positions the backend did not align (or when no backend ran) draw from the
// heuristic generator with detected equal to expected.
func (s *Scorer) scoreUnit(unit types.PhonemeUnit, alignments []acoustic.Alignment, i int, lo, hi float64) types.PhonemeScore {
	detected := unit.Expected
	var raw float64

	if i < len(alignments) {
		a := alignments[i]
		if a.Detected != "" {
			detected = strings.ToUpper(a.Detected)
		}
		raw = gopConfidence(unit.Expected, unit.Class, detected, s.lex.Class(detected),
			a.AcousticScore, lo, hi, s.gen.Jitter(gopJitterBound))
	} else {
		raw = s.gen.Draw(unit.Class)
	}

	adjusted := s.adjuster.Adjust(unit.Class, s.lex.Class(detected), raw)
	return types.PhonemeScore{
		Phoneme:    unit,
		Detected:   detected,
		RawScore:   raw,
		Confidence: Normalize(adjusted),
	}
}

func likelihoodRange(alignments []acoustic.Alignment) (lo, hi float64) {
	for i, a := range alignments {
		if i == 0 || a.AcousticScore < lo {
			lo = a.AcousticScore
		}
		if i == 0 || a.AcousticScore > hi {
			hi = a.AcousticScore
		}
	}
	return lo, hi
}
