package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/speakbright/speakbright/pkg/audio"
	"github.com/speakbright/speakbright/pkg/provider/acoustic"
)

// ErrAllBackendsFailed is returned when every recognizer in a
// [RecognizerFallback] fails or has an open breaker.
var ErrAllBackendsFailed = errors.New("all acoustic backends failed")

// Compile-time interface assertion.
var _ acoustic.Recognizer = (*RecognizerFallback)(nil)

// recognizerEntry pairs a recognizer with its dedicated breaker.
type recognizerEntry struct {
	name    string
	backend acoustic.Recognizer
	breaker *CircuitBreaker
}

// RecognizerFallback implements [acoustic.Recognizer] with automatic
// failover across multiple backends. Each backend has its own circuit
// breaker; a tripped or failing entry is skipped in favour of the next.
//
// Failure of every entry is reported as [acoustic.ErrBackendUnavailable] so
// the scoring layer's heuristic fallback engages exactly as it would with no
// backend configured at all.
type RecognizerFallback struct {
	entries []recognizerEntry
	breaker BreakerConfig
}

// NewRecognizerFallback creates a fallback chain with primary as the
// preferred backend. Additional backends are registered via
// [RecognizerFallback.Add] and tried in registration order.
func NewRecognizerFallback(primaryName string, primary acoustic.Recognizer, breaker BreakerConfig) *RecognizerFallback {
	f := &RecognizerFallback{breaker: breaker}
	f.Add(primaryName, primary)
	return f
}

// Add appends a backend to the chain.
func (f *RecognizerFallback) Add(name string, backend acoustic.Recognizer) {
	cfg := f.breaker
	cfg.Name = name
	f.entries = append(f.entries, recognizerEntry{
		name:    name,
		backend: backend,
		breaker: NewCircuitBreaker(cfg),
	})
}

// Recognize tries each backend in order until one succeeds.
func (f *RecognizerFallback) Recognize(ctx context.Context, signal audio.Signal, targetText string) (acoustic.Recognition, error) {
	var lastErr error
	for i := range f.entries {
		entry := &f.entries[i]

		var rec acoustic.Recognition
		err := entry.breaker.Do(func() error {
			var innerErr error
			rec, innerErr = entry.backend.Recognize(ctx, signal, targetText)
			return innerErr
		})
		if err == nil {
			return rec, nil
		}
		lastErr = err

		if errors.Is(err, ErrCircuitOpen) {
			slog.Debug("skipping acoustic backend (circuit open)", "backend", entry.name)
		} else {
			slog.Warn("acoustic backend failed, trying next",
				"backend", entry.name, "error", err)
		}
	}
	return acoustic.Recognition{}, fmt.Errorf("%w: %w: %v", acoustic.ErrBackendUnavailable, ErrAllBackendsFailed, lastErr)
}
