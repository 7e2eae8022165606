// Package acoustic defines the Recognizer interface for phoneme-level
// acoustic backends.
//
// A Recognizer wraps a pronunciation-assessment service (e.g., Speechace) and
// exposes a uniform batch interface: given a decoded utterance and the target
// text, it returns the backend's best-aligned detected phoneme and an
// unbounded acoustic likelihood per expected position.
//
// Absence or failure of a Recognizer is a supported, expected runtime
// condition — the scoring layer falls back to the heuristic generator and the
// end user never sees the difference. Implementations must be safe for
// concurrent use.
package acoustic

import (
	"context"
	"errors"

	"github.com/speakbright/speakbright/pkg/audio"
)

// ErrBackendUnavailable is returned when the backend cannot be reached,
// times out, or returns an unusable response. Callers treat it as a signal
// to fall back, never as a request failure.
var ErrBackendUnavailable = errors.New("acoustic backend unavailable")

// Alignment is the backend's assessment of one expected phoneme position.
type Alignment struct {
	// Phoneme is the expected phoneme symbol at this position.
	Phoneme string

	// Detected is the backend's best guess for the sound actually produced.
	Detected string

	// AcousticScore is the backend's unbounded likelihood for this position.
	// Scale is backend-specific; the scorer min-max-normalizes it. Zero when
	// the backend reports no per-phoneme likelihood.
	AcousticScore float64
}

// Recognition is the result of one backend call.
type Recognition struct {
	// Alignments holds one entry per expected phoneme, in word order. May be
	// shorter than the expected sequence if the backend dropped positions;
	// the scorer pads missing positions with the heuristic path.
	Alignments []Alignment
}

// Recognizer is the abstraction over any phoneme-level acoustic backend.
//
// Recognize must respect ctx cancellation: the scoring layer bounds every
// call with a timeout so a slow backend cannot stall the pipeline.
type Recognizer interface {
	Recognize(ctx context.Context, signal audio.Signal, targetText string) (Recognition, error)
}
