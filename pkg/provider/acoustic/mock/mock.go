// Package mock provides a configurable [acoustic.Recognizer] test double.
package mock

import (
	"context"
	"sync"

	"github.com/speakbright/speakbright/pkg/audio"
	"github.com/speakbright/speakbright/pkg/provider/acoustic"
)

// Compile-time assertion that Recognizer implements acoustic.Recognizer.
var _ acoustic.Recognizer = (*Recognizer)(nil)

// Recognizer is a scripted acoustic backend for tests. Configure Result and
// Err before use; calls are recorded for assertion. Safe for concurrent use.
type Recognizer struct {
	mu sync.Mutex

	// Result is returned by Recognize when Err is nil.
	Result acoustic.Recognition

	// Err, when non-nil, is returned by every Recognize call.
	Err error

	// RecognizeFunc, when non-nil, overrides Result/Err entirely.
	RecognizeFunc func(ctx context.Context, signal audio.Signal, targetText string) (acoustic.Recognition, error)

	calls []string
}

// Recognize implements [acoustic.Recognizer].
func (m *Recognizer) Recognize(ctx context.Context, signal audio.Signal, targetText string) (acoustic.Recognition, error) {
	m.mu.Lock()
	m.calls = append(m.calls, targetText)
	fn := m.RecognizeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, signal, targetText)
	}
	if m.Err != nil {
		return acoustic.Recognition{}, m.Err
	}
	return m.Result, nil
}

// Calls returns the target texts passed to Recognize, in order.
func (m *Recognizer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
