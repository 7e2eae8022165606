package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/speakbright/speakbright/internal/resilience"
	"github.com/speakbright/speakbright/pkg/audio"
	"github.com/speakbright/speakbright/pkg/provider/acoustic"
	"github.com/speakbright/speakbright/pkg/provider/acoustic/mock"
)

func breakerCfg() resilience.BreakerConfig {
	return resilience.BreakerConfig{FailureThreshold: 2, Cooldown: time.Hour}
}

func TestRecognizerFallback_PrimarySucceeds(t *testing.T) {
	t.Parallel()

	want := acoustic.Recognition{Alignments: []acoustic.Alignment{
		{Phoneme: "S", Detected: "S", AcousticScore: 90},
	}}
	primary := &mock.Recognizer{Result: want}
	secondary := &mock.Recognizer{}

	fb := resilience.NewRecognizerFallback("primary", primary, breakerCfg())
	fb.Add("secondary", secondary)

	got, err := fb.Recognize(context.Background(), audio.Signal{}, "sun")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if len(got.Alignments) != 1 || got.Alignments[0].Phoneme != "S" {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if len(secondary.Calls()) != 0 {
		t.Error("secondary was called although primary succeeded")
	}
}

func TestRecognizerFallback_FailsOver(t *testing.T) {
	t.Parallel()

	want := acoustic.Recognition{Alignments: []acoustic.Alignment{
		{Phoneme: "N", Detected: "N", AcousticScore: 75},
	}}
	primary := &mock.Recognizer{Err: errors.New("api down")}
	secondary := &mock.Recognizer{Result: want}

	fb := resilience.NewRecognizerFallback("primary", primary, breakerCfg())
	fb.Add("secondary", secondary)

	got, err := fb.Recognize(context.Background(), audio.Signal{}, "sun")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if got.Alignments[0].Phoneme != "N" {
		t.Errorf("got %+v, want secondary result", got)
	}
	if len(primary.Calls()) != 1 || len(secondary.Calls()) != 1 {
		t.Errorf("calls: primary=%d secondary=%d, want 1/1",
			len(primary.Calls()), len(secondary.Calls()))
	}
}

func TestRecognizerFallback_AllFail(t *testing.T) {
	t.Parallel()

	fb := resilience.NewRecognizerFallback("primary",
		&mock.Recognizer{Err: errors.New("down")}, breakerCfg())
	fb.Add("secondary", &mock.Recognizer{Err: errors.New("also down")})

	_, err := fb.Recognize(context.Background(), audio.Signal{}, "sun")
	if !errors.Is(err, acoustic.ErrBackendUnavailable) {
		t.Errorf("error = %v, want ErrBackendUnavailable", err)
	}
	if !errors.Is(err, resilience.ErrAllBackendsFailed) {
		t.Errorf("error = %v, want ErrAllBackendsFailed", err)
	}
}

func TestRecognizerFallback_SkipsTrippedPrimary(t *testing.T) {
	t.Parallel()

	primary := &mock.Recognizer{Err: errors.New("down")}
	secondary := &mock.Recognizer{Result: acoustic.Recognition{}}

	fb := resilience.NewRecognizerFallback("primary", primary, breakerCfg())
	fb.Add("secondary", secondary)

	// Two failures trip the primary's breaker.
	for range 3 {
		if _, err := fb.Recognize(context.Background(), audio.Signal{}, "sun"); err != nil {
			t.Fatalf("Recognize: %v", err)
		}
	}

	// Primary saw only the first two calls; the third was short-circuited.
	if got := len(primary.Calls()); got != 2 {
		t.Errorf("primary calls = %d, want 2", got)
	}
	if got := len(secondary.Calls()); got != 3 {
		t.Errorf("secondary calls = %d, want 3", got)
	}
}
