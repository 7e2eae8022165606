// Package analysis runs the end-to-end pronunciation pipeline: decode audio,
// score phonemes, compare against the user's own history, render feedback,
// and select exercises.
//
// Each request is processed synchronously within one call; all intermediate
// state is request-local, so the pipeline is safe to run for many requests
// concurrently. Raw audio is scoped to the duration of scoring only and is
// discarded before Analyze returns, on success and failure alike. Progress is
// appended only after a full session result exists — partial results are
// never persisted.
package analysis

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/speakbright/speakbright/internal/exercise"
	"github.com/speakbright/speakbright/internal/feedback"
	"github.com/speakbright/speakbright/internal/lexicon"
	"github.com/speakbright/speakbright/internal/observe"
	"github.com/speakbright/speakbright/internal/progress"
	"github.com/speakbright/speakbright/internal/scoring"
	"github.com/speakbright/speakbright/pkg/audio"
	"github.com/speakbright/speakbright/pkg/types"
)

// Request carries one analysis job from the HTTP layer.
type Request struct {
	// Audio is the raw PCM16 payload.
	Audio []byte

	// SampleRate is the caller's sample-rate hint; zero selects the default.
	SampleRate int

	// TargetWord is the word the user practiced.
	TargetWord string

	// UserID identifies the user for progress tracking. Opaque; never
	// interpreted.
	UserID string

	// TrackProgress enables history comparison and persistence.
	TrackProgress bool
}

// Response is the child-friendly result assembled for the HTTP layer.
type Response struct {
	SessionID         string            `json:"session_id"`
	Word              string            `json:"word"`
	OverallScore      int               `json:"overall_score"`
	PhonemeFeedback   []feedback.Item   `json:"phoneme_feedback"`
	Encouragement     string            `json:"encouragement"`
	Exercises         []exercise.Drill  `json:"exercises"`
	Syllables         []string          `json:"syllables"`
	HighlightedSounds []string          `json:"highlighted_sounds"`
	Progress          *progress.Summary `json:"progress,omitempty"`
	Celebration       string            `json:"celebration,omitempty"`
}

// Analyzer wires the pipeline stages together. Safe for concurrent use.
type Analyzer struct {
	lex      *lexicon.Lexicon
	scorer   *scoring.Scorer
	engine   *feedback.Engine
	selector *exercise.Selector
	tracker  *progress.Tracker
	metrics  *observe.Metrics
}

// New returns an Analyzer over the given collaborators. A nil metrics falls
// back to the package-level default instruments.
func New(lex *lexicon.Lexicon, scorer *scoring.Scorer, engine *feedback.Engine, selector *exercise.Selector, tracker *progress.Tracker, metrics *observe.Metrics) *Analyzer {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Analyzer{
		lex:      lex,
		scorer:   scorer,
		engine:   engine,
		selector: selector,
		tracker:  tracker,
		metrics:  metrics,
	}
}

// Analyze runs the full pipeline for one request. The only fatal failure is
// undecodable audio, which propagates as [audio.ErrMalformedAudio] with no
// partial scoring attempted; backend and history failures are absorbed by the
// stages that own them.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	sessionID := uuid.NewString()
	log := observe.Logger(ctx).With("session_id", sessionID, "word", req.TargetWord)

	signal, err := audio.DecodePCM16(req.Audio, req.SampleRate)
	if err != nil {
		return Response{}, fmt.Errorf("analysis: decode audio: %w", err)
	}
	// The decoded samples must not outlive scoring, success or failure.
	defer signal.Discard()

	scoreStart := time.Now()
	scores, word := a.scorer.Score(ctx, signal, req.TargetWord)
	a.metrics.ScoreDuration.Record(ctx, time.Since(scoreStart).Seconds())

	result := types.SessionResult{
		SessionID:     sessionID,
		TargetWord:    word,
		PhonemeScores: scores,
		OverallScore:  overallScore(scores),
		Timestamp:     time.Now().UTC(),
	}

	// Feedback rendering and the history read are independent; run them in
	// parallel. Neither branch returns an error: feedback is pure and the
	// tracker absorbs read failures as a first attempt.
	var (
		items   []feedback.Item
		summary progress.Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items = a.engine.Items(scores)
		return nil
	})
	if req.TrackProgress {
		g.Go(func() error {
			summary = a.tracker.Compute(gctx, req.UserID, scores)
			return nil
		})
	}
	_ = g.Wait()

	resp := Response{
		SessionID:         sessionID,
		Word:              word,
		OverallScore:      result.OverallScore,
		PhonemeFeedback:   items,
		Encouragement:     a.engine.Overall(result.OverallScore),
		Exercises:         a.selector.Select(scores),
		Syllables:         a.lex.Syllables(word),
		HighlightedSounds: highlighted(scores),
	}

	if req.TrackProgress {
		resp.Progress = &summary
		if len(summary.Improved) > 0 {
			resp.Celebration = a.engine.Celebration(summary.Improved)
		}

		// Append only now that the full result exists. A write failure must
		// not take the session away from the child.
		if err := a.tracker.Record(ctx, req.UserID, result, summary); err != nil {
			log.Warn("progress append failed", "error", err)
		}
	}

	a.metrics.RecordSession(ctx, word)
	a.metrics.AnalyzeDuration.Record(ctx, time.Since(start).Seconds())
	log.Info("analysis completed",
		"overall_score", result.OverallScore,
		"phonemes", len(scores),
		"duration", time.Since(start),
	)
	return resp, nil
}

// overallScore is round(mean(confidence) × 100).
func overallScore(scores []types.PhonemeScore) int {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, ps := range scores {
		sum += ps.Confidence
	}
	return int(math.Round(sum / float64(len(scores)) * 100))
}

// highlighted lists the classes to visually emphasise in the UI: everything
// below the corrective threshold, in word order.
func highlighted(scores []types.PhonemeScore) []string {
	out := []string{}
	for _, ps := range scores {
		if ps.Confidence < feedback.Corrective {
			out = append(out, ps.Phoneme.Class)
		}
	}
	return out
}
