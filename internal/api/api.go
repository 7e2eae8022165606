// Package api exposes the analysis pipeline over HTTP.
//
// Handlers are thin adapters over the canonical [analysis.Response]: they
// parse transport concerns (multipart audio, query parameters, path values)
// and delegate everything else to the pipeline. Client-facing error messages
// stay encouraging; internal detail goes to the log, not the child.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/speakbright/speakbright/internal/analysis"
	"github.com/speakbright/speakbright/internal/exercise"
	"github.com/speakbright/speakbright/internal/feedback"
	"github.com/speakbright/speakbright/internal/lexicon"
	"github.com/speakbright/speakbright/internal/progress"
	"github.com/speakbright/speakbright/pkg/audio"
)

// maxAudioBytes caps one upload; a few seconds of PCM16 at 16 kHz is well
// under this.
const maxAudioBytes = 10 << 20

// privacyNote accompanies progress responses.
const privacyNote = "Only abstract scores stored. No audio retained."

// Handlers holds the HTTP endpoints for the SpeakBright API.
type Handlers struct {
	analyzer *analysis.Analyzer
	store    progress.Store
	lex      *lexicon.Lexicon
	engine   *feedback.Engine
}

// New returns the API handlers over the given collaborators.
func New(analyzer *analysis.Analyzer, store progress.Store, lex *lexicon.Lexicon, engine *feedback.Engine) *Handlers {
	return &Handlers{
		analyzer: analyzer,
		store:    store,
		lex:      lex,
		engine:   engine,
	}
}

// Register adds all API routes to mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /analyze", h.Analyze)
	mux.HandleFunc("GET /progress/{user_id}", h.Progress)
	mux.HandleFunc("GET /words", h.Words)
	mux.HandleFunc("GET /mouth-guide/{phoneme}", h.MouthGuide)
	mux.HandleFunc("GET /home-tips/{phoneme}", h.HomeTips)
}

// Analyze scores an uploaded recording against a target word. Audio arrives
// either as the "audio" field of a multipart form or as the raw request body;
// the target word, user id, and tracking flag are query parameters.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	data, err := readAudio(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "We couldn't hear that recording. Let's try again!")
		return
	}

	req := analysis.Request{
		Audio:         data,
		TargetWord:    queryDefault(r, "target_word", "butterfly"),
		UserID:        queryDefault(r, "user_id", "demo_user"),
		TrackProgress: true,
	}
	if v := r.URL.Query().Get("track_progress"); v != "" {
		req.TrackProgress, _ = strconv.ParseBool(v)
	}
	if v := r.URL.Query().Get("sample_rate"); v != "" {
		req.SampleRate, _ = strconv.Atoi(v)
	}

	resp, err := h.analyzer.Analyze(r.Context(), req)
	if err != nil {
		if errors.Is(err, audio.ErrMalformedAudio) {
			writeError(w, http.StatusBadRequest, "We couldn't hear that recording. Let's try again!")
			return
		}
		slog.Error("analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Something needs a moment. Let's try again soon!")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// progressResponse is the body of GET /progress/{user_id}.
type progressResponse struct {
	UserID      string                  `json:"user_id"`
	Summary     progress.HistorySummary `json:"summary"`
	PrivacyNote string                  `json:"privacy_note"`
}

// Progress returns a user's history summary.
func (h *Handlers) Progress(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	history, err := h.store.ReadHistory(r.Context(), userID)
	if err != nil {
		slog.Error("progress read failed", "user_id", userID, "error", err)
		writeError(w, http.StatusServiceUnavailable, "Progress is taking a little break. Your practice still counts!")
		return
	}

	writeJSON(w, http.StatusOK, progressResponse{
		UserID:      userID,
		Summary:     progress.Summarize(history),
		PrivacyNote: privacyNote,
	})
}

// Words lists the practice words grouped by difficulty level.
func (h *Handlers) Words(w http.ResponseWriter, _ *http.Request) {
	out := make(map[lexicon.Level][]lexicon.WordEntry, 3)
	for _, level := range lexicon.Levels() {
		out[level] = h.lex.WordsByLevel(level)
	}
	writeJSON(w, http.StatusOK, out)
}

// mouthGuide is the body of GET /mouth-guide/{phoneme}.
type mouthGuide struct {
	Phoneme      string `json:"phoneme"`
	PositionName string `json:"position_name"`
	Description  string `json:"description"`
	VisualCue    string `json:"visual_cue"`
}

// MouthGuide returns the articulation guide for one phoneme class. Unknown
// classes get a neutral guide, never an error.
func (h *Handlers) MouthGuide(w http.ResponseWriter, r *http.Request) {
	phoneme := r.PathValue("phoneme")

	guide := mouthGuide{
		Phoneme:      phoneme,
		PositionName: "neutral",
		Description:  "Keep practicing! You're doing great!",
		VisualCue:    "✨",
	}
	if tip, ok := h.engine.LookupTip(phoneme); ok {
		guide.PositionName = tip.MouthPosition
		guide.Description = h.engine.Clean(tip.Tip)
		guide.VisualCue = tip.VisualCue
	}
	writeJSON(w, http.StatusOK, guide)
}

// homeTips is the body of GET /home-tips/{phoneme}.
type homeTips struct {
	Phoneme string   `json:"phoneme"`
	Tips    []string `json:"tips"`
}

// HomeTips returns parent-facing practice tips for one phoneme class.
func (h *Handlers) HomeTips(w http.ResponseWriter, r *http.Request) {
	phoneme := r.PathValue("phoneme")
	writeJSON(w, http.StatusOK, homeTips{
		Phoneme: phoneme,
		Tips:    exercise.HomeTips(phoneme),
	})
}

// readAudio extracts the audio payload from a multipart form's "audio" field
// or, failing that, the raw request body.
func readAudio(r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxAudioBytes)

	if err := r.ParseMultipartForm(maxAudioBytes); err == nil {
		f, _, ferr := r.FormFile("audio")
		if ferr == nil {
			defer f.Close()
			return io.ReadAll(f)
		}
	}
	return io.ReadAll(r.Body)
}

func queryDefault(r *http.Request, key, def string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return def
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
