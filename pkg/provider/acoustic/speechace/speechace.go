// Package speechace provides an [acoustic.Recognizer] backed by the
// Speechace pronunciation-scoring REST API.
//
// The client submits a single-word utterance as base64 PCM and maps the
// response's per-phone quality scores into [acoustic.Alignment] values. All
// failure modes — transport errors, non-200 statuses, empty or unparseable
// responses — surface as [acoustic.ErrBackendUnavailable] so the scoring
// layer falls back to the heuristic generator instead of failing the
// request.
//
// Usage:
//
//	r, err := speechace.New(apiKey,
//	    speechace.WithBaseURL("https://api.speechace.co"),
//	)
//	rec, err := r.Recognize(ctx, signal, "butterfly")
package speechace

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/speakbright/speakbright/pkg/audio"
	"github.com/speakbright/speakbright/pkg/provider/acoustic"
)

const (
	defaultBaseURL = "https://api.speechace.co"
	scoringPath    = "/api/scoring/speech/v9/json"

	// maxResponseBytes caps how much of the response body is read; scoring
	// responses for single words are small.
	maxResponseBytes = 1 << 20
)

// Compile-time assertion that Client implements acoustic.Recognizer.
var _ acoustic.Recognizer = (*Client)(nil)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithBaseURL overrides the default API endpoint. Useful for test servers
// and regional deployments.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient injects a custom HTTP client. The default client has no
// timeout of its own; callers bound requests via ctx.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Client calls the Speechace scoring API. Safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates a Client authenticated with apiKey. apiKey must be non-empty —
// a deployment without a key should not construct a Client at all and rely
// on the heuristic path instead.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("speechace: apiKey must not be empty")
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// scoreRequest is the JSON payload for the scoring endpoint.
type scoreRequest struct {
	AudioBase64  string `json:"audio_base64"`
	Text         string `json:"text"`
	QuestionInfo string `json:"question_info"`
}

// scoreResponse mirrors the subset of the Speechace response we consume.
type scoreResponse struct {
	TextScore struct {
		Word []struct {
			Phone []struct {
				Phone         string  `json:"phone"`
				SoundMostLike string  `json:"sound_most_like"`
				QualityScore  float64 `json:"quality_score"`
			} `json:"phone"`
		} `json:"word"`
	} `json:"text_score"`
}

// Recognize implements [acoustic.Recognizer]. It submits the utterance and
// returns one alignment per phone the backend scored.
func (c *Client) Recognize(ctx context.Context, signal audio.Signal, targetText string) (acoustic.Recognition, error) {
	payload := scoreRequest{
		AudioBase64:  base64.StdEncoding.EncodeToString(encodePCM16(signal)),
		Text:         targetText,
		QuestionInfo: "single-word",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return acoustic.Recognition{}, fmt.Errorf("speechace: marshal request: %w", err)
	}

	endpoint := c.baseURL + scoringPath + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return acoustic.Recognition{}, fmt.Errorf("speechace: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return acoustic.Recognition{}, fmt.Errorf("%w: %v", acoustic.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return acoustic.Recognition{}, fmt.Errorf("%w: status %d", acoustic.ErrBackendUnavailable, resp.StatusCode)
	}

	var parsed scoreResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&parsed); err != nil {
		return acoustic.Recognition{}, fmt.Errorf("%w: decode response: %v", acoustic.ErrBackendUnavailable, err)
	}

	if len(parsed.TextScore.Word) == 0 {
		return acoustic.Recognition{}, fmt.Errorf("%w: response contains no scored words", acoustic.ErrBackendUnavailable)
	}

	phones := parsed.TextScore.Word[0].Phone
	alignments := make([]acoustic.Alignment, 0, len(phones))
	for _, p := range phones {
		detected := p.SoundMostLike
		if detected == "" {
			detected = p.Phone
		}
		alignments = append(alignments, acoustic.Alignment{
			Phoneme:       strings.ToUpper(p.Phone),
			Detected:      strings.ToUpper(detected),
			AcousticScore: p.QualityScore,
		})
	}
	return acoustic.Recognition{Alignments: alignments}, nil
}

// encodePCM16 converts float samples back to little-endian int16 PCM bytes
// for transport.
func encodePCM16(signal audio.Signal) []byte {
	out := make([]byte, len(signal.Samples)*2)
	for i, v := range signal.Samples {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		s := int16(v * 32767)
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}
