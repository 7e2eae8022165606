// Package audio defines the decoded-signal boundary between the upload layer
// and the scoring pipeline.
//
// The upload and file-format decoding layer is an external collaborator: by
// the time audio reaches this package it is raw little-endian 16-bit PCM.
// This package validates that PCM, converts it to float samples for scoring,
// and provides the Discard primitive the pipeline uses to guarantee decoded
// audio never outlives a single analysis request.
package audio

import (
	"errors"
	"fmt"
	"math"
)

// ErrMalformedAudio is returned when the input bytes cannot be interpreted as
// valid PCM. Malformed audio is fatal to an analysis request — no partial
// scoring is attempted on data we cannot trust.
var ErrMalformedAudio = errors.New("malformed audio input")

// DefaultSampleRate is assumed when the caller provides no sample-rate hint.
const DefaultSampleRate = 16000

// Signal is a decoded mono audio signal, request-scoped by contract: the
// owner must call Discard before returning, on every path.
type Signal struct {
	// Samples are normalized float samples in [-1, 1].
	Samples []float64

	// SampleRate is the sample rate in Hz.
	SampleRate int
}

// DecodePCM16 converts little-endian 16-bit mono PCM bytes into a Signal.
// A zero or negative sampleRate falls back to DefaultSampleRate.
//
// Empty input or an odd byte count returns ErrMalformedAudio: both indicate
// the upload layer handed us something that is not int16 PCM.
func DecodePCM16(data []byte, sampleRate int) (Signal, error) {
	if len(data) == 0 {
		return Signal{}, fmt.Errorf("%w: empty input", ErrMalformedAudio)
	}
	if len(data)%2 != 0 {
		return Signal{}, fmt.Errorf("%w: odd byte count %d", ErrMalformedAudio, len(data))
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	samples := make([]float64, len(data)/2)
	for i := range samples {
		s := int16(data[i*2]) | int16(data[i*2+1])<<8
		samples[i] = float64(s) / 32768.0
	}
	return Signal{Samples: samples, SampleRate: sampleRate}, nil
}

// DownmixStereo16 averages interleaved L+R int16 PCM into mono PCM. Uses
// int32 arithmetic to prevent overflow and clamps to the int16 range.
func DownmixStereo16(pcm []byte) []byte {
	frames := len(pcm) / 4
	out := make([]byte, frames*2)
	for i := range frames {
		l := int32(int16(pcm[i*4]) | int16(pcm[i*4+1])<<8)
		r := int32(int16(pcm[i*4+2]) | int16(pcm[i*4+3])<<8)
		avg := (l + r) / 2

		if avg > 32767 {
			avg = 32767
		} else if avg < -32768 {
			avg = -32768
		}

		out[i*2] = byte(avg)
		out[i*2+1] = byte(avg >> 8)
	}
	return out
}

// Duration returns the signal length in seconds.
func (s Signal) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// RMS returns the root-mean-square energy of the signal in [0, 1].
// Useful for rejecting empty recordings before scoring.
func (s Signal) RMS() float64 {
	if len(s.Samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s.Samples {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(s.Samples)))
}

// Discard zeroes and releases the sample buffer. The pipeline defers this so
// decoded audio is dropped before the analysis call returns, on success and
// failure paths alike.
func (s *Signal) Discard() {
	for i := range s.Samples {
		s.Samples[i] = 0
	}
	s.Samples = nil
}
