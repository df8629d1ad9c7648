// Package transcription turns call audio into text with sentence-level
// timestamps. The pipeline depends only on the Service interface; the
// Whisper client is the production implementation.
package transcription

import (
	"context"
	"errors"
)

// Segment is one time-stamped span of speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result bundles the full text, its segments, and the audio duration.
type Result struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Duration int       `json:"duration"`
}

// ErrAudioNotFound marks a missing input file, as opposed to a processing
// failure. Both are fatal to a pipeline run but surface differently at the
// API boundary.
var ErrAudioNotFound = errors.New("audio file not found")

// Service transcribes one audio file. A failure here is fatal to the
// pipeline invocation.
type Service interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}
