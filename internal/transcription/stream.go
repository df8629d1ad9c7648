package transcription

import "context"

// Utterance is one recognizer result. Partial results arrive while the
// speaker is still talking; Final marks a finished utterance.
type Utterance struct {
	Text  string
	Final bool
}

// Recognizer is a live speech session: audio frames in, utterances out.
// The vendor transport behind it is not the pipeline's concern.
type Recognizer interface {
	// WriteAudio feeds raw audio to the session.
	WriteAudio(p []byte) error

	// Results delivers utterances in recognition order. The channel is
	// closed when the session ends.
	Results() <-chan Utterance

	// Close ends the session and releases the transport.
	Close() error
}

// RecognizerFactory opens a fresh live session per streaming client.
type RecognizerFactory func(ctx context.Context) (Recognizer, error)
