package transcription

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"sync"
)

// PCM format expected from streaming clients.
const (
	pcmSampleRate = 16000
	pcmBytes      = 2 // 16-bit
	pcmChannels   = 1
)

// WindowRecognizer is a Recognizer built on a batch transcription Service:
// it buffers incoming PCM and transcribes one window at a time, emitting
// each window's text as a final utterance. It stands in where no vendor
// streaming SDK is wired.
type WindowRecognizer struct {
	ctx     context.Context
	svc     Service
	window  int
	mu      sync.Mutex
	buf     []byte
	results chan Utterance
	closed  bool
}

// NewWindowRecognizer buffers windowSeconds of 16 kHz 16-bit mono PCM per
// transcription call.
func NewWindowRecognizer(ctx context.Context, svc Service, windowSeconds int) *WindowRecognizer {
	if windowSeconds <= 0 {
		windowSeconds = 5
	}
	return &WindowRecognizer{
		ctx:     ctx,
		svc:     svc,
		window:  windowSeconds * pcmSampleRate * pcmBytes * pcmChannels,
		results: make(chan Utterance, 16),
	}
}

func (r *WindowRecognizer) WriteAudio(p []byte) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return fmt.Errorf("recognizer closed")
	}
	r.buf = append(r.buf, p...)
	var window []byte
	if len(r.buf) >= r.window {
		window = r.buf
		r.buf = nil
	}
	r.mu.Unlock()

	if window != nil {
		return r.flush(window)
	}
	return nil
}

func (r *WindowRecognizer) Results() <-chan Utterance {
	return r.results
}

// Close flushes any buffered remainder and ends the result stream.
func (r *WindowRecognizer) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	remainder := r.buf
	r.buf = nil
	r.mu.Unlock()

	if len(remainder) > 0 {
		_ = r.flush(remainder)
	}
	close(r.results)
	return nil
}

func (r *WindowRecognizer) flush(pcm []byte) error {
	f, err := os.CreateTemp("", "utterance-*.wav")
	if err != nil {
		return fmt.Errorf("window flush: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(wavHeader(len(pcm))); err != nil {
		f.Close()
		return fmt.Errorf("window flush: %w", err)
	}
	if _, err := f.Write(pcm); err != nil {
		f.Close()
		return fmt.Errorf("window flush: %w", err)
	}
	f.Close()

	res, err := r.svc.Transcribe(r.ctx, path)
	if err != nil {
		return fmt.Errorf("window transcribe: %w", err)
	}
	if res.Text != "" {
		r.results <- Utterance{Text: res.Text, Final: true}
	}
	return nil
}

// wavHeader builds the 44-byte RIFF header for a PCM16 mono chunk.
func wavHeader(dataLen int) []byte {
	h := make([]byte, 44)
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], uint32(36+dataLen))
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(h[22:24], pcmChannels)
	binary.LittleEndian.PutUint32(h[24:28], pcmSampleRate)
	binary.LittleEndian.PutUint32(h[28:32], pcmSampleRate*pcmChannels*pcmBytes)
	binary.LittleEndian.PutUint16(h[32:34], pcmChannels*pcmBytes)
	binary.LittleEndian.PutUint16(h[34:36], 8*pcmBytes)
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], uint32(dataLen))
	return h
}
