package transcription

import (
	"context"
	"encoding/binary"
	"os"
	"sync"
	"testing"
)

// recordingService captures the wav files it is asked to transcribe.
type recordingService struct {
	mu    sync.Mutex
	files [][]byte
	text  string
}

func (s *recordingService) Transcribe(_ context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.files = append(s.files, data)
	s.mu.Unlock()
	return &Result{Text: s.text}, nil
}

func TestWindowRecognizer_FlushOnFullWindow(t *testing.T) {
	svc := &recordingService{text: "one utterance"}
	rec := NewWindowRecognizer(context.Background(), svc, 1) // 32000 bytes per window

	if err := rec.WriteAudio(make([]byte, 32000)); err != nil {
		t.Fatalf("WriteAudio: %v", err)
	}

	u := <-rec.Results()
	if !u.Final || u.Text != "one utterance" {
		t.Errorf("utterance = %+v", u)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.files) != 1 {
		t.Fatalf("transcribe calls = %d, want 1", len(svc.files))
	}
	wav := svc.files[0]
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Error("flushed file is not a wav")
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != 32000 {
		t.Errorf("data length = %d, want 32000", got)
	}
}

func TestWindowRecognizer_CloseFlushesRemainder(t *testing.T) {
	svc := &recordingService{text: "trailing words"}
	rec := NewWindowRecognizer(context.Background(), svc, 1)

	if err := rec.WriteAudio(make([]byte, 1000)); err != nil {
		t.Fatalf("WriteAudio: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var got []Utterance
	for u := range rec.Results() {
		got = append(got, u)
	}
	if len(got) != 1 || got[0].Text != "trailing words" {
		t.Errorf("utterances = %+v", got)
	}

	if err := rec.WriteAudio([]byte{1}); err == nil {
		t.Error("WriteAudio after Close should fail")
	}
}
