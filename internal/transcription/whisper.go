package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const defaultWhisperModel = "whisper-1"

// WhisperClient calls an OpenAI-compatible audio transcription endpoint
// with verbose_json output, which carries segment timestamps and duration.
type WhisperClient struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
}

// NewWhisperClient reads its configuration from the environment:
// WHISPER_ENDPOINT (base URL), WHISPER_API_KEY, WHISPER_MODEL.
func NewWhisperClient() (*WhisperClient, error) {
	endpoint := os.Getenv("WHISPER_ENDPOINT")
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1"
	}
	apiKey := os.Getenv("WHISPER_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("WHISPER_API_KEY not set")
	}
	model := os.Getenv("WHISPER_MODEL")
	if model == "" {
		model = defaultWhisperModel
	}
	return &WhisperClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		http:     &http.Client{Timeout: 120 * time.Second},
	}, nil
}

type verboseTranscription struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Duration float64   `json:"duration"`
}

func (c *WhisperClient) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrAudioNotFound, audioPath)
		}
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("model", c.model); err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/audio/transcriptions", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transcription http %d: %s", resp.StatusCode, string(b))
	}

	var vt verboseTranscription
	if err := json.NewDecoder(resp.Body).Decode(&vt); err != nil {
		return nil, fmt.Errorf("decode transcription: %w", err)
	}
	return &Result{
		Text:     vt.Text,
		Segments: vt.Segments,
		Duration: int(vt.Duration),
	}, nil
}
