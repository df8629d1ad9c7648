package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"call-insights-go/internal/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  8192,
	WriteBufferSize: 8192,
	// The browser client is served from a different origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// sessionConfig is the first message a streaming client sends.
type sessionConfig struct {
	AutoCorrect bool `json:"auto_correct"`
	Anomaly     bool `json:"anomaly"`
}

type wsMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type wsAnomalyMessage struct {
	Type string `json:"type"`
	types.AnomalyResult
}

// wsConn serializes writes: gorilla connections allow one concurrent
// writer, and correction and anomaly results arrive from goroutines.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) sendJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// handleTranscribeWS runs one live transcription session: the client sends
// a JSON config message, then raw audio frames. Partial and final
// utterances stream back; each final utterance additionally fans out to
// auto-correction and anomaly classification when enabled.
func (s *Server) handleTranscribeWS(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithField("session_id", uuid.New().String())

	raw, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Error("websocket upgrade failed")
		return
	}
	conn := &wsConn{conn: raw}
	defer raw.Close()

	var cfg sessionConfig
	if err := raw.ReadJSON(&cfg); err != nil {
		log.WithError(err).Warn("invalid session config")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	rec, err := s.recognize(ctx)
	if err != nil {
		log.WithError(err).Error("failed to open recognizer session")
		_ = conn.sendJSON(wsMessage{Type: "error", Text: "recognizer unavailable"})
		return
	}
	defer rec.Close()

	// Utterances out. Runs until the recognizer closes its channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for u := range rec.Results() {
			if u.Text == "" {
				continue
			}
			if !u.Final {
				_ = conn.sendJSON(wsMessage{Type: "transcribing", Text: u.Text})
				continue
			}
			_ = conn.sendJSON(wsMessage{Type: "transcribed", Text: u.Text})

			if cfg.AutoCorrect {
				wg.Add(1)
				go func(text string) {
					defer wg.Done()
					corrected, err := s.corrector.Correct(ctx, text)
					if err != nil {
						log.WithError(err).Warn("auto-correct failed for utterance")
						return
					}
					_ = conn.sendJSON(wsMessage{Type: "auto_corrected", Text: corrected})
				}(u.Text)
			}
			if cfg.Anomaly {
				wg.Add(1)
				go func(text string) {
					defer wg.Done()
					result := s.classifier.Classify(ctx, text)
					_ = conn.sendJSON(wsAnomalyMessage{Type: "anomaly", AnomalyResult: result})
				}(u.Text)
			}
		}
		wg.Wait()
	}()

	// Audio in.
	for {
		msgType, data, err := raw.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		if err := rec.WriteAudio(data); err != nil {
			log.WithError(err).Warn("recognizer write failed")
			break
		}
	}

	rec.Close()
	<-done
	log.Info("streaming session ended")
}
