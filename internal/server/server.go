// Package server wires the core packages to their HTTP and WebSocket
// surfaces.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"call-insights-go/internal/anomaly"
	"call-insights-go/internal/cache"
	"call-insights-go/internal/catalog"
	"call-insights-go/internal/correct"
	"call-insights-go/internal/extract"
	"call-insights-go/internal/llm"
	"call-insights-go/internal/logger"
	"call-insights-go/internal/notify"
	"call-insights-go/internal/pipeline"
	"call-insights-go/internal/stats"
	"call-insights-go/internal/transcription"
	"call-insights-go/internal/types"
)

type Server struct {
	cat        *catalog.Catalog
	results    cache.Results
	stats      *stats.Store
	stt        transcription.Service
	recognize  transcription.RecognizerFactory
	classifier *anomaly.Classifier
	corrector  *correct.Corrector
	notifier   *notify.Notifier
	newBackend func(modelOption string) (llm.Backend, error)
	log        *logger.Logger
}

type Deps struct {
	Catalog    *catalog.Catalog
	Results    cache.Results
	Stats      *stats.Store
	STT        transcription.Service
	Recognize  transcription.RecognizerFactory
	Classifier *anomaly.Classifier
	Corrector  *correct.Corrector
	Notifier   *notify.Notifier
	NewBackend func(modelOption string) (llm.Backend, error)
	Log        *logger.Logger
}

func New(d Deps) *Server {
	return &Server{
		cat:        d.Catalog,
		results:    d.Results,
		stats:      d.Stats,
		stt:        d.STT,
		recognize:  d.Recognize,
		classifier: d.Classifier,
		corrector:  d.Corrector,
		notifier:   d.Notifier,
		newBackend: d.NewBackend,
		log:        d.Log,
	}
}

func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /audio-files", s.handleAudioFiles)
	mux.HandleFunc("POST /process-calls", s.handleProcessCalls)
	mux.HandleFunc("POST /anomaly-detection-text", s.handleAnomalyText)
	mux.HandleFunc("POST /anomaly-detection-audio", s.handleAnomalyAudio)
	mux.HandleFunc("POST /auto-correct", s.handleAutoCorrect)
	mux.HandleFunc("GET /check-incident-number", s.handleCheckIncident)
	mux.HandleFunc("GET /anomaly-details", s.handleAnomalyDetails)
	mux.HandleFunc("GET /agent-statistics", s.handleAgentStatistics)
	mux.HandleFunc("GET /sentiment-graph", s.handleSentimentGraph)
	mux.HandleFunc("GET /ws/transcribe", s.handleTranscribeWS)
}

func (s *Server) handleAudioFiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"files": s.cat.Filenames()})
}

func (s *Server) handleProcessCalls(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithRequest(r)

	var req types.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Filenames) == 0 {
		writeError(w, http.StatusBadRequest, "no filenames given")
		return
	}
	log.WithField("files", len(req.Filenames)).Info("processing call batch")

	backend, err := s.newBackend(req.ModelOption)
	if err != nil {
		if errors.Is(err, llm.ErrUnsupportedBackend) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	results := make(map[string]types.FileProcessResponse, len(req.Filenames))
	for _, filename := range req.Filenames {
		entry, ok := s.cat.Lookup(filename)
		if !ok {
			writeError(w, http.StatusNotFound, "audio file not found: "+filename)
			return
		}

		engine := pipeline.New(backend, s.stt, s.log)
		st, err := engine.Run(r.Context(), entry.Path)
		if err != nil {
			s.log.WithFile(filename).WithError(err).Error("pipeline run failed")
			if errors.Is(err, transcription.ErrAudioNotFound) {
				writeError(w, http.StatusNotFound, "audio file not found: "+filename)
			} else {
				writeError(w, http.StatusInternalServerError, "processing failed for "+filename)
			}
			return
		}

		s.results.Put(filename, st)
		incNumber := extract.IncidentNumber(st)
		emails := s.notifier.Process(st)
		anomalyRes := s.classifier.Classify(r.Context(), st.Transcription)

		s.stats.Upsert(stats.Record{
			Filename:       filename,
			Agent:          entry.Agent,
			Duration:       st.AudioDuration,
			AgentRating:    st.AgentRating,
			SentimentScore: st.SentimentScore,
			Anomaly:        anomalyRes.IsAnomaly,
			AnomalyReasons: anomalyRes.Reasons,
		})

		results[filename] = types.FileProcessResponse{
			CallSummary:      st.CallSummary,
			Sentiment:        st.Sentiment,
			SentimentScore:   st.SentimentScore,
			CallPurpose:      st.CallPurpose,
			SpeakerInsights:  st.SpeakerInsights,
			EmailSent:        emails,
			ActionItems:      st.ActionItems,
			AgentRating:      st.AgentRating,
			CustomerName:     st.CustomerName,
			AgentName:        st.AgentName,
			SentimentChunks:  st.SentimentChunks,
			CallOuts:         st.CallOuts,
			AnomalyDetection: anomalyRes,
			IncNumber:        incNumber,
		}
	}

	writeJSON(w, http.StatusOK, types.BatchProcessResponse{Results: results})
}

func (s *Server) handleAnomalyText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeError(w, http.StatusBadRequest, "text cannot be empty")
		return
	}
	writeJSON(w, http.StatusOK, s.classifier.Classify(r.Context(), req.Text))
}

func (s *Server) handleAnomalyAudio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Filename == "" {
		writeError(w, http.StatusBadRequest, "filename cannot be empty")
		return
	}
	entry, ok := s.cat.Lookup(req.Filename)
	if !ok {
		writeError(w, http.StatusNotFound, "audio file not found: "+req.Filename)
		return
	}
	res, err := s.stt.Transcribe(r.Context(), entry.Path)
	if err != nil {
		s.log.WithRequest(r).WithError(err).Error("transcription failed")
		if errors.Is(err, transcription.ErrAudioNotFound) {
			writeError(w, http.StatusNotFound, "audio file not found: "+req.Filename)
		} else {
			writeError(w, http.StatusInternalServerError, "processing failed for "+req.Filename)
		}
		return
	}
	writeJSON(w, http.StatusOK, s.classifier.Classify(r.Context(), res.Text))
}

func (s *Server) handleAutoCorrect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeError(w, http.StatusBadRequest, "text cannot be empty")
		return
	}
	corrected, err := s.corrector.Correct(r.Context(), req.Text)
	if err != nil {
		s.log.WithRequest(r).WithError(err).Error("auto-correct failed")
		writeError(w, http.StatusInternalServerError, "auto-correct failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"corrected_text": corrected})
}

func (s *Server) handleCheckIncident(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	st, ok := s.results.Get(filename)
	if !ok {
		writeError(w, http.StatusNotFound, "no processed call available, run /process-calls first")
		return
	}
	inc := extract.IncidentNumber(st)
	resp := map[string]any{"incident_number": nil}
	if inc != "" {
		resp["incident_number"] = inc
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnomalyDetails(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	reasons, ok := s.stats.AnomalyReasons(filename)
	if !ok {
		writeError(w, http.StatusNotFound, "no statistics for "+filename)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"audio_filename":  filename,
		"anomaly_reasons": reasons,
	})
}

func (s *Server) handleAgentStatistics(w http.ResponseWriter, r *http.Request) {
	from := parseTime(r.URL.Query().Get("start_datetime"))
	to := parseTime(r.URL.Query().Get("end_datetime"))
	writeJSON(w, http.StatusOK, s.stats.ByAgent(from, to))
}

// handleSentimentGraph projects the cached sentiment chunks into a
// timeline series the frontend can plot directly.
func (s *Server) handleSentimentGraph(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	st, ok := s.results.Get(filename)
	if !ok {
		writeError(w, http.StatusNotFound, "no processed call available, run /process-calls first")
		return
	}
	if len(st.SentimentChunks) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	mapping := map[string]int{
		types.SentimentNegative: -1,
		types.SentimentNeutral:  0,
		types.SentimentPositive: 1,
	}
	times := make([]float64, len(st.SentimentChunks))
	values := make([]int, len(st.SentimentChunks))
	labels := make([]string, len(st.SentimentChunks))
	for i, c := range st.SentimentChunks {
		times[i] = c.TimeSec
		values[i] = mapping[c.Sentiment]
		labels[i] = c.Sentiment
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"times":  times,
		"values": values,
		"labels": labels,
	})
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"detail": msg})
}
