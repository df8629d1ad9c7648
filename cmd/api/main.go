package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"call-insights-go/internal/anomaly"
	"call-insights-go/internal/cache"
	"call-insights-go/internal/catalog"
	"call-insights-go/internal/correct"
	"call-insights-go/internal/llm"
	"call-insights-go/internal/logger"
	"call-insights-go/internal/notify"
	"call-insights-go/internal/server"
	"call-insights-go/internal/stats"
	"call-insights-go/internal/transcription"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "call-insights-go").Info("starting service")

	manifestPath := os.Getenv("AUDIO_MANIFEST")
	if manifestPath == "" {
		manifestPath = "audio_manifest.xlsx"
	}
	log.WithField("manifest_path", manifestPath).Info("loading audio catalog")
	cat, err := catalog.Load(manifestPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load audio catalog")
	}
	log.WithField("audio_files", len(cat.Filenames())).Info("audio catalog loaded")

	whisper, err := transcription.NewWhisperClient()
	if err != nil {
		log.WithError(err).Fatal("failed to configure transcription client")
	}

	// The classifier and corrector run outside per-request backend
	// selection; they use a fixed backend chosen at startup.
	serviceOption := os.Getenv("SERVICE_MODEL_OPTION")
	if serviceOption == "" {
		serviceOption = llm.OptionOpenAI
	}
	serviceBackend, err := llm.New(serviceOption)
	if err != nil {
		log.WithError(err).Fatal("failed to configure service model backend")
	}

	windowSeconds, _ := strconv.Atoi(os.Getenv("STREAM_WINDOW_SECONDS"))

	srv := server.New(server.Deps{
		Catalog: cat,
		Results: cache.NewMemory(),
		Stats:   stats.NewStore(),
		STT:     whisper,
		Recognize: func(ctx context.Context) (transcription.Recognizer, error) {
			return transcription.NewWindowRecognizer(ctx, whisper, windowSeconds), nil
		},
		Classifier: anomaly.NewClassifier(serviceBackend, log),
		Corrector:  correct.NewCorrector(serviceBackend),
		Notifier:   notify.NewNotifier(notify.NewSMTPSender(log), log),
		NewBackend: llm.New,
		Log:        log,
	})

	mux := http.NewServeMux()

	// health
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		log.WithRequest(r).Info("health check")
		fmt.Fprint(w, "ok")
	})

	srv.Routes(mux)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.WithField("port", port).Info("listening")
	if err := httpServer.ListenAndServe(); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
