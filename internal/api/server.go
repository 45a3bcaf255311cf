package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/intensiva/docscribe/internal/chat"
	"github.com/intensiva/docscribe/internal/extractor"
	"github.com/intensiva/docscribe/internal/summary"
	"github.com/intensiva/docscribe/internal/transcribe"
)

// Processor runs the full audio-to-summary pipeline.
type Processor interface {
	Process(ctx context.Context, audio []byte, filename string) (string, *summary.PatientSummary, error)
}

// Extractor runs the extraction stage alone, for callers that already
// hold a transcript.
type Extractor interface {
	Extract(ctx context.Context, transcript string) (*summary.PatientSummary, error)
}

// Announcer publishes completed summaries to interested listeners.
type Announcer interface {
	Announce(s *summary.PatientSummary, source string)
}

type Config struct {
	Port         int
	WhisperModel string
	ClaudeModel  string
}

type Server struct {
	router      *chi.Mux
	cfg         Config
	pipeline    Processor
	transcriber transcribe.Transcriber
	extractor   Extractor
	newSession  func() *chat.Session
	announcer   Announcer
	logger      *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionHandle
}

func NewServer(cfg Config, p Processor, tr transcribe.Transcriber, ex Extractor, newSession func() *chat.Session, ann Announcer, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:      router,
		cfg:         cfg,
		pipeline:    p,
		transcriber: tr,
		extractor:   ex,
		newSession:  newSession,
		announcer:   ann,
		logger:      logger,
		sessions:    make(map[uuid.UUID]*sessionHandle),
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/status", s.status)

	router.Post("/api/v1/transcriptions", s.handleTranscribe)
	router.Post("/api/v1/summaries", s.handleSummarize)
	router.Post("/api/v1/summaries/text", s.handleSummarizeText)

	router.Post("/api/v1/sessions", s.createSession)
	router.Get("/api/v1/sessions/{id}", s.getSession)
	router.Post("/api/v1/sessions/{id}/messages", s.sendMessage)
	router.Post("/api/v1/sessions/{id}/transcript", s.uploadTranscript)
	router.Post("/api/v1/sessions/{id}/reset", s.resetSession)
	router.Delete("/api/v1/sessions/{id}", s.deleteSession)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"service":       "docscribe",
		"status":        "ok",
		"whisper_model": s.cfg.WhisperModel,
		"claude_model":  s.cfg.ClaudeModel,
	})
}

func (s *Server) announce(sum *summary.PatientSummary, source string) {
	if s.announcer != nil {
		s.announcer.Announce(sum, source)
	}
}

// respondError maps stage errors to status codes: upstream faults are
// bad gateways, everything else is internal.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	stage := "internal"

	var tErr *transcribe.TranscriptionError
	var eErr *extractor.ExtractionError
	switch {
	case errors.As(err, &tErr):
		status, stage = http.StatusBadGateway, "transcription"
	case errors.As(err, &eErr):
		status, stage = http.StatusBadGateway, "extraction"
	}

	s.logger.Error("request failed", "stage", stage, "error", err)
	respondJSON(w, status, map[string]string{"error": err.Error(), "stage": stage})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
