package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const maxUploadSize = 32 << 20

// handleTranscribe runs the transcription stage alone. Chat callers use
// it out of band; single-shot callers use it to keep the transcript
// when extraction later fails.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	audio, filename, err := audioFromRequest(w, r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	text, err := s.transcriber.Transcribe(r.Context(), audio, filename)
	if err != nil {
		s.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"transcript": text})
}

// handleSummarize runs the full pipeline. The first stage failure
// aborts the run; no partial body is returned.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	audio, filename, err := audioFromRequest(w, r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	transcript, sum, err := s.pipeline.Process(r.Context(), audio, filename)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.announce(sum, "pipeline")

	respondJSON(w, http.StatusOK, map[string]any{
		"transcript": transcript,
		"summary":    sum,
		"text":       sum.Format(),
	})
}

// handleSummarizeText runs the extraction stage on a transcript the
// caller already holds.
func (s *Server) handleSummarizeText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Transcript string `json:"transcript"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Transcript == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "transcript is required"})
		return
	}

	sum, err := s.extractor.Extract(r.Context(), req.Transcript)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.announce(sum, "transcript")

	respondJSON(w, http.StatusOK, map[string]any{
		"summary": sum,
		"text":    sum.Format(),
	})
}

func audioFromRequest(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, "", fmt.Errorf("parse multipart form: %w", err)
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		return nil, "", fmt.Errorf("missing audio file: %w", err)
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, "", fmt.Errorf("empty audio file")
	}

	return audio, header.Filename, nil
}
