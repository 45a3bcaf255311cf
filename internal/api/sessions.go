package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/intensiva/docscribe/internal/chat"
)

// sessionHandle serializes access to one session. The session itself is
// single-threaded; the handle keeps concurrent HTTP calls from
// interleaving turns.
type sessionHandle struct {
	mu   sync.Mutex
	sess *chat.Session
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	h := &sessionHandle{sess: s.newSession()}

	s.mu.Lock()
	s.sessions[h.sess.ID()] = h
	s.mu.Unlock()

	s.logger.Info("session created", "session", h.sess.ID())

	respondJSON(w, http.StatusCreated, map[string]string{
		"id":    h.sess.ID().String(),
		"state": h.sess.State().String(),
	})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	h, ok := s.session(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	body := map[string]any{
		"id":         h.sess.ID().String(),
		"state":      h.sess.State().String(),
		"messages":   h.sess.Messages(),
		"transcript": h.sess.Transcript(),
	}
	if sum := h.sess.Summary(); sum != nil {
		body["summary"] = sum
		body["text"] = sum.Format()
	}

	respondJSON(w, http.StatusOK, body)
}

// sendMessage streams one conversation turn as server-sent events:
// a delta event per text fragment, then a single turn event with the
// committed reply and, when finalized, the summary.
func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	h, ok := s.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "content is required"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	turn, err := h.sess.Send(r.Context(), req.Content, func(delta string) {
		writeSSE(w, "delta", map[string]string{"text": delta})
		flusher.Flush()
	})
	if err != nil {
		s.logger.Error("chat turn failed", "session", h.sess.ID(), "error", err)
		writeSSE(w, "error", map[string]string{"error": err.Error()})
		flusher.Flush()
		return
	}

	final := map[string]any{
		"reply": turn.Reply,
		"state": h.sess.State().String(),
	}
	if turn.Summary != nil {
		final["summary"] = turn.Summary
		final["text"] = turn.Summary.Format()
		s.announce(turn.Summary, "chat")
	}
	if turn.Warning != nil {
		final["warning"] = turn.Warning.Error()
	}

	writeSSE(w, "turn", final)
	flusher.Flush()
}

// uploadTranscript transcribes an audio file and appends the result to
// the conversation as a user turn, without invoking the model.
func (s *Server) uploadTranscript(w http.ResponseWriter, r *http.Request) {
	h, ok := s.session(w, r)
	if !ok {
		return
	}

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

	h.mu.Lock()
	h.sess.AppendTranscript(text)
	state := h.sess.State().String()
	h.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]string{
		"transcript": text,
		"state":      state,
	})
}

func (s *Server) resetSession(w http.ResponseWriter, r *http.Request) {
	h, ok := s.session(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	h.sess.Reset()
	state := h.sess.State().String()
	h.mu.Unlock()

	s.logger.Info("session reset", "session", h.sess.ID())

	respondJSON(w, http.StatusOK, map[string]string{
		"id":    h.sess.ID().String(),
		"state": state,
	})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return
	}

	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*sessionHandle, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return nil, false
	}

	s.mu.Lock()
	h, ok := s.sessions[id]
	s.mu.Unlock()

	if !ok {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	return h, true
}

func writeSSE(w io.Writer, event string, data any) {
	payload, _ := json.Marshal(data)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}
