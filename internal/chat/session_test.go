package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/intensiva/docscribe/internal/anthropic"
	"github.com/intensiva/docscribe/internal/summary"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeStream emits the reply as a sequence of small SSE text deltas,
// split on rune boundaries so multi-byte characters survive.
func writeStream(w http.ResponseWriter, reply string) {
	w.Header().Set("Content-Type", "text/event-stream")
	runes := []rune(reply)
	for i := 0; i < len(runes); i += 5 {
		end := i + 5
		if end > len(runes) {
			end = len(runes)
		}
		data, _ := json.Marshal(map[string]any{
			"type":  "content_block_delta",
			"delta": map[string]any{"type": "text_delta", "text": string(runes[i:end])},
		})
		fmt.Fprintf(w, "event: content_block_delta\ndata: %s\n\n", data)
	}
	fmt.Fprint(w, "event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n")
}

func sessionAgainst(t *testing.T, handler http.HandlerFunc) *Session {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	llm := anthropic.NewClient("test-key", "test-model")
	llm.SetTestTransport(server.URL)
	return NewSession(llm, discardLogger())
}

func TestSend_PlainTurn(t *testing.T) {
	reply := "Qual o leito do paciente? Não encontrei essa informação."

	s := sessionAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		writeStream(w, reply)
	})

	if s.State() != StateIdle {
		t.Errorf("expected idle before first turn, got %s", s.State())
	}

	var streamed strings.Builder
	turn, err := s.Send(context.Background(), "paciente com sepse", func(d string) {
		streamed.WriteString(d)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if turn.Reply != reply {
		t.Errorf("unexpected reply: %q", turn.Reply)
	}
	if streamed.String() != reply {
		t.Errorf("streamed fragments do not assemble the reply: %q", streamed.String())
	}
	if turn.Summary != nil || turn.Warning != nil {
		t.Errorf("expected plain turn, got %+v", turn)
	}
	if s.State() != StateConversing {
		t.Errorf("expected conversing, got %s", s.State())
	}
	if len(s.Messages()) != 2 {
		t.Errorf("expected user and assistant turns, got %d", len(s.Messages()))
	}
}

func TestSend_Finalizes(t *testing.T) {
	reply := "Perfeito! Sumário confirmado.\n\n<sumario_json>\n" +
		`{"leito": "3", "nome_paciente": "João Silva", "diagnosticos": ["Choque séptico"], "pendencias": ["TC de tórax"], "condutas": ["Manter norepinefrina (0.3)"]}` +
		"\n</sumario_json>"

	s := sessionAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		writeStream(w, reply)
	})

	turn, err := s.Send(context.Background(), "pode confirmar", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if turn.Warning != nil {
		t.Fatalf("unexpected warning: %v", turn.Warning)
	}
	if turn.Summary == nil {
		t.Fatal("expected finalized summary")
	}
	if turn.Summary.Bed != "3" || turn.Summary.PatientName != "João Silva" {
		t.Errorf("unexpected summary: %+v", turn.Summary)
	}
	if s.State() != StateFinalized {
		t.Errorf("expected finalized, got %s", s.State())
	}
	if s.Summary() != turn.Summary {
		t.Error("session summary differs from turn summary")
	}
}

func TestSend_MalformedBlock(t *testing.T) {
	reply := "Aqui está:\n<sumario_json>{leito sem aspas}</sumario_json>"

	s := sessionAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		writeStream(w, reply)
	})

	turn, err := s.Send(context.Background(), "confirma", nil)
	if err != nil {
		t.Fatalf("expected recoverable warning, got error: %v", err)
	}
	var pErr *ParseError
	if !errors.As(turn.Warning, &pErr) {
		t.Fatalf("expected ParseError warning, got %v", turn.Warning)
	}
	if turn.Summary != nil {
		t.Error("summary set despite malformed block")
	}
	if s.State() != StateConversing {
		t.Errorf("expected conversing after failed parse, got %s", s.State())
	}
	if len(s.Messages()) != 2 {
		t.Errorf("expected turn committed to history, got %d messages", len(s.Messages()))
	}
}

func TestSend_BlockFailsValidation(t *testing.T) {
	// valid JSON, but condutas missing
	reply := `<sumario_json>{"leito": "1", "nome_paciente": "Maria", "diagnosticos": [], "pendencias": []}</sumario_json>`

	s := sessionAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		writeStream(w, reply)
	})

	turn, err := s.Send(context.Background(), "confirma", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var vErr *summary.ValidationError
	if !errors.As(turn.Warning, &vErr) {
		t.Fatalf("expected wrapped ValidationError, got %v", turn.Warning)
	}
	if vErr.Field != "condutas" {
		t.Errorf("expected field condutas, got %q", vErr.Field)
	}
	if s.State() == StateFinalized {
		t.Error("session finalized on invalid payload")
	}
}

func TestSend_HalfOpenDelimiter(t *testing.T) {
	reply := "Quase lá: <sumario_json> ainda faltam as pendências."

	s := sessionAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		writeStream(w, reply)
	})

	turn, err := s.Send(context.Background(), "e agora?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if turn.Summary != nil || turn.Warning != nil {
		t.Errorf("half-open delimiter should be a plain turn, got %+v", turn)
	}
}

func TestSend_StreamFailure(t *testing.T) {
	s := sessionAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "api_error", "message": "overloaded"},
		})
	})

	_, err := s.Send(context.Background(), "olá", nil)
	if err == nil {
		t.Fatal("expected error for failed stream")
	}
	// user turn stays, assistant turn was never committed
	if len(s.Messages()) != 1 {
		t.Errorf("expected only the user turn in history, got %d", len(s.Messages()))
	}
	if s.Messages()[0].Role != "user" {
		t.Errorf("expected user turn, got %s", s.Messages()[0].Role)
	}
}

func TestSend_HistoryAccumulates(t *testing.T) {
	var gotCounts []int
	replies := []string{
		"Qual o leito?",
		"Anotado. Algo mais?",
	}
	call := 0

	s := sessionAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			System   string              `json:"system"`
			Messages []anthropic.Message `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if !strings.Contains(req.System, "sumários de pacientes de UTI") {
			t.Error("chat system prompt missing")
		}
		gotCounts = append(gotCounts, len(req.Messages))
		writeStream(w, replies[call])
		call++
	})

	if _, err := s.Send(context.Background(), "paciente Maria", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Send(context.Background(), "leito 2", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gotCounts) != 2 || gotCounts[0] != 1 || gotCounts[1] != 3 {
		t.Errorf("expected request history of 1 then 3 messages, got %v", gotCounts)
	}
}

func TestAppendTranscript(t *testing.T) {
	llm := anthropic.NewClient("test-key", "test-model")
	s := NewSession(llm, discardLogger())

	s.AppendTranscript("Leito 2, paciente Maria Souza.")

	if s.State() != StateConversing {
		t.Errorf("expected conversing, got %s", s.State())
	}
	if s.Transcript() != "Leito 2, paciente Maria Souza." {
		t.Errorf("unexpected transcript: %q", s.Transcript())
	}
	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].Role != "user" {
		t.Fatalf("expected one user turn, got %+v", msgs)
	}
	if !strings.HasPrefix(msgs[0].Content, "Aqui está a transcrição do áudio:\n\n") {
		t.Errorf("transcript turn missing preamble: %q", msgs[0].Content)
	}
}

func TestReset(t *testing.T) {
	reply := `<sumario_json>{"leito": "1", "nome_paciente": "Maria", "diagnosticos": [], "pendencias": [], "condutas": ["Manter dieta"]}</sumario_json>`

	s := sessionAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		writeStream(w, reply)
	})

	s.AppendTranscript("alguma transcrição")
	if _, err := s.Send(context.Background(), "confirma", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.State() != StateFinalized {
		t.Fatalf("expected finalized, got %s", s.State())
	}

	s.Reset()

	if s.State() != StateIdle {
		t.Errorf("expected idle after reset, got %s", s.State())
	}
	if len(s.Messages()) != 0 {
		t.Errorf("expected empty history, got %d", len(s.Messages()))
	}
	if s.Summary() != nil {
		t.Error("expected no summary after reset")
	}
	if s.Transcript() != "" {
		t.Error("expected no transcript after reset")
	}
}
