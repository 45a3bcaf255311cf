package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/intensiva/docscribe/internal/summary"
	"github.com/intensiva/docscribe/internal/transcribe"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubTranscriber struct {
	text  string
	err   error
	calls int
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

type stubExtractor struct {
	summary *summary.PatientSummary
	err     error
	calls   int
	gotText string
}

func (s *stubExtractor) Extract(ctx context.Context, transcript string) (*summary.PatientSummary, error) {
	s.calls++
	s.gotText = transcript
	if s.err != nil {
		return nil, s.err
	}
	return s.summary, nil
}

func TestProcess_Success(t *testing.T) {
	want := &summary.PatientSummary{
		Bed:          "3",
		PatientName:  "João Silva",
		Diagnoses:    []string{"Insuficiência respiratória"},
		PendingItems: []string{"TC de tórax"},
		CareActions:  []string{"Manter norepinefrina (0.3)"},
	}
	tr := &stubTranscriber{text: "Leito 3, paciente João Silva, em VM"}
	ex := &stubExtractor{summary: want}

	p := New(tr, ex, discardLogger())

	transcript, s, err := p.Process(context.Background(), []byte("audio"), "plantao.mp3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transcript != tr.text {
		t.Errorf("transcript changed in flight: %q", transcript)
	}
	if ex.gotText != tr.text {
		t.Errorf("extractor received modified transcript: %q", ex.gotText)
	}
	if s != want {
		t.Errorf("summary changed in flight: %+v", s)
	}
}

func TestProcess_TranscriptionFailure(t *testing.T) {
	wantErr := &transcribe.TranscriptionError{Err: fmt.Errorf("upstream down")}
	tr := &stubTranscriber{err: wantErr}
	ex := &stubExtractor{}

	p := New(tr, ex, discardLogger())

	transcript, s, err := p.Process(context.Background(), []byte("audio"), "plantao.mp3")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected transcription error surfaced unchanged, got %v", err)
	}
	if ex.calls != 0 {
		t.Errorf("extraction ran after transcription failure")
	}
	if transcript != "" || s != nil {
		t.Errorf("expected no partial result, got %q, %+v", transcript, s)
	}
}

func TestProcess_ExtractionFailure(t *testing.T) {
	wantErr := fmt.Errorf("model unavailable")
	tr := &stubTranscriber{text: "transcrição ok"}
	ex := &stubExtractor{err: wantErr}

	p := New(tr, ex, discardLogger())

	transcript, s, err := p.Process(context.Background(), []byte("audio"), "plantao.mp3")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected extraction error surfaced unchanged, got %v", err)
	}
	if tr.calls != 1 {
		t.Errorf("expected exactly one transcription call, got %d", tr.calls)
	}
	if transcript != "" || s != nil {
		t.Errorf("expected no partial result, got %q, %+v", transcript, s)
	}
}
