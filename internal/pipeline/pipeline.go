package pipeline

import (
	"context"
	"log/slog"

	"github.com/intensiva/docscribe/internal/summary"
	"github.com/intensiva/docscribe/internal/transcribe"
)

// Extractor is the single-shot extraction strategy the pipeline drives.
type Extractor interface {
	Extract(ctx context.Context, transcript string) (*summary.PatientSummary, error)
}

type Pipeline struct {
	transcriber transcribe.Transcriber
	extractor   Extractor
	logger      *slog.Logger
}

func New(t transcribe.Transcriber, e Extractor, logger *slog.Logger) *Pipeline {
	return &Pipeline{transcriber: t, extractor: e, logger: logger}
}

// Process runs transcription then extraction, strictly in that order.
// The first failure aborts the run and surfaces unchanged, with no
// partial result. Callers that want to keep the transcript across an
// extraction failure invoke the stages separately.
func (p *Pipeline) Process(ctx context.Context, audio []byte, filename string) (string, *summary.PatientSummary, error) {
	transcript, err := p.transcriber.Transcribe(ctx, audio, filename)
	if err != nil {
		return "", nil, err
	}

	s, err := p.extractor.Extract(ctx, transcript)
	if err != nil {
		return "", nil, err
	}

	p.logger.Info("pipeline complete", "filename", filename, "bed", s.Bed)

	return transcript, s, nil
}
