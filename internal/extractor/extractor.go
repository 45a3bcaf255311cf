package extractor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/intensiva/docscribe/internal/anthropic"
	"github.com/intensiva/docscribe/internal/summary"
)

const maxTokens = 8192

// ExtractionError wraps any failure of the single-shot extraction,
// upstream or schema-level. The cause stays reachable through Unwrap.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

type Extractor struct {
	llm    *anthropic.Client
	logger *slog.Logger
}

func New(llm *anthropic.Client, logger *slog.Logger) *Extractor {
	return &Extractor{llm: llm, logger: logger}
}

// Extract turns a hand-off transcript into a validated patient summary.
// One upstream call per invocation, no retry.
func (e *Extractor) Extract(ctx context.Context, transcript string) (*summary.PatientSummary, error) {
	prompt := fmt.Sprintf(userPromptTemplate, transcript)

	messages := []anthropic.Message{
		{Role: "user", Content: prompt},
	}

	tool := anthropic.Tool{
		Name:        "SumarioPaciente",
		Description: "Sumário estruturado de paciente de leito hospitalar.",
		InputSchema: summary.Schema(),
	}

	e.logger.Info("extracting summary", "transcript_len", len(transcript))

	raw, err := e.llm.CompleteStructured(ctx, systemPrompt, messages, tool, maxTokens)
	if err != nil {
		return nil, &ExtractionError{Err: err}
	}

	s, err := summary.Parse(raw)
	if err != nil {
		e.logger.Error("extraction payload failed validation",
			"error", err,
			"raw", string(raw),
		)
		return nil, &ExtractionError{Err: err}
	}

	e.logger.Info("extraction complete",
		"bed", s.Bed,
		"diagnoses", len(s.Diagnoses),
		"pending", len(s.PendingItems),
		"actions", len(s.CareActions),
	)

	return s, nil
}
