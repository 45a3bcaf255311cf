package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

// Groq serves Whisper behind an OpenAI-compatible API, so the stock
// OpenAI client works with a swapped base URL.
const groqBaseURL = "https://api.groq.com/openai/v1"

// TranscriptionError wraps any failure to turn audio into text.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription: %v", e.Err)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

// Transcriber converts hand-off audio into transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

type GroqClient struct {
	api    *openai.Client
	apiKey string
	model  string
	logger *slog.Logger
}

func NewGroqClient(apiKey, model string, logger *slog.Logger) *GroqClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = groqBaseURL
	return &GroqClient{
		api:    openai.NewClientWithConfig(cfg),
		apiKey: apiKey,
		model:  model,
		logger: logger,
	}
}

// SetTestTransport points the client at a test server instead of the
// real API.
func (c *GroqClient) SetTestTransport(url string) {
	cfg := openai.DefaultConfig(c.apiKey)
	cfg.BaseURL = url
	c.api = openai.NewClientWithConfig(cfg)
}

// Transcribe uploads the audio and returns the flat transcript text.
// The filename is passed through as the container format hint; nothing
// is validated or transcoded locally. Whisper decodes at the default
// temperature of zero, and segment timestamps from the verbose response
// are discarded.
func (c *GroqClient) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", &TranscriptionError{Err: fmt.Errorf("empty audio")}
	}

	c.logger.Info("transcribing audio", "filename", filename, "bytes", len(audio))

	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return "", &TranscriptionError{Err: err}
	}

	c.logger.Info("transcription complete",
		"filename", filename,
		"language", resp.Language,
		"chars", len(resp.Text),
	)

	return resp.Text, nil
}
