package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/intensiva/docscribe/internal/anthropic"
	"github.com/intensiva/docscribe/internal/api"
	"github.com/intensiva/docscribe/internal/chat"
	"github.com/intensiva/docscribe/internal/config"
	"github.com/intensiva/docscribe/internal/events"
	"github.com/intensiva/docscribe/internal/extractor"
	"github.com/intensiva/docscribe/internal/pipeline"
	"github.com/intensiva/docscribe/internal/transcribe"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("docscribe starting", "port", cfg.Port)

	// Groq transcription client
	if cfg.GroqAPIKey == "" {
		slog.Error("GROQ_API_KEY is required")
		os.Exit(1)
	}
	groq := transcribe.NewGroqClient(cfg.GroqAPIKey, cfg.WhisperModel, slog.Default())
	slog.Info("groq client ready", "model", cfg.WhisperModel)

	// Anthropic client
	if cfg.AnthropicAPIKey == "" {
		slog.Error("ANTHROPIC_API_KEY is required")
		os.Exit(1)
	}
	llm := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	slog.Info("anthropic client ready", "model", cfg.AnthropicModel)

	// Extractor and pipeline
	ext := extractor.New(llm, slog.Default())
	pipe := pipeline.New(groq, ext, slog.Default())

	// NATS events (optional — docscribe works without them, just no broadcast)
	var publisher *events.Publisher
	var announcer api.Announcer
	if cfg.NatsURL != "" {
		p, err := events.NewPublisher(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		publisher = p
		announcer = p
		defer publisher.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured — running without summary events")
	}

	// HTTP API
	newSession := func() *chat.Session {
		return chat.NewSession(llm, slog.Default())
	}
	srv := api.NewServer(api.Config{
		Port:         cfg.Port,
		WhisperModel: cfg.WhisperModel,
		ClaudeModel:  cfg.AnthropicModel,
	}, pipe, groq, ext, newSession, announcer, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce startup
	if publisher != nil {
		if err := publisher.Publish("docscribe.service.started", map[string]any{
			"timestamp":     time.Now().UTC().Format(time.RFC3339),
			"port":          cfg.Port,
			"whisper_model": cfg.WhisperModel,
			"claude_model":  cfg.AnthropicModel,
		}); err != nil {
			slog.Warn("failed to publish startup event", "error", err)
		}
	}

	slog.Info("docscribe ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	slog.Info("docscribe stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
