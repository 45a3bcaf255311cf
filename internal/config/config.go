package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            int
	LogLevel        string
	GroqAPIKey      string
	WhisperModel    string
	AnthropicAPIKey string
	AnthropicModel  string
	NatsURL         string
	NatsToken       string
}

func Load() Config {
	// A local .env is honored when present; real environment wins.
	godotenv.Load()

	return Config{
		Port:            envInt("DOCSCRIBE_PORT", 8760),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		GroqAPIKey:      envStr("GROQ_API_KEY", ""),
		WhisperModel:    envStr("DOCSCRIBE_WHISPER_MODEL", "whisper-large-v3-turbo"),
		AnthropicAPIKey: envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  envStr("DOCSCRIBE_MODEL", "claude-sonnet-4-20250514"),
		NatsURL:         envStr("NATS_URL", ""),
		NatsToken:       envStr("NATS_TOKEN", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
