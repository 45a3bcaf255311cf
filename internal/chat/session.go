package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/intensiva/docscribe/internal/anthropic"
	"github.com/intensiva/docscribe/internal/summary"
)

const (
	maxTokens = 2048

	openTag  = "<sumario_json>"
	closeTag = "</sumario_json>"

	transcriptPreamble = "Aqui está a transcrição do áudio:\n\n"
)

// State tracks where a session is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateConversing
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConversing:
		return "conversing"
	case StateFinalized:
		return "finalized"
	}
	return "unknown"
}

// ParseError reports a delimited summary block that could not be
// parsed or validated. Recoverable: the session stays open and a later
// turn may finalize again.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("summary block: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Turn is the outcome of one Send round trip.
type Turn struct {
	Reply   string
	Summary *summary.PatientSummary // set when this turn finalized the summary
	Warning error                   // set when a summary block failed to parse
}

// Session owns one guided hand-off conversation. Not safe for
// concurrent use; each session belongs to one logical caller.
type Session struct {
	id         uuid.UUID
	llm        *anthropic.Client
	logger     *slog.Logger
	messages   []anthropic.Message
	transcript string
	final      *summary.PatientSummary
}

func NewSession(llm *anthropic.Client, logger *slog.Logger) *Session {
	return &Session{id: uuid.New(), llm: llm, logger: logger}
}

func (s *Session) ID() uuid.UUID { return s.id }

// State derives the lifecycle position from the session contents.
func (s *Session) State() State {
	switch {
	case s.final != nil:
		return StateFinalized
	case len(s.messages) > 0:
		return StateConversing
	default:
		return StateIdle
	}
}

// Messages returns a copy of the conversation history.
func (s *Session) Messages() []anthropic.Message {
	return append([]anthropic.Message(nil), s.messages...)
}

func (s *Session) Transcript() string { return s.transcript }

// Summary returns the finalized summary, nil before finalization.
func (s *Session) Summary() *summary.PatientSummary { return s.final }

// AppendTranscript records an out-of-band transcription and adds it to
// the conversation as a user turn, the same shape a pasted transcript
// would have. The assistant responds on the next Send.
func (s *Session) AppendTranscript(transcript string) {
	s.transcript = transcript
	s.messages = append(s.messages, anthropic.Message{
		Role:    "user",
		Content: transcriptPreamble + transcript,
	})
}

// Send appends a user turn, streams the assistant reply through
// onDelta, and commits it to history once the stream completes. A
// delimited summary block in the reply is parsed: success finalizes the
// session, failure comes back as Turn.Warning and the conversation
// continues.
func (s *Session) Send(ctx context.Context, text string, onDelta func(string)) (*Turn, error) {
	s.messages = append(s.messages, anthropic.Message{Role: "user", Content: text})

	reply, err := s.llm.Stream(ctx, chatSystemPrompt, s.messages, maxTokens, onDelta)
	if err != nil {
		// the user turn stays; the assistant turn was never committed
		return nil, fmt.Errorf("chat turn: %w", err)
	}

	s.messages = append(s.messages, anthropic.Message{Role: "assistant", Content: reply})

	turn := &Turn{Reply: reply}

	block, ok := delimitedBlock(reply)
	if !ok {
		return turn, nil
	}

	parsed, err := summary.Parse([]byte(block))
	if err != nil {
		s.logger.Warn("summary block rejected", "session", s.id, "error", err)
		turn.Warning = &ParseError{Err: err}
		return turn, nil
	}

	// a later confirmed block replaces an earlier one
	s.final = parsed
	turn.Summary = parsed
	s.logger.Info("session finalized", "session", s.id, "bed", parsed.Bed)

	return turn, nil
}

// Reset clears history, transcript, and any finalized summary, from
// any state.
func (s *Session) Reset() {
	s.messages = nil
	s.transcript = ""
	s.final = nil
}

// delimitedBlock extracts the JSON between the summary tags. Both tags
// must be present, in order; anything else is a plain conversational
// reply.
func delimitedBlock(reply string) (string, bool) {
	start := strings.Index(reply, openTag)
	if start < 0 {
		return "", false
	}
	rest := reply[start+len(openTag):]
	end := strings.Index(rest, closeTag)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}
