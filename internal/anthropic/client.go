package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.anthropic.com/v1/messages"

type Client struct {
	apiKey string
	model  string
	apiURL string
	client *http.Client
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		apiURL: defaultAPIURL,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// SetTestTransport points the client at a test server instead of the
// real API.
func (c *Client) SetTestTransport(url string) {
	c.apiURL = url
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Tool describes a tool the model is forced to call. With a single tool
// and a forced tool_choice the API guarantees the reply is a tool_use
// block whose input matches InputSchema.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

type toolChoice struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

type request struct {
	Model       string      `json:"model"`
	MaxTokens   int         `json:"max_tokens"`
	System      string      `json:"system,omitempty"`
	Messages    []Message   `json:"messages"`
	Temperature *float64    `json:"temperature,omitempty"`
	Tools       []Tool      `json:"tools,omitempty"`
	ToolChoice  *toolChoice `json:"tool_choice,omitempty"`
	Stream      bool        `json:"stream,omitempty"`
}

type contentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type response struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CompleteStructured sends a conversation with a forced tool call and
// returns the tool input the model produced. Decoding runs at
// temperature zero so repeated calls stay deterministic.
func (c *Client) CompleteStructured(ctx context.Context, system string, messages []Message, tool Tool, maxTokens int) (json.RawMessage, error) {
	zero := 0.0
	reqBody := request{
		Model:       c.model,
		MaxTokens:   maxTokens,
		System:      system,
		Messages:    messages,
		Temperature: &zero,
		Tools:       []Tool{tool},
		ToolChoice:  &toolChoice{Type: "tool", Name: tool.Name},
	}

	respBody, err := c.send(ctx, reqBody)
	if err != nil {
		return nil, err
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	for _, block := range apiResp.Content {
		if block.Type == "tool_use" {
			return block.Input, nil
		}
	}
	return nil, fmt.Errorf("no tool_use block in response")
}

// Stream sends a conversation with streaming enabled and invokes
// onDelta for each text fragment as it arrives. The assembled reply is
// returned once the stream ends.
func (c *Client) Stream(ctx context.Context, system string, messages []Message, maxTokens int, onDelta func(string)) (string, error) {
	reqBody := request{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  messages,
		Stream:    true,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := c.newRequest(ctx, body)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("read response: %w", err)
		}
		return "", apiError(resp.StatusCode, respBody)
	}

	var reply strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var event streamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			continue // skip malformed frames
		}

		switch event.Type {
		case "content_block_delta":
			if event.Delta.Type == "text_delta" && event.Delta.Text != "" {
				reply.WriteString(event.Delta.Text)
				if onDelta != nil {
					onDelta(event.Delta.Text)
				}
			}
		case "error":
			return "", fmt.Errorf("stream error %s: %s", event.Error.Type, event.Error.Message)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream: %w", err)
	}

	return reply.String(), nil
}

func (c *Client) send(ctx context.Context, reqBody request) ([]byte, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := c.newRequest(ctx, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

func (c *Client) newRequest(ctx context.Context, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	return req, nil
}

func apiError(status int, body []byte) error {
	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		return fmt.Errorf("api error %d: %s — %s", status, errResp.Error.Type, errResp.Error.Message)
	}
	return fmt.Errorf("api error %d: %s", status, string(body))
}
