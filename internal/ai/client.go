// Package ai wraps the hosted text-generation model used for product
// recommendations and the shopping assistant chat.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrDisabled is returned when no model credentials are configured.
var ErrDisabled = errors.New("ai: text generation is not configured")

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Client talks to an OpenAI-compatible endpoint. A Client with a nil model
// answers every call with ErrDisabled.
type Client struct {
	model llms.Model
}

// New builds a client for cfg. An empty API key yields a disabled client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return &Client{}, nil
	}
	opts := []openai.Option{openai.WithToken(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("ai: create model client: %w", err)
	}
	return &Client{model: llm}, nil
}

// NewWithModel wraps an existing model; tests use it to inject fakes.
func NewWithModel(m llms.Model) *Client { return &Client{model: m} }

func (c *Client) Enabled() bool { return c != nil && c.model != nil }

// Generate completes a single prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, llms.WithTemperature(0.2))
	if err != nil {
		return "", fmt.Errorf("ai: generate: %w", err)
	}
	return out, nil
}

// Chat runs a conversation. When onChunk is non-nil the reply is also
// delivered incrementally; the full text is returned either way.
func (c *Client) Chat(ctx context.Context, msgs []Message, onChunk func(string) error) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	content := make([]llms.MessageContent, 0, len(msgs))
	for _, m := range msgs {
		content = append(content, llms.TextParts(chatType(m.Role), m.Content))
	}
	opts := []llms.CallOption{llms.WithTemperature(0.7)}
	if onChunk != nil {
		opts = append(opts, llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			return onChunk(string(chunk))
		}))
	}
	resp, err := c.model.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", fmt.Errorf("ai: chat: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("ai: chat: empty response")
	}
	var sb strings.Builder
	for _, ch := range resp.Choices {
		sb.WriteString(ch.Content)
	}
	return sb.String(), nil
}

func chatType(r Role) llms.ChatMessageType {
	switch r {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
