// Package relay implements the chatbot-facing surface: a thin completion
// relay plus the two intent classifiers the front end consults before
// attaching visa data to a prompt.
package relay

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/visa-movement/bulletin-cli/pkg/anthropic"
)

// DataWindow is the classifier's verdict on which slice of bulletin data
// a question needs.
type DataWindow string

const (
	WindowNone       DataWindow = "none"
	WindowCurrent    DataWindow = "current"
	WindowHistorical DataWindow = "historical"
	WindowBoth       DataWindow = "both"
)

const includeSystemPrompt = "You are a classifier. Respond ONLY with 'Yes' or 'No'. " +
	"Does this message require current visa bulletin data?\n\n" +
	"Examples:\n" +
	"- 'Is my EB3 current?' → Yes\n" +
	"- 'What does F2A mean?' → No"

const windowSystemPrompt = "You are a classifier. Respond ONLY with one of: " +
	"'none', 'current', 'historical', 'both'. " +
	"Which visa bulletin data does this message need?\n\n" +
	"Examples:\n" +
	"- 'What does F2A mean?' → none\n" +
	"- 'Is my EB3 current?' → current\n" +
	"- 'How has EB2 moved since 2020?' → historical\n" +
	"- 'Is EB2 current, and how fast is it moving?' → both"

// Service relays chat requests to the completion provider.
type Service struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewService creates a relay Service backed by the given provider client.
func NewService(client anthropic.Client, model string, maxTokens int64) *Service {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Service{client: client, model: model, maxTokens: maxTokens}
}

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse always carries a well-formed assistant message, even when
// the provider call failed.
type ChatResponse struct {
	Message ChatMessage `json:"message"`
	Model   string      `json:"model,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Chat forwards the message list to the provider and returns its reply.
// Provider failures produce a synthetic assistant message rather than a
// transport error, so callers always get a renderable response.
func (s *Service) Chat(ctx context.Context, messages []ChatMessage) ChatResponse {
	req := anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages:  toProviderMessages(messages),
	}

	resp, err := s.client.CreateMessage(ctx, req)
	if err != nil {
		zap.L().Warn("relay: completion failed", zap.Error(err))
		return ChatResponse{
			Message: ChatMessage{
				Role:    "assistant",
				Content: "Sorry, I couldn't reach the assistant service. Please try again in a moment.",
			},
			Error: err.Error(),
		}
	}

	resp.Usage.LogCost(s.model, "chat")

	return ChatResponse{
		Message: ChatMessage{Role: "assistant", Content: firstText(resp)},
		Model:   resp.Model,
	}
}

// ClassifyInclude asks whether the message needs current bulletin data.
// Invalid or failed classification defaults to false.
func (s *Service) ClassifyInclude(ctx context.Context, message string) bool {
	label, err := s.classify(ctx, includeSystemPrompt, message)
	if err != nil {
		zap.L().Warn("relay: include classification failed", zap.Error(err))
		return false
	}
	return label == "yes"
}

// ClassifyWindow asks which data window the message needs. Invalid or
// failed classification defaults to WindowNone.
func (s *Service) ClassifyWindow(ctx context.Context, message string) DataWindow {
	label, err := s.classify(ctx, windowSystemPrompt, message)
	if err != nil {
		zap.L().Warn("relay: window classification failed", zap.Error(err))
		return WindowNone
	}
	switch DataWindow(label) {
	case WindowCurrent, WindowHistorical, WindowBoth:
		return DataWindow(label)
	default:
		return WindowNone
	}
}

func (s *Service) classify(ctx context.Context, system, message string) (string, error) {
	temp := 0.0
	req := anthropic.MessageRequest{
		Model:       s.model,
		MaxTokens:   5,
		Temperature: &temp,
		System:      []anthropic.SystemBlock{{Text: system}},
		Messages:    []anthropic.Message{{Role: "user", Content: message}},
	}

	resp, err := s.client.CreateMessage(ctx, req)
	if err != nil {
		return "", err
	}

	resp.Usage.LogCost(s.model, "classify")
	return strings.ToLower(strings.TrimSpace(firstText(resp))), nil
}

func toProviderMessages(msgs []ChatMessage) []anthropic.Message {
	out := make([]anthropic.Message, len(msgs))
	for i, m := range msgs {
		out[i] = anthropic.Message{Role: m.Role, Content: m.Content}
	}
	return out
}

func firstText(resp *anthropic.MessageResponse) string {
	for _, b := range resp.Content {
		if b.Type == "text" {
			return b.Text
		}
	}
	return ""
}
