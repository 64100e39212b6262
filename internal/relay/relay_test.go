package relay

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/visa-movement/bulletin-cli/pkg/anthropic"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Model:   "claude-sonnet-4-5-20250929",
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		Usage:   anthropic.TokenUsage{InputTokens: 10, OutputTokens: 5},
	}
}

func TestChat_ForwardsMessages(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return len(req.Messages) == 2 &&
			req.Messages[0].Role == "user" &&
			req.Messages[1].Role == "assistant" &&
			req.MaxTokens == 1024
	})).Return(textResponse("EB2 is current for most countries."), nil)

	svc := NewService(client, "claude-sonnet-4-5-20250929", 1024)
	resp := svc.Chat(context.Background(), []ChatMessage{
		{Role: "user", Content: "Is EB2 current?"},
		{Role: "assistant", Content: "Let me check."},
	})

	assert.Empty(t, resp.Error)
	assert.Equal(t, "assistant", resp.Message.Role)
	assert.Equal(t, "EB2 is current for most countries.", resp.Message.Content)
	assert.Equal(t, "claude-sonnet-4-5-20250929", resp.Model)
	client.AssertExpectations(t)
}

func TestChat_ProviderFailureReturnsSyntheticMessage(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("overloaded"))

	svc := NewService(client, "claude-sonnet-4-5-20250929", 1024)
	resp := svc.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})

	assert.Equal(t, "assistant", resp.Message.Role)
	assert.NotEmpty(t, resp.Message.Content)
	assert.Contains(t, resp.Error, "overloaded")
}

func TestClassifyInclude(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  bool
	}{
		{"yes", "Yes", true},
		{"yes lowercase with whitespace", "  yes\n", true},
		{"no", "No", false},
		{"unparseable", "Maybe, depends on the country", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockClient{}
			client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
				return req.MaxTokens == 5 &&
					req.Temperature != nil && *req.Temperature == 0 &&
					len(req.System) == 1
			})).Return(textResponse(tt.reply), nil)

			svc := NewService(client, "claude-sonnet-4-5-20250929", 1024)
			assert.Equal(t, tt.want, svc.ClassifyInclude(context.Background(), "Is my EB3 current?"))
		})
	}
}

func TestClassifyInclude_ErrorDefaultsToFalse(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("timeout"))

	svc := NewService(client, "claude-sonnet-4-5-20250929", 1024)
	assert.False(t, svc.ClassifyInclude(context.Background(), "Is my EB3 current?"))
}

func TestClassifyWindow(t *testing.T) {
	tests := []struct {
		reply string
		want  DataWindow
	}{
		{"none", WindowNone},
		{"Current", WindowCurrent},
		{"historical", WindowHistorical},
		{"both\n", WindowBoth},
		{"all of them", WindowNone},
		{"", WindowNone},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			client := &mockClient{}
			client.On("CreateMessage", mock.Anything, mock.Anything).
				Return(textResponse(tt.reply), nil)

			svc := NewService(client, "claude-sonnet-4-5-20250929", 1024)
			assert.Equal(t, tt.want, svc.ClassifyWindow(context.Background(), "How has EB2 moved?"))
		})
	}
}

func TestClassifyWindow_ErrorDefaultsToNone(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("timeout"))

	svc := NewService(client, "claude-sonnet-4-5-20250929", 1024)
	assert.Equal(t, WindowNone, svc.ClassifyWindow(context.Background(), "anything"))
}

func TestNewService_DefaultsMaxTokens(t *testing.T) {
	client := &mockClient{}
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.MaxTokens == 1024
	})).Return(textResponse("hello"), nil)

	svc := NewService(client, "claude-sonnet-4-5-20250929", 0)
	resp := svc.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	require.Empty(t, resp.Error)
	client.AssertExpectations(t)
}
