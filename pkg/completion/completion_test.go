package completion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUpstream(t *testing.T, status int, body string, inspect func(map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if inspect != nil {
			raw, _ := io.ReadAll(r.Body)
			var m map[string]any
			require.NoError(t, json.Unmarshal(raw, &m))
			inspect(m)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateChatCompletion_Success(t *testing.T) {
	srv := newUpstream(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1700000000,
		"model": "llama-3.1-8b-instant",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "Sprint planning is on Monday."}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19}
	}`, func(m map[string]any) {
		assert.Equal(t, "llama-3.1-8b-instant", m["model"])
		assert.InDelta(t, 0.2, m["temperature"], 0.0001)
		assert.EqualValues(t, 256, m["max_tokens"])
		assert.InDelta(t, 0.9, m["top_p"], 0.0001)
		msgs := m["messages"].([]any)
		require.Len(t, msgs, 2)
		assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	})

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "llama-3.1-8b-instant"})
	resp, err := c.CreateChatCompletion(context.Background(), Request{
		Messages: []Message{
			{Role: RoleSystem, Content: "You are a scrum assistant."},
			{Role: RoleUser, Content: "When is planning?"},
		},
		Temperature: Float32(0.2),
		TopP:        Float32(0.9),
		MaxTokens:   Int(256),
	})
	require.NoError(t, err)

	assert.Equal(t, "chatcmpl-1", resp.ID)
	assert.Equal(t, int64(1700000000), resp.CreatedAt.Unix())
	assert.Equal(t, "Sprint planning is on Monday.", resp.Content())
	assert.Equal(t, "stop", resp.Choices[0].FinishReason)
	assert.Equal(t, Usage{PromptTokens: 12, CompletionTokens: 7, TotalTokens: 19}, resp.Usage)
}

func TestCreateChatCompletion_APIError(t *testing.T) {
	srv := newUpstream(t, http.StatusUnauthorized,
		`{"error": {"message": "Invalid API Key", "type": "invalid_request_error", "code": "invalid_api_key"}}`, nil)

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "m"})
	_, err := c.CreateChatCompletion(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "invalid_request_error", apiErr.Type)
	assert.Equal(t, "Invalid API Key", apiErr.Message)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestCreateChatCompletion_UnknownErrorType(t *testing.T) {
	srv := newUpstream(t, http.StatusBadGateway, `upstream exploded`, nil)

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "m"})
	_, err := c.CreateChatCompletion(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, UnknownErrorType, apiErr.Type)
	assert.Equal(t, UnknownErrorMessage, apiErr.Message)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Error(t, errors.Unwrap(err))
}

func TestCreateChatCompletion_StreamRejected(t *testing.T) {
	c := NewClient(Config{APIKey: "k"})
	_, err := c.CreateChatCompletion(context.Background(), Request{Stream: true})
	assert.ErrorIs(t, err, ErrStreamingUnsupported)

	_, err = NewLocalClient().CreateChatCompletion(context.Background(), Request{Stream: true})
	assert.ErrorIs(t, err, ErrStreamingUnsupported)
}

func TestRuleReply(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello there", "Hello! How can I help you today?"},
		{"HI", "Hello! How can I help you today?"},
		{"I need HELP", "I'm here to help! What do you need assistance with?"},
		{"thanks a lot", "You're welcome! Is there anything else I can help with?"},
		{"standup", `I understand you said: "standup". How can I assist you further with that?`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RuleReply(tt.in), tt.in)
	}
}

func TestLocalClient_UsesLastUserMessage(t *testing.T) {
	resp, err := NewLocalClient().CreateChatCompletion(context.Background(), Request{
		Messages: []Message{
			{Role: RoleAssistant, Content: "Hello! How can I assist you today?"},
			{Role: RoleUser, Content: "thank you"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, LocalModel, resp.Model)
	assert.Equal(t, RoleAssistant, resp.Choices[0].Message.Role)
	assert.Equal(t, "You're welcome! Is there anything else I can help with?", resp.Content())
}
