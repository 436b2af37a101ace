package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatCompletionBody(contents ...string) map[string]any {
	choices := make([]map[string]any, len(contents))
	for i, c := range contents {
		choices[i] = map[string]any{
			"index":         i,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": c},
		}
	}
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": choices,
		"usage":   map[string]any{"prompt_tokens": 50, "completion_tokens": 20, "total_tokens": 70},
	}
}

func TestCreateChatCompletion_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/chat/completions")
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])
		assert.InDelta(t, 0.3, body["temperature"], 0.0001)
		assert.EqualValues(t, 2, body["n"])
		msgs, ok := body["messages"].([]any)
		require.True(t, ok)
		assert.Len(t, msgs, 2)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletionBody(`{"overall_score":"6/10"}`, "alt")) //nolint:errcheck
	}))
	defer srv.Close()

	temp := 0.3
	client := NewClient("test-key", srv.URL)
	resp, err := client.CreateChatCompletion(context.Background(), ChatRequest{
		Model:       "gpt-4o-mini",
		System:      "sys",
		User:        "prompt",
		MaxTokens:   500,
		Temperature: &temp,
		N:           2,
	})
	require.NoError(t, err)
	assert.Equal(t, "chatcmpl-test", resp.ID)
	assert.Equal(t, []string{`{"overall_score":"6/10"}`, "alt"}, resp.Choices)
	assert.Equal(t, int64(50), resp.Usage.PromptTokens)
	assert.Equal(t, int64(20), resp.Usage.CompletionTokens)
}

func TestCreateChatCompletion_OmitsSystemAndN(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, hasN := body["n"]
		assert.False(t, hasN)
		msgs, _ := body["messages"].([]any)
		assert.Len(t, msgs, 1)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletionBody("ok")) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	resp, err := client.CreateChatCompletion(context.Background(), ChatRequest{Model: "gpt-4o-mini", User: "hi", N: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, resp.Choices)
}

func TestCreateChatCompletion_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("bad-key", srv.URL, option.WithMaxRetries(0))
	_, err := client.CreateChatCompletion(context.Background(), ChatRequest{Model: "gpt-4o-mini", User: "hi"})
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
