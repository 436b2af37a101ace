package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateContent_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body generateContentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.InDelta(t, 0.3, body.GenerationConfig.Temperature, 0.0001)
		assert.Equal(t, 2000, body.GenerationConfig.MaxOutputTokens)
		assert.Equal(t, 2, body.GenerationConfig.CandidateCount)
		require.NotNil(t, body.SystemInstruction)
		assert.Equal(t, "be terse", body.SystemInstruction.Parts[0].Text)
		assert.Equal(t, "analyze this", body.Contents[0].Parts[0].Text)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": `{"overall_score":`}, {"text": `"7/10"}`}}}, "finishReason": "STOP"},
				{"content": map[string]any{"parts": []map[string]any{{"text": "second"}}}},
			},
			"usageMetadata": map[string]any{"promptTokenCount": 120, "candidatesTokenCount": 40, "totalTokenCount": 160},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL+"/"))
	resp, err := client.GenerateContent(context.Background(), GenerateRequest{
		Model:           "gemini-1.5-flash",
		System:          "be terse",
		Prompt:          "analyze this",
		Temperature:     0.3,
		MaxOutputTokens: 2000,
		CandidateCount:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"overall_score":"7/10"}`, resp.Text())
	assert.Equal(t, []string{`{"overall_score":"7/10"}`, "second"}, resp.Candidates)
	assert.Equal(t, "STOP", resp.FinishReason)
	assert.Equal(t, int64(120), resp.Usage.PromptTokens)
	assert.Equal(t, int64(40), resp.Usage.CandidateTokens)
}

func TestGenerateContent_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.GenerateContent(context.Background(), GenerateRequest{Model: "m", Prompt: "p"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "RESOURCE_EXHAUSTED", apiErr.Status)
	assert.Contains(t, err.Error(), "Quota exceeded")
}

func TestGenerateContent_NonJSONError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down")) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.GenerateContent(context.Background(), GenerateRequest{Model: "m", Prompt: "p"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestGenerateContent_NoCandidates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.GenerateContent(context.Background(), GenerateRequest{Model: "m", Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGenerateContent_OmitsEmptySystem(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, has := raw["systemInstruction"]
		assert.False(t, has)
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	resp, err := client.GenerateContent(context.Background(), GenerateRequest{Model: "m", Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text())
}
