package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenRouterClient_MissingKey(t *testing.T) {
	_, err := NewOpenRouterClient(DefaultConfig(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENROUTER_API_KEY")
}

func TestOpenRouterClient_GenerateText(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "generated text"}},
			},
		})
	}))
	defer server.Close()

	client, err := NewOpenRouterClient(&Config{BaseURL: server.URL}, "test-key")
	require.NoError(t, err)

	got, err := client.GenerateText(context.Background(), GenerateRequest{
		UserPrompt:   "hello",
		SystemPrompt: "be brief",
		Temperature:  0.3,
		MaxTokens:    100,
	})
	require.NoError(t, err)
	assert.Equal(t, "generated text", got)
	assert.Equal(t, "Bearer test-key", gotAuth)

	assert.Equal(t, DefaultModel, gotBody["model"])
	assert.InDelta(t, 0.3, gotBody["temperature"], 1e-9)
	assert.EqualValues(t, 100, gotBody["max_tokens"])

	messages := gotBody["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
}

func TestOpenRouterClient_NoSystemPrompt(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": "ok"}}},
		})
	}))
	defer server.Close()

	client, err := NewOpenRouterClient(&Config{BaseURL: server.URL}, "test-key")
	require.NoError(t, err)

	_, err = client.GenerateText(context.Background(), GenerateRequest{UserPrompt: "hi"})
	require.NoError(t, err)

	messages := gotBody["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])
	// No cap requested: max_tokens must be omitted from the body entirely.
	_, hasCap := gotBody["max_tokens"]
	assert.False(t, hasCap)
}

func TestOpenRouterClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"message": "invalid model"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewOpenRouterClient(&Config{BaseURL: server.URL}, "test-key")
	require.NoError(t, err)

	_, err = client.GenerateText(context.Background(), GenerateRequest{UserPrompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestOpenRouterClient_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	client, err := NewOpenRouterClient(&Config{BaseURL: server.URL}, "test-key")
	require.NoError(t, err)

	_, err = client.GenerateText(context.Background(), GenerateRequest{UserPrompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
